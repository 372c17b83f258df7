package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/stats"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription("Get the user profile: name, height, gender, initial/current/target weight in kilograms. Returns an error if onboarding has not been completed."),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("List completed workout sessions in completion order: id, date (epoch ms), muscle group, workout, warmup/cooldown runs, exercises with sets, total time in minutes."),
	mcp.WithString("group", mcp.Description("Filter by muscle group id (e.g. back, chest, legs)")),
	mcp.WithNumber("limit", mcp.Description("Return only the most recent N sessions")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get one completed workout session by its id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session id (UUID)")),
)

var toolGetStats = mcp.NewTool("get_stats",
	mcp.WithDescription("Aggregate training statistics: total workouts and minutes, per-muscle-group counts, treadmill distance, strength volume (sets/reps/tonnage), and weight progress."),
)

var toolListCatalog = mcp.NewTool("list_catalog",
	mcp.WithDescription("List the training catalog: muscle groups, their workouts, and each workout's exercises with default weights and max-reps flags."),
)

// --- Tool handlers ---

func (h *handlers) load(ctx context.Context) (models.AppData, *mcp.CallToolResult) {
	data, err := h.ds.Load(ctx)
	if err != nil {
		h.log.Error("mcp document load", "error", err)
		return models.AppData{}, mcp.NewToolResultError("load failed: " + err.Error())
	}
	return data, nil
}

func (h *handlers) getProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, errResult := h.load(ctx)
	if errResult != nil {
		return errResult, nil
	}
	if data.Profile == nil {
		return mcp.NewToolResultError("onboarding not completed: no profile yet"), nil
	}

	result, err := mcp.NewToolResultJSON(data.Profile)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, errResult := h.load(ctx)
	if errResult != nil {
		return errResult, nil
	}

	sessions := data.Sessions
	if group := req.GetString("group", ""); group != "" {
		filtered := make([]models.SessionLog, 0, len(sessions))
		for _, s := range sessions {
			if s.MuscleGroupID == group {
				filtered = append(filtered, s)
			}
		}
		sessions = filtered
	}
	if limit := req.GetInt("limit", 0); limit > 0 && limit < len(sessions) {
		sessions = sessions[len(sessions)-limit:]
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	data, errResult := h.load(ctx)
	if errResult != nil {
		return errResult, nil
	}

	for _, s := range data.Sessions {
		if s.ID == id {
			result, err := mcp.NewToolResultJSON(s)
			if err != nil {
				return mcp.NewToolResultError("serialization failed"), nil
			}
			return result, nil
		}
	}
	return mcp.NewToolResultError("session not found: " + id), nil
}

func (h *handlers) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, errResult := h.load(ctx)
	if errResult != nil {
		return errResult, nil
	}

	result, err := mcp.NewToolResultJSON(stats.Compute(data))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(h.cat)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
