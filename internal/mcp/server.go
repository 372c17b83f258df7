// Package mcp exposes the workout history over the Model Context Protocol,
// so assistants can query the profile, sessions, and aggregate statistics.
// All tools are read-only.
package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/mark3labs/mcp-go/server"
)

// DataSource provides the application document. Satisfied by
// *gateway.Gateway.
type DataSource interface {
	Load(ctx context.Context) (models.AppData, error)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, cat *catalog.Catalog, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout tracker. Query the user profile, completed workout sessions, aggregate training statistics, and the training catalog. All tools are read-only."),
	)

	h := &handlers{ds: ds, cat: cat, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetProfile, Handler: h.getProfile},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetStats, Handler: h.getStats},
		server.ServerTool{Tool: toolListCatalog, Handler: h.listCatalog},
	)

	s.AddResources(
		server.ServerResource{Resource: resAppData, Handler: h.appData},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	cat *catalog.Catalog
	log *slog.Logger
}
