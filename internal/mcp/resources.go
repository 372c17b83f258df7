package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

var resAppData = mcp.NewResource(
	"liftlog://app_data",
	"Application Data",
	mcp.WithResourceDescription("The full application document: user profile and the complete workout session history"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) appData(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := h.ds.Load(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(payload),
		},
	}, nil
}
