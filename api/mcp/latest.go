package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	latestEventToolName    = "latest_event"
	latestEventDescription = "Return the most recent event relayed from the upstream server-sent event stream, including its id, event type and data. Before the first event arrives this is the configured initial value."
)

// LatestEventInput takes no arguments.
type LatestEventInput struct{}

// LatestEventOutput is the structured output of the latest_event tool.
type LatestEventOutput struct {
	ID    *string `json:"id,omitempty" jsonschema:"the event id, absent when the event carried none"`
	Event *string `json:"event,omitempty" jsonschema:"the event type, absent when the event carried none"`
	Data  string  `json:"data" jsonschema:"the event data, multiple data lines joined with newlines"`
}

// handleLatestEvent reads the Store and returns the latest event.
func (s *Server) handleLatestEvent(_ context.Context, _ *mcp.CallToolRequest, _ LatestEventInput) (*mcp.CallToolResult, LatestEventOutput, error) {
	ev, err := s.config.Store.Get()
	if err != nil {
		s.config.Logger.Error("mcp latest_event store read failed", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Latest event unavailable: %v", err)},
			},
		}, LatestEventOutput{}, nil
	}

	output := LatestEventOutput{
		ID:    ev.ID,
		Event: ev.Type,
		Data:  ev.Data,
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize event: %v", err)},
			},
		}, LatestEventOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
