package mcp

import (
	"context"
	"encoding/json"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// Tool is one MCP tool: its schema and the handler that serves it.
type Tool interface {
	Definition() mcpgo.Tool
	Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error)
}

// JSONResult serializes v as the text content of a tool result.
func JSONResult(v any) *mcpgo.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return ErrorResult(err.Error())
	}
	return mcpgo.NewToolResultText(string(b))
}

// ErrorResult reports a lookup failure as {"error": msg}. The call itself
// succeeds so the model can read the message and recover.
func ErrorResult(msg string) *mcpgo.CallToolResult {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return mcpgo.NewToolResultText(string(b))
}
