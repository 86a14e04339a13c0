package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/drewby/chackgpt/pkg/llm"
)

// Tool is a function an agent may call.
type Tool interface {
	Definition() llm.ToolDefinition
	// Call runs the tool with the model's raw JSON arguments.
	Call(ctx context.Context, arguments string) (string, error)
}

// MCPTools is the slice of the MCP client the agents use.
type MCPTools interface {
	ListTools(ctx context.Context) []mcpgo.Tool
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

var emptySchema = json.RawMessage(`{"type":"object","properties":{}}`)

// definitionOf converts an MCP tool into the model's function definition.
func definitionOf(t mcpgo.Tool) llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schemaOf(t),
	}
}

func schemaOf(t mcpgo.Tool) json.RawMessage {
	raw, err := json.Marshal(t)
	if err != nil {
		return emptySchema
	}
	var wire struct {
		InputSchema json.RawMessage `json:"inputSchema"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil || len(wire.InputSchema) == 0 {
		return emptySchema
	}
	return wire.InputSchema
}

func decodeArguments(arguments string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(arguments) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	return args, nil
}

type localHandler func(ctx context.Context, req mcpgo.CallToolRequest) (string, error)

// localTool runs in-process. Its schema is declared with the MCP tool
// builders and its handler reads arguments through the MCP request helpers.
type localTool struct {
	def     mcpgo.Tool
	handler localHandler
}

func (t *localTool) Definition() llm.ToolDefinition { return definitionOf(t.def) }

func (t *localTool) Call(ctx context.Context, arguments string) (string, error) {
	args, err := decodeArguments(arguments)
	if err != nil {
		return "", err
	}
	var req mcpgo.CallToolRequest
	req.Params.Name = t.def.Name
	req.Params.Arguments = args
	return t.handler(ctx, req)
}

// remoteTool forwards to the API service over MCP.
type remoteTool struct {
	def    mcpgo.Tool
	client MCPTools
}

func (t *remoteTool) Definition() llm.ToolDefinition { return definitionOf(t.def) }

func (t *remoteTool) Call(ctx context.Context, arguments string) (string, error) {
	args, err := decodeArguments(arguments)
	if err != nil {
		return "", err
	}
	return t.client.CallTool(ctx, t.def.Name, args)
}
