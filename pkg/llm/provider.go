// Package llm holds the provider-neutral chat types shared by the agents and
// the model clients.
package llm

import (
	"context"
	"encoding/json"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation. Author names the agent that wrote
// an assistant or tool message; it is empty for user and system messages.
type Message struct {
	Role       Role       `json:"role"`
	Author     string     `json:"author,omitempty"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
}

// ToolCall is a function invocation requested by the model. Arguments is the
// raw JSON object the model produced.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition advertises a callable function to the model.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition
	Temperature  *float32
}

type ChatResult struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

// Streamer streams one chat completion, calling onToken for every text delta.
type Streamer interface {
	StreamChat(ctx context.Context, req ChatRequest, onToken func(string)) (*ChatResult, error)

	// IsConfigured returns true if the provider is properly configured
	IsConfigured() bool
}
