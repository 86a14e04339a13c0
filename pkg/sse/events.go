package sse

// ChatEventType names an event in the chat stream.
type ChatEventType string

const (
	// EventAgent announces which agent is speaking.
	EventAgent ChatEventType = "agent"

	// EventToken carries filtered response text.
	EventToken ChatEventType = "token"

	// EventComplete marks the end of the agents' response.
	EventComplete ChatEventType = "complete"

	// EventError reports a failure; the stream ends with done afterwards.
	EventError ChatEventType = "error"

	// EventDone is always the last event.
	EventDone ChatEventType = "done"
)

type AgentEvent struct {
	Type  string `json:"type"`
	Agent string `json:"agent"`
}

func NewAgentEvent(agent string) AgentEvent {
	return AgentEvent{Type: string(EventAgent), Agent: agent}
}

type TokenEvent struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

func NewTokenEvent(token string) TokenEvent {
	return TokenEvent{Type: string(EventToken), Token: token}
}

// CompleteEvent carries the number of text chunks delivered.
type CompleteEvent struct {
	Type       string `json:"type"`
	TokenCount int    `json:"tokenCount"`
}

func NewCompleteEvent(tokenCount int) CompleteEvent {
	return CompleteEvent{Type: string(EventComplete), TokenCount: tokenCount}
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewErrorEvent(errMsg string) ErrorEvent {
	return ErrorEvent{Type: string(EventError), Error: errMsg}
}

type DoneEvent struct {
	Type string `json:"type"`
}

func NewDoneEvent() DoneEvent {
	return DoneEvent{Type: string(EventDone)}
}
