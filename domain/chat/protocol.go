package chat

import (
	"encoding/json"
	"fmt"
)

// Frame types on the hub socket.
const (
	FrameInvoke = "invoke"
	FrameEvent  = "event"
)

// Client-to-server methods.
const (
	MethodSendMessage = "SendMessage"
)

// Server-to-client methods sent by the hub itself. The broadcast package
// defines the ones driven by the UI services.
const (
	MethodReceiveMessageToken    = "ReceiveMessageToken"
	MethodReceiveMessageComplete = "ReceiveMessageComplete"
	MethodReceiveError           = "ReceiveError"
	MethodAgentChanged           = "AgentChanged"
)

// inbound is a frame read from a client.
type inbound struct {
	Type   string            `json:"type"`
	Method string            `json:"method"`
	Args   []json.RawMessage `json:"args"`
}

// outbound is a frame written to a client.
type outbound struct {
	Type   string `json:"type"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

func encodeEvent(method string, args ...any) ([]byte, error) {
	if args == nil {
		args = []any{}
	}
	return json.Marshal(outbound{Type: FrameEvent, Method: method, Args: args})
}

// stringArg decodes args[i] as a string.
func (in *inbound) stringArg(i int) (string, error) {
	if i >= len(in.Args) {
		return "", fmt.Errorf("%s expects %d argument(s)", in.Method, i+1)
	}
	var s string
	if err := json.Unmarshal(in.Args[i], &s); err != nil {
		return "", fmt.Errorf("%s argument %d must be a string", in.Method, i+1)
	}
	return s, nil
}
