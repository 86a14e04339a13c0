package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewby/chackgpt/domain/agents"
	"github.com/drewby/chackgpt/pkg/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	chackPrompt = "chack-prompt"
	drewPrompt  = "drew-prompt"
)

type reply struct {
	text  string
	calls []llm.ToolCall
	err   error
}

// scriptedStreamer replays canned replies per agent, keyed by system prompt.
// An agent with no replies left answers with a short default line.
type scriptedStreamer struct {
	mu       sync.Mutex
	replies  map[string][]reply
	requests []llm.ChatRequest
}

func newScripted() *scriptedStreamer {
	return &scriptedStreamer{replies: map[string][]reply{}}
}

func (s *scriptedStreamer) add(prompt string, r ...reply) *scriptedStreamer {
	s.replies[prompt] = append(s.replies[prompt], r...)
	return s
}

func (s *scriptedStreamer) StreamChat(_ context.Context, req llm.ChatRequest, onToken func(string)) (*llm.ChatResult, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	r := reply{text: strings.TrimSuffix(req.SystemPrompt, "-prompt") + " says hi"}
	if q := s.replies[req.SystemPrompt]; len(q) > 0 {
		r, s.replies[req.SystemPrompt] = q[0], q[1:]
	}
	s.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	for _, tok := range strings.SplitAfter(r.text, " ") {
		if tok != "" {
			onToken(tok)
		}
	}
	return &llm.ChatResult{Content: r.text, ToolCalls: r.calls}, nil
}

func (s *scriptedStreamer) IsConfigured() bool { return true }

type recordingTool struct {
	name string
	args []string
}

func (t *recordingTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{Name: t.name, Parameters: json.RawMessage(`{"type":"object","properties":{}}`)}
}

func (t *recordingTool) Call(_ context.Context, arguments string) (string, error) {
	t.args = append(t.args, arguments)
	return t.name + " done", nil
}

type fakeSource struct {
	agents   []*agents.Agent
	streamer llm.Streamer
}

func (f *fakeSource) Agents(context.Context) []*agents.Agent { return f.agents }
func (f *fakeSource) Streamer() llm.Streamer                 { return f.streamer }

type harness struct {
	wf       *Workflow
	budget   *IterationBudget
	streamer *scriptedStreamer
	tool     *recordingTool
	events   []Event
}

func newHarness(streamer *scriptedStreamer, maxToolRounds int) *harness {
	log := discardLogger()
	tool := &recordingTool{name: "SetEmotion"}
	src := &fakeSource{
		agents: []*agents.Agent{
			agents.NewAgent(agents.ChackGPT, chackPrompt, log, tool),
			agents.NewAgent(agents.DrewGPT, drewPrompt, log),
		},
		streamer: streamer,
	}
	budget := NewIterationBudget()
	return &harness{
		wf:       New(src, budget, maxToolRounds, log),
		budget:   budget,
		streamer: streamer,
		tool:     tool,
	}
}

func (h *harness) run(t *testing.T, userText string) ([]llm.Message, error) {
	t.Helper()
	h.events = nil
	history := []llm.Message{{Role: llm.RoleUser, Content: userText}}
	return h.wf.Run(context.Background(), history, func(e Event) { h.events = append(h.events, e) })
}

func (h *harness) speakers() []string {
	var out []string
	for _, e := range h.events {
		if e.Type == EventExecutorChanged {
			out = append(out, e.Agent)
		}
	}
	return out
}

func (h *harness) text() string {
	var b strings.Builder
	for _, e := range h.events {
		if e.Type == EventToken {
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

func TestKeywordManager(t *testing.T) {
	user := func(s string) llm.Message { return llm.Message{Role: llm.RoleUser, Content: s} }

	tests := []struct {
		name      string
		history   []llm.Message
		calls     int
		want      bool
		budgetNow int
	}{
		{"first call always continues", []llm.Message{user("hello")}, 1, false, 5},
		{"no aspire ends the chat", []llm.Message{user("hello")}, 2, true, 5},
		{"aspire keeps going", []llm.Message{user("Show me ASPIRE")}, 2, false, 5},
		{"budget spent", []llm.Message{user("aspire")}, 5, true, 3},
		{"system text ignored", []llm.Message{{Role: llm.RoleSystem, Content: "aspire"}, user("hi")}, 2, true, 5},
		{"tool results ignored", []llm.Message{{Role: llm.RoleTool, Content: "aspire"}, user("hi")}, 2, true, 5},
		{"assistant text counts", []llm.Message{user("hi"), {Role: llm.RoleAssistant, Author: "DrewGPT", Content: "Aspire 13!"}}, 2, false, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budget := NewIterationBudget()
			m := NewKeywordManager(budget, discardLogger())
			var got bool
			for i := 0; i < tt.calls; i++ {
				got = m.ShouldTerminate(tt.history)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.budgetNow, budget.Max())
		})
	}
}

func TestKeywordManager_FutureOfAIRestoresBudget(t *testing.T) {
	budget := NewIterationBudget()
	budget.Set(ReducedMaxIterations)

	m := NewKeywordManager(budget, discardLogger())
	history := []llm.Message{{Role: llm.RoleUser, Content: "What about the Future of AI?"}}
	m.ShouldTerminate(history)
	assert.True(t, m.ShouldTerminate(history), "no aspire mention still ends the chat")
	assert.Equal(t, DefaultMaxIterations, budget.Max())
}

func TestRun_WithoutKeywordOnlyChackSpeaks(t *testing.T) {
	h := newHarness(newScripted(), 0)

	produced, err := h.run(t, "hello")
	require.NoError(t, err)

	assert.Equal(t, []string{agents.ChackGPT}, h.speakers())
	assert.Equal(t, "chack says hi", h.text())
	require.Len(t, produced, 1)
	assert.Equal(t, llm.RoleAssistant, produced[0].Role)
	assert.Equal(t, agents.ChackGPT, produced[0].Author)

	last := h.events[len(h.events)-1]
	assert.Equal(t, EventCompleted, last.Type)
	assert.Equal(t, produced, last.Messages)
}

func TestRun_AspireAlternatesUntilBudgetSpent(t *testing.T) {
	h := newHarness(newScripted(), 0)

	_, err := h.run(t, "tell me about aspire")
	require.NoError(t, err)
	assert.Equal(t, []string{agents.ChackGPT, agents.DrewGPT, agents.ChackGPT, agents.DrewGPT}, h.speakers())
	assert.Equal(t, ReducedMaxIterations, h.budget.Max())

	_, err = h.run(t, "aspire again")
	require.NoError(t, err)
	assert.Equal(t, []string{agents.ChackGPT, agents.DrewGPT}, h.speakers(), "reduced budget carries over to the next run")

	_, err = h.run(t, "aspire and the future of AI")
	require.NoError(t, err)
	assert.Len(t, h.speakers(), 4, "mentioning the future of AI restores the full budget")
	assert.Equal(t, ReducedMaxIterations, h.budget.Max())
}

func TestRun_ExecutorIDs(t *testing.T) {
	h := newHarness(newScripted(), 0)

	_, err := h.run(t, "aspire")
	require.NoError(t, err)

	ids := map[string]string{}
	for _, e := range h.events {
		if e.Type == EventExecutorChanged {
			if prev, ok := ids[e.Agent]; ok {
				assert.Equal(t, prev, e.ExecutorID, "one id per agent per run")
			}
			ids[e.Agent] = e.ExecutorID
		}
	}
	assert.True(t, strings.HasPrefix(ids[agents.ChackGPT], "ChackGPT_"))
	assert.True(t, strings.HasPrefix(ids[agents.DrewGPT], "DrewGPT_"))
}

func TestRun_ToolLoop(t *testing.T) {
	s := newScripted().add(chackPrompt,
		reply{text: "Here we go! ", calls: []llm.ToolCall{{ID: "c1", Name: "SetEmotion", Arguments: `{"emotion":"Happy"}`}}},
		reply{text: "Fastest LTS ever!"},
	)
	h := newHarness(s, 0)

	produced, err := h.run(t, "hello")
	require.NoError(t, err)

	assert.Equal(t, []string{`{"emotion":"Happy"}`}, h.tool.args)
	assert.Equal(t, "Here we go! Fastest LTS ever!", h.text())

	require.Len(t, produced, 3)
	assert.Len(t, produced[0].ToolCalls, 1)
	assert.Equal(t, llm.Message{Role: llm.RoleTool, Author: agents.ChackGPT, Content: "SetEmotion done", ToolCallID: "c1"}, produced[1])
	assert.Equal(t, "Fastest LTS ever!", produced[2].Content)

	var toolEvents []string
	for _, e := range h.events {
		if e.Type == EventToolCall {
			toolEvents = append(toolEvents, e.Tool)
		}
	}
	assert.Equal(t, []string{"SetEmotion"}, toolEvents)

	require.Len(t, s.requests, 2)
	second := s.requests[1].Messages
	assert.Equal(t, llm.RoleTool, second[len(second)-1].Role, "tool result is sent back to the model")
	assert.Len(t, s.requests[0].Tools, 1)
}

func TestRun_ToolRoundLimit(t *testing.T) {
	s := newScripted()
	for i := 0; i < 5; i++ {
		s.add(chackPrompt, reply{calls: []llm.ToolCall{{ID: "c", Name: "SetEmotion", Arguments: `{"emotion":"Sad"}`}}})
	}
	h := newHarness(s, 2)

	produced, err := h.run(t, "hello")
	require.NoError(t, err)
	assert.Len(t, s.requests, 2)
	assert.Len(t, produced, 4)
	assert.Equal(t, llm.RoleTool, produced[3].Role)
}

func TestRun_RepeatedToolCallEndsTurn(t *testing.T) {
	s := newScripted()
	same := []llm.ToolCall{{ID: "c", Name: "SetEmotion", Arguments: `{"emotion":"Sad"}`}}
	for i := 0; i < 10; i++ {
		s.add(chackPrompt, reply{calls: same})
	}
	h := newHarness(s, 20)

	_, err := h.run(t, "hello")
	require.NoError(t, err)
	assert.Len(t, s.requests, loopStopThreshold)
}

func TestRun_DrewSeesChackTextOnly(t *testing.T) {
	s := newScripted().add(chackPrompt,
		reply{calls: []llm.ToolCall{{ID: "c1", Name: "SetEmotion", Arguments: `{}`}}},
		reply{text: "Should we show Aspire 13??"},
	)
	h := newHarness(s, 0)

	_, err := h.run(t, "aspire slides please")
	require.NoError(t, err)

	var drewReq *llm.ChatRequest
	for i := range s.requests {
		if s.requests[i].SystemPrompt == drewPrompt {
			drewReq = &s.requests[i]
			break
		}
	}
	require.NotNil(t, drewReq)
	require.Len(t, drewReq.Messages, 2)
	assert.Equal(t, llm.RoleUser, drewReq.Messages[0].Role)
	assert.Equal(t, llm.Message{
		Role:    llm.RoleAssistant,
		Author:  agents.ChackGPT,
		Content: "ChackGPT: Should we show Aspire 13??",
	}, drewReq.Messages[1])
}

func TestRun_Error(t *testing.T) {
	boom := errors.New("boom")
	s := newScripted().add(drewPrompt, reply{err: boom})
	h := newHarness(s, 0)

	produced, err := h.run(t, "aspire")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "DrewGPT turn failed: boom", err.Error())
	require.Len(t, produced, 1, "chack's turn is kept")

	for _, e := range h.events {
		assert.NotEqual(t, EventCompleted, e.Type)
	}
}

func TestRun_Canceled(t *testing.T) {
	h := newHarness(newScripted(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.wf.Run(ctx, []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, func(Event) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_NoParticipants(t *testing.T) {
	wf := New(&fakeSource{streamer: newScripted()}, NewIterationBudget(), 0, discardLogger())
	_, err := wf.Run(context.Background(), nil, func(Event) {})
	assert.Error(t, err)
}

func TestLoopDetector(t *testing.T) {
	var d loopDetector
	a := llm.ToolCall{Name: "A", Arguments: "{}"}
	b := llm.ToolCall{Name: "B", Arguments: "{}"}

	assert.Equal(t, loopNone, d.record(a))
	assert.Equal(t, loopNone, d.record(a))
	assert.Equal(t, loopWarn, d.record(a))
	assert.Equal(t, loopNone, d.record(b), "a different call resets the count")
	for i := 0; i < loopStopThreshold-2; i++ {
		d.record(b)
	}
	assert.Equal(t, loopStop, d.record(b))
}
