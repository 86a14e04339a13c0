// Package workflow runs the ChackGPT and DrewGPT group chat: agents take
// turns in a fixed order until the keyword manager ends the conversation.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/drewby/chackgpt/domain/agents"
	"github.com/drewby/chackgpt/internal/config"
	"github.com/drewby/chackgpt/pkg/llm"
	"github.com/drewby/chackgpt/pkg/logger"
	"github.com/drewby/chackgpt/pkg/tracing"
)

// DefaultMaxToolRounds bounds model calls in one agent turn.
const DefaultMaxToolRounds = 8

// EventType identifies the kind of run event.
type EventType int

const (
	// EventExecutorChanged is emitted when a different agent starts speaking.
	EventExecutorChanged EventType = iota
	// EventToken carries one streamed text delta.
	EventToken
	// EventToolCall is emitted before a tool runs.
	EventToolCall
	// EventCompleted carries every message the run produced.
	EventCompleted
)

// Event is a single run event. ExecutorID and Agent are set on every event
// except EventCompleted.
type Event struct {
	Type       EventType
	ExecutorID string
	Agent      string
	Text       string
	Tool       string
	Messages   []llm.Message
}

// AgentSource supplies the participants and the model they share.
type AgentSource interface {
	Agents(ctx context.Context) []*agents.Agent
	Streamer() llm.Streamer
}

// Workflow drives one round robin conversation per Run.
type Workflow struct {
	source        AgentSource
	budget        *IterationBudget
	maxToolRounds int
	log           *slog.Logger
}

func NewWorkflow(factory *agents.Factory, budget *IterationBudget, cfg *config.Config, log *slog.Logger) *Workflow {
	return New(factory, budget, cfg.Hub.MaxToolRounds, log)
}

func New(source AgentSource, budget *IterationBudget, maxToolRounds int, log *slog.Logger) *Workflow {
	if maxToolRounds <= 0 {
		maxToolRounds = DefaultMaxToolRounds
	}
	return &Workflow{
		source:        source,
		budget:        budget,
		maxToolRounds: maxToolRounds,
		log:           log.With(logger.Scope("workflow")),
	}
}

// ExecutorID names one agent's participation in a run.
func ExecutorID(agent string) string {
	return agent + "_" + uuid.NewString()
}

// Run continues the conversation in history and returns the messages the
// agents added. emit is called synchronously for every event. On error the
// messages produced so far are returned with it.
func (w *Workflow) Run(ctx context.Context, history []llm.Message, emit func(Event)) ([]llm.Message, error) {
	ctx, span := tracing.Start(ctx, "workflow.run", attribute.Int("workflow.history_length", len(history)))
	defer span.End()
	start := time.Now()
	defer func() { runDuration.Observe(time.Since(start).Seconds()) }()

	participants := w.source.Agents(ctx)
	if len(participants) == 0 {
		runsTotal.WithLabelValues("error").Inc()
		return nil, errors.New("workflow has no participants")
	}
	ids := make([]string, len(participants))
	for i, a := range participants {
		ids[i] = ExecutorID(a.Name)
	}

	conversation := make([]llm.Message, len(history), len(history)+8)
	copy(conversation, history)
	var produced []llm.Message

	manager := NewKeywordManager(w.budget, w.log)
	lastExecutor := ""
	turn := 0
	for !manager.ShouldTerminate(conversation) {
		if err := ctx.Err(); err != nil {
			runsTotal.WithLabelValues("canceled").Inc()
			return produced, err
		}

		i := turn % len(participants)
		agent, id := participants[i], ids[i]
		if id != lastExecutor {
			emit(Event{Type: EventExecutorChanged, ExecutorID: id, Agent: agent.Name})
			lastExecutor = id
		}

		msgs, err := w.takeTurn(ctx, agent, id, conversation, emit)
		conversation = append(conversation, msgs...)
		produced = append(produced, msgs...)
		if err != nil {
			runsTotal.WithLabelValues("error").Inc()
			tracing.RecordError(span, err)
			return produced, err
		}
		turn++
	}

	span.SetAttributes(attribute.Int("workflow.turns", turn))
	w.log.Debug("run finished", slog.Int("turns", turn), slog.Int("messages", len(produced)))
	runsTotal.WithLabelValues("ok").Inc()
	emit(Event{Type: EventCompleted, Messages: produced})
	return produced, nil
}

// takeTurn lets one agent speak: stream a completion, run the tools it asks
// for and repeat until it answers without tool calls.
func (w *Workflow) takeTurn(ctx context.Context, agent *agents.Agent, executorID string, conversation []llm.Message, emit func(Event)) ([]llm.Message, error) {
	ctx, span := tracing.Start(ctx, "workflow.turn",
		attribute.String("agent.name", agent.Name),
		attribute.String("workflow.executor_id", executorID),
	)
	defer span.End()
	turnsTotal.WithLabelValues(agent.Name).Inc()

	view := viewFor(agent.Name, conversation)
	tools := agent.Tools()
	streamer := w.source.Streamer()

	onToken := func(tok string) {
		emit(Event{Type: EventToken, ExecutorID: executorID, Agent: agent.Name, Text: tok})
	}

	var out []llm.Message
	var loops loopDetector
	for round := 1; ; round++ {
		msgs := make([]llm.Message, 0, len(view)+len(out))
		msgs = append(append(msgs, view...), out...)

		modelCalls.WithLabelValues(agent.Name).Inc()
		res, err := streamer.StreamChat(ctx, llm.ChatRequest{
			SystemPrompt: agent.Instructions,
			Messages:     msgs,
			Tools:        tools,
		}, onToken)
		if err != nil {
			tracing.RecordError(span, err)
			return out, fmt.Errorf("%s turn failed: %w", agent.Name, err)
		}

		out = append(out, llm.Message{
			Role:      llm.RoleAssistant,
			Author:    agent.Name,
			Content:   res.Content,
			ToolCalls: res.ToolCalls,
		})
		if len(res.ToolCalls) == 0 {
			return out, nil
		}

		stop := false
		for _, call := range res.ToolCalls {
			emit(Event{Type: EventToolCall, ExecutorID: executorID, Agent: agent.Name, Tool: call.Name})
			result := agent.Invoke(ctx, call)
			out = append(out, llm.Message{
				Role:       llm.RoleTool,
				Author:     agent.Name,
				Content:    result,
				ToolCallID: call.ID,
			})

			switch loops.record(call) {
			case loopWarn:
				w.log.Warn("agent repeating tool call", slog.String("agent", agent.Name), slog.String("tool", call.Name))
			case loopStop:
				stop = true
			}
		}

		if stop {
			w.log.Warn("ending turn stuck in a tool loop", slog.String("agent", agent.Name))
			return out, nil
		}
		if round >= w.maxToolRounds {
			w.log.Warn("tool round limit reached", slog.String("agent", agent.Name), slog.Int("rounds", round))
			return out, nil
		}
	}
}

// viewFor is the history as agent sees it. Its own messages and user
// messages are kept as they are. Other agents' tool traffic is dropped and
// their text becomes an assistant turn prefixed with their name.
func viewFor(agent string, conversation []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(conversation))
	for _, m := range conversation {
		switch {
		case m.Author == "" || m.Author == agent:
			out = append(out, m)
		case m.Role == llm.RoleTool:
		case strings.TrimSpace(m.Content) == "":
		default:
			out = append(out, llm.Message{
				Role:    llm.RoleAssistant,
				Author:  m.Author,
				Content: m.Author + ": " + m.Content,
			})
		}
	}
	return out
}
