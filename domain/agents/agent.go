package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/drewby/chackgpt/domain/mcpclient"
	"github.com/drewby/chackgpt/pkg/llm"
	"github.com/drewby/chackgpt/pkg/logger"
	"github.com/drewby/chackgpt/pkg/tracing"
)

// Agent is a named participant in the group chat: a system prompt plus the
// tools it may call.
type Agent struct {
	Name         string
	Instructions string

	tools  []Tool
	byName map[string]Tool
	log    *slog.Logger
}

// NewAgent builds an agent. A later tool with the same name replaces an
// earlier one.
func NewAgent(name, instructions string, log *slog.Logger, tools ...Tool) *Agent {
	a := &Agent{
		Name:         name,
		Instructions: instructions,
		byName:       make(map[string]Tool, len(tools)),
		log:          log.With(logger.Scope("agents."+name)),
	}
	for _, t := range tools {
		n := t.Definition().Name
		if _, dup := a.byName[n]; dup {
			a.tools = lo.Reject(a.tools, func(x Tool, _ int) bool { return x.Definition().Name == n })
		}
		a.byName[n] = t
		a.tools = append(a.tools, t)
	}
	return a
}

// Tools returns the function definitions sent to the model.
func (a *Agent) Tools() []llm.ToolDefinition {
	return lo.Map(a.tools, func(t Tool, _ int) llm.ToolDefinition { return t.Definition() })
}

// ToolNames lists the agent's tools in registration order.
func (a *Agent) ToolNames() []string {
	return lo.Map(a.tools, func(t Tool, _ int) string { return t.Definition().Name })
}

// Invoke runs one tool call and returns the text handed back to the model.
// Failures are reported to the model as text, never as an error.
func (a *Agent) Invoke(ctx context.Context, call llm.ToolCall) string {
	ctx, span := tracing.Start(ctx, "agent.tool."+call.Name,
		attribute.String("agent.name", a.Name),
		attribute.String("tool.call_id", call.ID),
	)
	defer span.End()

	start := time.Now()
	t, ok := a.byName[call.Name]
	if !ok {
		toolInvocations.WithLabelValues(a.Name, call.Name, "unknown").Inc()
		a.log.Warn("model called unknown tool", slog.String("tool", call.Name))
		return fmt.Sprintf("Error: unknown tool %q", call.Name)
	}

	result, err := t.Call(ctx, call.Arguments)
	toolDuration.WithLabelValues(a.Name, call.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		var toolErr *mcpclient.ToolError
		if errors.As(err, &toolErr) {
			toolInvocations.WithLabelValues(a.Name, call.Name, "tool_error").Inc()
			return toolErr.Message
		}
		toolInvocations.WithLabelValues(a.Name, call.Name, "error").Inc()
		tracing.RecordError(span, err)
		a.log.Warn("tool call failed", slog.String("tool", call.Name), logger.Error(err))
		return "Error: " + err.Error()
	}

	toolInvocations.WithLabelValues(a.Name, call.Name, "ok").Inc()
	return result
}
