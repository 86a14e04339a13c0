package mcp

import (
	"context"
	"log/slog"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"

	"github.com/drewby/chackgpt/internal/version"
	"github.com/drewby/chackgpt/pkg/logger"
	"github.com/drewby/chackgpt/pkg/tracing"
)

const ServerName = "ChackGPT ApiService"

// ServerParams are the dependencies of NewServer.
type ServerParams struct {
	fx.In

	Log   *slog.Logger
	Tools []Tool `group:"mcp_tools"`
}

// NewServer creates the MCP server and registers every contributed tool.
func NewServer(p ServerParams) *server.MCPServer {
	log := p.Log.With(logger.Scope("mcp"))

	s := server.NewMCPServer(
		ServerName,
		version.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, t := range p.Tools {
		def := t.Definition()
		s.AddTool(def, instrument(def.Name, t.Handle, log))
		log.Debug("registered MCP tool", slog.String("tool", def.Name))
	}
	log.Info("MCP server ready", slog.Int("tools", len(p.Tools)))

	return s
}

// instrument wraps a tool handler with a span, a log line and metrics.
func instrument(name string, h server.ToolHandlerFunc, log *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		ctx, span := tracing.Start(ctx, "mcp.tool."+name,
			attribute.String("mcp.tool.name", name),
		)
		defer span.End()

		start := time.Now()
		res, err := h(ctx, req)
		outcome := "ok"
		switch {
		case err != nil:
			outcome = "error"
			tracing.RecordError(span, err)
			log.Error("MCP tool failed", slog.String("tool", name), logger.Error(err))
		case res != nil && res.IsError:
			outcome = "tool_error"
		}
		toolCalls.WithLabelValues(name, outcome).Inc()
		toolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		log.Info("MCP tool invoked",
			slog.String("tool", name),
			slog.String("outcome", outcome),
			slog.Duration("duration", time.Since(start)),
		)
		return res, err
	}
}

// NewStreamableHTTPServer exposes s over the streamable HTTP transport.
func NewStreamableHTTPServer(lc fx.Lifecycle, s *server.MCPServer, log *slog.Logger) *server.StreamableHTTPServer {
	h := server.NewStreamableHTTPServer(s)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down MCP transport", logger.Scope("mcp"))
			return h.Shutdown(ctx)
		},
	})
	return h
}
