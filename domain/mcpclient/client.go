package mcpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/drewby/chackgpt/internal/config"
	"github.com/drewby/chackgpt/pkg/logger"
	"github.com/drewby/chackgpt/pkg/tracing"
)

const (
	ClientName    = "ChackGPT Web Client"
	ClientVersion = "1.0.0"
)

// Client talks to the API service's MCP endpoint. The session is opened on
// first use and dropped after a failed call so the next call reconnects.
type Client struct {
	endpoint string
	timeout  time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	client *mcpclient.Client
}

func NewClient(cfg *config.Config, log *slog.Logger) *Client {
	return New(cfg.MCPClient.Endpoint(), cfg.MCPClient.Timeout, log)
}

// New creates a client for endpoint. A zero timeout means 30 seconds.
func New(endpoint string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		log:      log.With(logger.Scope("mcpclient")),
	}
}

func (c *Client) Endpoint() string { return c.endpoint }

// session returns the connected client, connecting if needed.
func (c *Client) session(ctx context.Context) (*mcpclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	c.log.Info("initializing MCP client connection", slog.String("endpoint", c.endpoint))

	t, err := transport.NewStreamableHTTP(c.endpoint, transport.WithHTTPTimeout(c.timeout))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP transport: %w", err)
	}

	cl := mcpclient.NewClient(t)
	if err := cl.Start(ctx); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("starting MCP client: %w", err)
	}

	_, err = cl.Initialize(ctx, mcpgo.InitializeRequest{
		Params: mcpgo.InitializeParams{
			ProtocolVersion: mcpgo.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcpgo.Implementation{
				Name:    ClientName,
				Version: ClientVersion,
			},
		},
	})
	if err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("initializing MCP session with %s: %w", c.endpoint, err)
	}

	c.client = cl
	c.log.Info("MCP client connected")
	return cl, nil
}

// evict drops cl if it is still the current session.
func (c *Client) evict(cl *mcpclient.Client) {
	c.mu.Lock()
	if c.client == cl {
		c.client = nil
	}
	c.mu.Unlock()

	if err := cl.Close(); err != nil {
		c.log.Warn("error closing MCP session", logger.Error(err))
	}
}

// ListTools returns the server's tools. Failures are logged and yield an
// empty list so the agents can still run without remote tools.
func (c *Client) ListTools(ctx context.Context) []mcpgo.Tool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cl, err := c.session(ctx)
	if err != nil {
		c.log.Error("error listing MCP tools", logger.Error(err))
		return nil
	}

	res, err := cl.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		c.evict(cl)
		c.log.Error("error listing MCP tools", logger.Error(err))
		return nil
	}

	c.log.Info("retrieved tools from MCP server", slog.Int("count", len(res.Tools)))
	return res.Tools
}

// CallTool invokes name and returns its text content. A result flagged as
// an error is returned as ToolError.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	ctx, span := tracing.Start(ctx, "mcp.client.call_tool", attribute.String("mcp.tool.name", name))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.callTool(ctx, name, args)
	outcome := "ok"
	var toolErr *ToolError
	switch {
	case errors.As(err, &toolErr):
		outcome = "tool_error"
	case err != nil:
		outcome = "error"
		tracing.RecordError(span, err)
	}
	callsTotal.WithLabelValues(name, outcome).Inc()
	callDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return text, err
}

func (c *Client) callTool(ctx context.Context, name string, args map[string]any) (string, error) {
	cl, err := c.session(ctx)
	if err != nil {
		return "", err
	}

	res, err := cl.CallTool(ctx, mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		c.evict(cl)
		return "", fmt.Errorf("calling tool %q: %w", name, err)
	}

	text := resultText(res)
	if res.IsError {
		return "", &ToolError{Tool: name, Message: text}
	}
	return text, nil
}

// Close ends the session if one is open.
func (c *Client) Close() error {
	c.mu.Lock()
	cl := c.client
	c.client = nil
	c.mu.Unlock()

	if cl == nil {
		return nil
	}
	return cl.Close()
}

// Name implements health.Checker.
func (c *Client) Name() string { return "mcp_api_service" }

// Check opens the session if needed.
func (c *Client) Check(ctx context.Context) error {
	_, err := c.session(ctx)
	return err
}

// ToolError is a tool result the server marked as failed.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed: %s", e.Tool, e.Message)
}

func resultText(res *mcpgo.CallToolResult) string {
	if res == nil {
		return ""
	}
	parts := make([]string, 0, len(res.Content))
	for _, content := range res.Content {
		if tc, ok := mcpgo.AsTextContent(content); ok {
			parts = append(parts, tc.Text)
		} else {
			parts = append(parts, fmt.Sprintf("[unsupported content type: %T]", content))
		}
	}
	return strings.Join(parts, "\n")
}
