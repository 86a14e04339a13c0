package mcpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) string {
	t.Helper()
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	s.AddTool(
		mcpgo.NewTool("GetVideo", mcpgo.WithString("identifier", mcpgo.Required())),
		func(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
			id, err := req.RequireString("identifier")
			if err != nil {
				return mcpgo.NewToolResultError(err.Error()), nil
			}
			return mcpgo.NewToolResultText(`{"id":"` + id + `"}`), nil
		},
	)

	ts := httptest.NewServer(server.NewStreamableHTTPServer(s))
	t.Cleanup(ts.Close)
	return ts.URL + "/api/mcp"
}

func TestClient_ListAndCall(t *testing.T) {
	c := New(newTestServer(t), 5*time.Second, discardLogger())
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	tools := c.ListTools(ctx)
	require.Len(t, tools, 1)
	assert.Equal(t, "GetVideo", tools[0].Name)

	text, err := c.CallTool(ctx, "GetVideo", map[string]any{"identifier": "dotnet10-overview"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"dotnet10-overview"}`, text)

	_, err = c.CallTool(ctx, "GetVideo", map[string]any{})
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "GetVideo", toolErr.Tool)

	assert.NoError(t, c.Check(ctx))
}

func TestClient_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1/api/mcp", time.Second, discardLogger())
	ctx := context.Background()

	assert.Empty(t, c.ListTools(ctx))

	_, err := c.CallTool(ctx, "GetVideo", map[string]any{"identifier": "x"})
	assert.Error(t, err)
	assert.Error(t, c.Check(ctx))
	assert.NoError(t, c.Close())
}

func TestNew_DefaultTimeout(t *testing.T) {
	c := New("http://localhost:5001/api/mcp", 0, discardLogger())
	assert.Equal(t, 30*time.Second, c.timeout)
	assert.Equal(t, "http://localhost:5001/api/mcp", c.Endpoint())
}
