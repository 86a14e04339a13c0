package video

import (
	"context"
	"encoding/json"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultText(t *testing.T, res *mcpgo.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := mcpgo.AsTextContent(res.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestGetVideoTool(t *testing.T) {
	tool := NewGetVideoTool(newTestService(t), discardLogger())
	call := func(args map[string]any) *mcpgo.CallToolResult {
		res, err := tool.Handle(context.Background(), mcpgo.CallToolRequest{
			Params: mcpgo.CallToolParams{Arguments: args},
		})
		require.NoError(t, err)
		return res
	}

	t.Run("found by title", func(t *testing.T) {
		var v Video
		require.NoError(t, json.Unmarshal([]byte(resultText(t, call(map[string]any{"identifier": ".NET 10 Overview"}))), &v))
		assert.Equal(t, "dotnet10-overview", v.ID)
		assert.Contains(t, v.VideoURL, "https://")
	})

	t.Run("not found", func(t *testing.T) {
		res := call(map[string]any{"identifier": "ghost"})
		assert.False(t, res.IsError)
		assert.JSONEq(t, `{"error":"Video with identifier 'ghost' not found"}`, resultText(t, res))
	})

	t.Run("missing argument", func(t *testing.T) {
		assert.True(t, call(map[string]any{}).IsError)
	})
}

func TestAllVideosTool(t *testing.T) {
	res, err := NewAllVideosTool(newTestService(t)).Handle(context.Background(), mcpgo.CallToolRequest{})
	require.NoError(t, err)

	var videos []Video
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &videos))
	assert.Len(t, videos, 6)
}
