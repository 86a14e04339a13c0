package video

import (
	"context"
	"fmt"
	"log/slog"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/drewby/chackgpt/domain/mcp"
	"github.com/drewby/chackgpt/pkg/logger"
)

// GetVideoTool is the GetVideo MCP tool.
type GetVideoTool struct {
	svc *Service
	log *slog.Logger
}

func NewGetVideoTool(svc *Service, log *slog.Logger) *GetVideoTool {
	return &GetVideoTool{svc: svc, log: log.With(logger.Scope("video.mcp"))}
}

func (t *GetVideoTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("GetVideo",
		mcpgo.WithDescription("Retrieves video metadata by ID or title. "+
			"Returns video information including id, title, description, and videoUrl. "+
			"Can search by exact video ID (e.g., 'what-will-happen-to-chack') or by title."),
		mcpgo.WithString("identifier",
			mcpgo.Required(),
			mcpgo.Description("Video ID or title"),
		),
	)
}

func (t *GetVideoTool) Handle(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	t.log.Info("GetVideo invoked", slog.String("identifier", identifier))

	v := t.svc.Find(identifier)
	if v == nil {
		msg := fmt.Sprintf("Video with identifier '%s' not found", identifier)
		t.log.Warn(msg)
		return mcp.ErrorResult(msg), nil
	}
	return mcp.JSONResult(v), nil
}

// AllVideosTool is the GetAllVideos MCP tool.
type AllVideosTool struct {
	svc *Service
}

func NewAllVideosTool(svc *Service) *AllVideosTool {
	return &AllVideosTool{svc: svc}
}

func (t *AllVideosTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("GetAllVideos",
		mcpgo.WithDescription("Lists all available videos. Returns an array of video metadata objects."),
	)
}

func (t *AllVideosTool) Handle(context.Context, mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return mcp.JSONResult(t.svc.All()), nil
}
