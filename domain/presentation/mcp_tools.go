package presentation

import (
	"context"
	"fmt"
	"log/slog"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"

	"github.com/drewby/chackgpt/domain/mcp"
	"github.com/drewby/chackgpt/pkg/logger"
)

// SlideTool is the GetPresentationSlide MCP tool.
type SlideTool struct {
	svc *Service
	log *slog.Logger
}

func NewSlideTool(svc *Service, log *slog.Logger) *SlideTool {
	return &SlideTool{svc: svc, log: log.With(logger.Scope("presentation.mcp"))}
}

func (t *SlideTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("GetPresentationSlide",
		mcpgo.WithDescription("Retrieves a presentation slide for the specified topic, slide number, and language. "+
			"Supported topics: Dotnet10 (.NET 10), Intelligence (Microsoft Agent Framework, MCP), Aspire13 (Aspire 13), "+
			"Dotnet10Platform (ASP.NET Core 10, .NET Libraries 10, SDK & Tooling 10), Summary (Intelligent Apps Ecosystem). "+
			"Supported languages: Japanese only. "+
			"Returns structured content with title, description, bullets, and slide navigation info."),
		mcpgo.WithString("topic",
			mcpgo.Required(),
			mcpgo.Description("Presentation topic"),
			mcpgo.Enum(lo.Map(Topics, func(t Topic, _ int) string { return string(t) })...),
		),
		mcpgo.WithNumber("slideNumber",
			mcpgo.Required(),
			mcpgo.Description("Slide number (1-based)"),
		),
		mcpgo.WithString("language",
			mcpgo.Description("Presentation language (only Japanese)"),
			mcpgo.Enum(string(LanguageNameJapanese)),
			mcpgo.DefaultString(string(LanguageNameJapanese)),
		),
	)
}

func (t *SlideTool) Handle(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	rawTopic, err := req.RequireString("topic")
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	topic, ok := ParseTopic(rawTopic)
	if !ok {
		return mcpgo.NewToolResultError(fmt.Sprintf("unknown topic %q", rawTopic)), nil
	}
	slideNumber, err := req.RequireInt("slideNumber")
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	language := Language(req.GetString("language", string(LanguageNameJapanese)))
	if language.Code() == "" {
		return mcpgo.NewToolResultError(fmt.Sprintf("unsupported language %q", language)), nil
	}

	t.log.Info("GetPresentationSlide invoked",
		slog.String("topic", string(topic)),
		slog.Int("slide", slideNumber),
		slog.String("language", string(language)),
	)

	slide := t.svc.GetSlide(topic.ID(), slideNumber, language.Code())
	if slide == nil {
		total := t.svc.SlideCount(topic.ID(), language.Code())
		msg := fmt.Sprintf("Slide %d not found for topic '%s' in language '%s'. Valid range: 1-%d", slideNumber, topic, language, total)
		t.log.Warn(msg)
		return mcp.ErrorResult(msg), nil
	}
	return mcp.JSONResult(slide), nil
}

// TopicsTool is the GetAvailableTopics MCP tool.
type TopicsTool struct {
	svc *Service
}

func NewTopicsTool(svc *Service) *TopicsTool {
	return &TopicsTool{svc: svc}
}

func (t *TopicsTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("GetAvailableTopics",
		mcpgo.WithDescription("Lists all available presentation topics. Returns an array of topic identifiers."),
	)
}

func (t *TopicsTool) Handle(context.Context, mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return mcp.JSONResult(t.svc.AvailableTopics()), nil
}
