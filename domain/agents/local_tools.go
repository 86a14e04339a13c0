package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/drewby/chackgpt/domain/avatar"
	"github.com/drewby/chackgpt/domain/display"
)

// Local tool names.
const (
	ToolSetEmotion   = "SetEmotion"
	ToolDisplaySlide = "DisplaySlide"
	ToolDisplayVideo = "DisplayVideo"
)

// Slide layouts the popup knows how to render.
var SlideLayouts = []string{"hero-with-image", "title-only", "text-only", "grid-sections"}

const setEmotionDescription = "Sets your emotional expression to match the conversation context. " +
	"Use this tool to make the avatar more engaging and expressive during conversations. " +
	"ALWAYS call this tool at least once in each response to ensure the avatar reflects your current emotion."

const displaySlideDescription = "Displays a presentation slide to the user in a popup window. " +
	"Use this tool after retrieving slide content with GetPresentationSlide. " +
	"Supports the layouts 'hero-with-image' (split layout with image), 'title-only' (minimal design), " +
	"'text-only' (traditional) and 'grid-sections' (4-column grid with sections). " +
	"Include all properties from the slide data: description, bullets, badge, imagePath, imageAlt, url, sections and layout. " +
	"For grid-sections layout, pass the sections array with icon, title and content. " +
	"Include totalSlides if known to enable Next Slide navigation."

const displayVideoDescription = "Displays a video to the user in a full-screen player with a black background. " +
	"Use this tool after retrieving video metadata with GetVideo. " +
	"The video fills the content area next to the navigation sidebar."

// emotionTool builds SetEmotion for one avatar. resultFormat receives the
// resolved emotion.
func emotionTool(svc *avatar.Service, resultFormat string, log *slog.Logger) Tool {
	def := mcpgo.NewTool(ToolSetEmotion,
		mcpgo.WithDescription(setEmotionDescription),
		mcpgo.WithString("emotion",
			mcpgo.Required(),
			mcpgo.Description("The emotion to display"),
			mcpgo.Enum(svc.Allowed()...),
		),
	)
	return &localTool{def: def, handler: func(ctx context.Context, req mcpgo.CallToolRequest) (string, error) {
		requested, err := req.RequireString("emotion")
		if err != nil {
			return "", err
		}
		e, err := svc.Set(ctx, requested)
		if err != nil {
			return "", err
		}
		log.Info("emotion tool called", slog.String("character", svc.Character()), slog.String("emotion", e))
		return fmt.Sprintf(resultFormat, e), nil
	}}
}

// NewChackEmotionTool lets ChackGPT change its avatar.
func NewChackEmotionTool(svc *avatar.ChackService, log *slog.Logger) Tool {
	return emotionTool(svc.Service, "Emotion set to %s", log)
}

// NewDrewEmotionTool lets DrewGPT change its avatar.
func NewDrewEmotionTool(svc *avatar.DrewService, log *slog.Logger) Tool {
	return emotionTool(svc.Service, "Drew emotion set to %s", log)
}

type slideArgs struct {
	Topic       string            `json:"topic" validate:"required"`
	SlideNumber int               `json:"slideNumber" validate:"gte=1"`
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	Bullets     []string          `json:"bullets"`
	Layout      string            `json:"layout"`
	Badge       string            `json:"badge"`
	ImagePath   string            `json:"imagePath"`
	ImageAlt    string            `json:"imageAlt"`
	URL         string            `json:"url"`
	Sections    []display.Section `json:"sections"`
	Content     string            `json:"content"`
	Notes       string            `json:"notes"`
	TotalSlides *int              `json:"totalSlides" validate:"omitempty,gte=1"`
}

var argValidator = validator.New()

// NewDisplaySlideTool shows a slide in the popup.
func NewDisplaySlideTool(svc *display.SlideService, log *slog.Logger) Tool {
	def := mcpgo.NewTool(ToolDisplaySlide,
		mcpgo.WithDescription(displaySlideDescription),
		mcpgo.WithString("topic", mcpgo.Required(), mcpgo.Description("Presentation topic of the slide")),
		mcpgo.WithNumber("slideNumber", mcpgo.Required(), mcpgo.Description("1-based slide number")),
		mcpgo.WithString("title", mcpgo.Required(), mcpgo.Description("Slide title")),
		mcpgo.WithString("description", mcpgo.Description("Short description under the title")),
		mcpgo.WithArray("bullets", mcpgo.Description("Bullet points"), mcpgo.WithStringItems()),
		mcpgo.WithString("layout", mcpgo.Description("Slide layout"), mcpgo.Enum(SlideLayouts...)),
		mcpgo.WithString("badge", mcpgo.Description("Badge text shown above the title")),
		mcpgo.WithString("imagePath", mcpgo.Description("Image path for hero-with-image")),
		mcpgo.WithString("imageAlt", mcpgo.Description("Alternative text for the image")),
		mcpgo.WithString("url", mcpgo.Description("Link shown on the slide")),
		mcpgo.WithArray("sections",
			mcpgo.Description("Sections for grid-sections"),
			mcpgo.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"icon":    map[string]any{"type": "string"},
					"title":   map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
			}),
		),
		mcpgo.WithString("content", mcpgo.Description("Free text body")),
		mcpgo.WithString("notes", mcpgo.Description("Presenter notes")),
		mcpgo.WithNumber("totalSlides", mcpgo.Description("Number of slides in the topic")),
	)
	return &localTool{def: def, handler: func(_ context.Context, req mcpgo.CallToolRequest) (string, error) {
		var a slideArgs
		if err := req.BindArguments(&a); err != nil {
			return "", fmt.Errorf("invalid slide arguments: %w", err)
		}
		if err := argValidator.Struct(a); err != nil {
			return "", fmt.Errorf("invalid slide arguments: %w", err)
		}

		svc.Display(display.SlideInfo{
			Topic:       a.Topic,
			SlideNumber: a.SlideNumber,
			Title:       a.Title,
			Content:     a.Content,
			Notes:       a.Notes,
			TotalSlides: a.TotalSlides,
			Layout:      a.Layout,
			Badge:       a.Badge,
			ImagePath:   a.ImagePath,
			ImageAlt:    a.ImageAlt,
			URL:         a.URL,
			Description: a.Description,
			Bullets:     a.Bullets,
			Sections:    a.Sections,
		})
		log.Info("slide displayed",
			slog.String("topic", a.Topic),
			slog.Int("slide", a.SlideNumber),
			slog.String("layout", a.Layout),
		)

		result := fmt.Sprintf("Slide displayed: %s - Slide %d", a.Topic, a.SlideNumber)
		if a.TotalSlides != nil {
			result += fmt.Sprintf(" of %d", *a.TotalSlides)
		}
		return result, nil
	}}
}

// NewDisplayVideoTool plays a video in the full-screen player.
func NewDisplayVideoTool(svc *display.VideoService, log *slog.Logger) Tool {
	def := mcpgo.NewTool(ToolDisplayVideo,
		mcpgo.WithDescription(displayVideoDescription),
		mcpgo.WithString("id", mcpgo.Required(), mcpgo.Description("Video id")),
		mcpgo.WithString("title", mcpgo.Required(), mcpgo.Description("Video title")),
		mcpgo.WithString("description", mcpgo.Description("Video description")),
		mcpgo.WithString("videoUrl", mcpgo.Required(), mcpgo.Description("URL of the video file")),
	)
	return &localTool{def: def, handler: func(_ context.Context, req mcpgo.CallToolRequest) (string, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return "", err
		}
		title, err := req.RequireString("title")
		if err != nil {
			return "", err
		}
		videoURL, err := req.RequireString("videoUrl")
		if err != nil {
			return "", err
		}

		svc.Display(display.VideoInfo{
			ID:          id,
			Title:       title,
			Description: req.GetString("description", ""),
			VideoURL:    videoURL,
		})
		log.Info("video displayed", slog.String("id", id))
		return fmt.Sprintf("Video displayed: %s", title), nil
	}}
}
