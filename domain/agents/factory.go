package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/drewby/chackgpt/domain/avatar"
	"github.com/drewby/chackgpt/domain/display"
	"github.com/drewby/chackgpt/internal/config"
	"github.com/drewby/chackgpt/pkg/llm"
	"github.com/drewby/chackgpt/pkg/llm/azureopenai"
	"github.com/drewby/chackgpt/pkg/logger"
)

// Agent names. The order of Participants is the speaking order.
const (
	ChackGPT = "ChackGPT"
	DrewGPT  = "DrewGPT"
)

var Participants = []string{ChackGPT, DrewGPT}

// SupportedServiceVersions are the Azure OpenAI API versions the chat
// client is known to work with.
var SupportedServiceVersions = []string{
	"2024-06-01",
	"2024-08-01-preview",
	"2024-09-01-preview",
	"2024-10-01-preview",
	"2024-10-21",
	"2024-12-01-preview",
	"2025-01-01-preview",
	"2025-03-01-preview",
	"2025-04-01-preview",
}

// ErrNotConfigured is returned by the chat model when no Azure OpenAI
// credentials were supplied.
var ErrNotConfigured = errors.New("azure openai is not configured")

// ParseServiceVersion checks v against SupportedServiceVersions.
func ParseServiceVersion(v string) (string, error) {
	if !lo.Contains(SupportedServiceVersions, v) {
		return "", fmt.Errorf("unsupported service version: %s", v)
	}
	return v, nil
}

// FactoryParams are the services the agent tools act on.
type FactoryParams struct {
	fx.In

	Config   *config.Config
	Streamer llm.Streamer
	MCP      MCPTools
	Chack    *avatar.ChackService
	Drew     *avatar.DrewService
	Slides   *display.SlideService
	Videos   *display.VideoService
	Log      *slog.Logger
}

// Factory builds the ChackGPT and DrewGPT agents.
type Factory struct {
	cfg      config.AzureOpenAIConfig
	personas map[string]Persona
	streamer llm.Streamer
	mcp      MCPTools
	log      *slog.Logger

	chackEmotion Tool
	drewEmotion  Tool
	displaySlide Tool
	displayVideo Tool
}

func NewFactory(p FactoryParams) (*Factory, error) {
	personas, err := LoadPersonas()
	if err != nil {
		return nil, err
	}
	for _, name := range Participants {
		if _, ok := personas[name]; !ok {
			return nil, fmt.Errorf("missing persona for %s", name)
		}
	}

	log := p.Log.With(logger.Scope("agents"))
	return &Factory{
		cfg:          p.Config.AzureOpenAI,
		personas:     personas,
		streamer:     p.Streamer,
		mcp:          p.MCP,
		log:          log,
		chackEmotion: NewChackEmotionTool(p.Chack, log),
		drewEmotion:  NewDrewEmotionTool(p.Drew, log),
		displaySlide: NewDisplaySlideTool(p.Slides, log),
		displayVideo: NewDisplayVideoTool(p.Videos, log),
	}, nil
}

// Validate checks the Azure OpenAI options, including the service version.
func (f *Factory) Validate() error {
	if err := f.cfg.Validate(); err != nil {
		return err
	}
	_, err := ParseServiceVersion(f.cfg.ServiceVersion)
	return err
}

// Streamer returns the chat model shared by both agents.
func (f *Factory) Streamer() llm.Streamer { return f.streamer }

// CreateAgent builds an agent from a persona and tools.
func (f *Factory) CreateAgent(name, instructions string, tools ...Tool) *Agent {
	return NewAgent(name, instructions, f.log, tools...)
}

// Agents returns the participants in speaking order. ChackGPT gets the
// API service tools plus the emotion and display tools; DrewGPT only
// changes its own emotion. The MCP tool list is fetched on every call so a
// restarted API service is picked up.
func (f *Factory) Agents(ctx context.Context) []*Agent {
	remote := lo.Map(f.mcp.ListTools(ctx), func(t mcpgo.Tool, _ int) Tool {
		return &remoteTool{def: t, client: f.mcp}
	})

	chackTools := make([]Tool, 0, len(remote)+3)
	chackTools = append(chackTools, remote...)
	chackTools = append(chackTools, f.chackEmotion, f.displaySlide, f.displayVideo)

	return []*Agent{
		f.CreateAgent(ChackGPT, f.personas[ChackGPT].Instructions, chackTools...),
		f.CreateAgent(DrewGPT, f.personas[DrewGPT].Instructions, f.drewEmotion),
	}
}

// NewStreamer builds the Azure OpenAI client. Without credentials the web
// app still starts and every chat fails with ErrNotConfigured.
func NewStreamer(cfg *config.Config, log *slog.Logger) (llm.Streamer, error) {
	az := cfg.AzureOpenAI
	if !az.IsConfigured() {
		log.Warn("azure openai credentials missing, chat is disabled", logger.Scope("agents"))
		return unconfigured{}, nil
	}
	client, err := azureopenai.NewClient(azureopenai.Config{
		Endpoint:       az.Endpoint,
		APIKey:         az.APIKey,
		Deployment:     az.DeploymentName,
		ServiceVersion: az.ServiceVersion,
	}, azureopenai.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return client, nil
}

type unconfigured struct{}

func (unconfigured) StreamChat(context.Context, llm.ChatRequest, func(string)) (*llm.ChatResult, error) {
	return nil, ErrNotConfigured
}

func (unconfigured) IsConfigured() bool { return false }
