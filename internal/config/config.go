package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration. Both binaries read the same
// struct; each one only consults the sections it needs.
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"5000"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is a comma separated origin list; "*" allows any origin.
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`

	AzureOpenAI AzureOpenAIConfig
	MCPClient   MCPClientConfig
	Hub         HubConfig
	Redis       RedisConfig
	Content     ContentConfig
	APIService  APIServiceConfig
	Otel        OtelConfig

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"3600s"` // long lived websocket and SSE
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"3600s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// AllowedOrigins splits CORSOrigins into the list echo's CORS middleware expects.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// MCPClientConfig locates the API service hosting the MCP endpoint.
type MCPClientConfig struct {
	BaseURL string        `env:"API_SERVICE_URL" envDefault:"http://localhost:5001"`
	Path    string        `env:"MCP_PATH" envDefault:"/api/mcp"`
	Timeout time.Duration `env:"MCP_TIMEOUT" envDefault:"30s"`
}

// Endpoint returns the full MCP endpoint URL.
func (m *MCPClientConfig) Endpoint() string {
	return strings.TrimRight(m.BaseURL, "/") + m.Path
}

// HubConfig tunes the chat hub.
type HubConfig struct {
	HeartbeatInterval time.Duration `env:"HUB_HEARTBEAT_INTERVAL" envDefault:"15s"`
	// MessagesPerMinute bounds SendMessage calls per connection. Zero disables the limit.
	MessagesPerMinute int `env:"HUB_MESSAGES_PER_MINUTE" envDefault:"30"`
	MessageBurst      int `env:"HUB_MESSAGE_BURST" envDefault:"5"`
	// HistorySize bounds how many connections keep a conversation history.
	HistorySize     int `env:"HUB_HISTORY_SIZE" envDefault:"256"`
	MaxToolRounds   int `env:"AGENT_MAX_TOOL_ROUNDS" envDefault:"8"`
	MaxMessageBytes int `env:"HUB_MAX_MESSAGE_BYTES" envDefault:"65536"`
}

// RedisConfig enables the shared avatar state store when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:""`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Prefix   string `env:"REDIS_PREFIX" envDefault:"chackgpt:"`
}

func (r *RedisConfig) IsEnabled() bool {
	return r.Addr != ""
}

// ContentConfig points at static media served by the web binary.
type ContentConfig struct {
	WebRoot string `env:"WEB_ROOT" envDefault:"wwwroot"`
}

// APIServiceConfig holds settings only the API service binary reads.
type APIServiceConfig struct {
	Port      int    `env:"API_SERVICE_PORT" envDefault:"5001"`
	ImagesDir string `env:"PRESENTATION_IMAGES_DIR" envDefault:"wwwroot/images/presentations"`
}

// NewConfig creates a new Config from environment variables
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("mcp_endpoint", cfg.MCPClient.Endpoint()),
		slog.Bool("azure_openai_configured", cfg.AzureOpenAI.IsConfigured()),
		slog.Bool("redis_enabled", cfg.Redis.IsEnabled()),
	)

	return cfg, nil
}

// ForAPIService returns a copy of cfg adjusted for the API service binary:
// it listens on APIService.Port and, unless OTEL_SERVICE_NAME was set,
// reports its spans under its own service name.
func ForAPIService(cfg *Config) *Config {
	c := *cfg
	c.ServerPort = cfg.APIService.Port
	if c.Otel.ServiceName == DefaultServiceName {
		c.Otel.ServiceName = DefaultServiceName + "-apiservice"
	}
	return &c
}
