// Package azureopenai streams chat completions with tool calls from an Azure
// OpenAI deployment.
package azureopenai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/drewby/chackgpt/pkg/llm"
	"github.com/drewby/chackgpt/pkg/logger"
)

const (
	// DefaultMaxRetries is the default number of retries
	DefaultMaxRetries = 3

	// DefaultBaseDelay is the base delay for exponential backoff
	DefaultBaseDelay = 100 * time.Millisecond

	// DefaultMaxDelay is the maximum delay for exponential backoff
	DefaultMaxDelay = 10 * time.Second

	// DefaultTimeout bounds a whole streamed completion
	DefaultTimeout = 120 * time.Second
)

// Config holds the Azure OpenAI connection settings.
type Config struct {
	Endpoint       string
	APIKey         string
	Deployment     string
	ServiceVersion string
	Timeout        time.Duration
}

var emptyParameters = json.RawMessage(`{"type":"object","properties":{}}`)

// Client is an Azure OpenAI chat client with streaming support.
type Client struct {
	api        *openai.Client
	deployment string
	configured bool
	log        *slog.Logger

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithMaxRetries sets the maximum number of retries
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBaseDelay sets the base delay for exponential backoff
func WithBaseDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.baseDelay = d
	}
}

// WithMaxDelay sets the maximum delay for exponential backoff
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for one deployment.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Deployment == "" {
		return nil, fmt.Errorf("deployment is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	apiCfg := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.ServiceVersion != "" {
		apiCfg.APIVersion = cfg.ServiceVersion
	}
	deployment := cfg.Deployment
	apiCfg.AzureModelMapperFunc = func(string) string { return deployment }
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c := &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		deployment: cfg.Deployment,
		configured: cfg.APIKey != "",
		log:        slog.Default(),
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		maxDelay:   DefaultMaxDelay,
	}

	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Scope("azureopenai"))

	return c, nil
}

// StreamChat streams a completion. Failures are retried only while nothing
// has been delivered to onToken; a stream that fails midway returns its error.
func (c *Client) StreamChat(ctx context.Context, req llm.ChatRequest, onToken func(string)) (*llm.ChatResult, error) {
	apiReq := c.buildRequest(req)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			c.log.Debug("retrying chat request",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)
			retriesTotal.Inc()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, started, err := c.doStream(ctx, apiReq, onToken)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if started || !isRetryable(err) {
			return nil, err
		}

		c.log.Warn("chat request failed",
			slog.Int("attempt", attempt),
			logger.Error(err),
		)
	}

	return nil, fmt.Errorf("all retries exhausted: %w", lastErr)
}

func (c *Client) buildRequest(req llm.ChatRequest) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, toAPIMessage(m))
	}

	apiReq := openai.ChatCompletionRequest{
		Model:    c.deployment,
		Messages: msgs,
		Stream:   true,
	}
	if req.Temperature != nil {
		apiReq.Temperature = *req.Temperature
	}
	for _, t := range req.Tools {
		params := t.Parameters
		if len(params) == 0 {
			params = emptyParameters
		}
		apiReq.Tools = append(apiReq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return apiReq
}

func toAPIMessage(m llm.Message) openai.ChatCompletionMessage {
	out := openai.ChatCompletionMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}
	if m.Role == llm.RoleAssistant && m.Author != "" {
		out.Name = m.Author
	}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
			ID:   tc.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return out
}

// doStream runs a single streamed request. started reports whether any text
// reached onToken before the error.
func (c *Client) doStream(ctx context.Context, apiReq openai.ChatCompletionRequest, onToken func(string)) (*llm.ChatResult, bool, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, apiReq)
	if err != nil {
		return nil, false, err
	}
	defer stream.Close()

	var (
		content strings.Builder
		calls   = newToolCallAccumulator()
		finish  string
		started bool
	)
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, started, fmt.Errorf("error reading stream: %w", err)
		}

		for _, choice := range resp.Choices {
			if choice.Delta.Content != "" {
				started = true
				content.WriteString(choice.Delta.Content)
				onToken(choice.Delta.Content)
			}
			for _, tc := range choice.Delta.ToolCalls {
				calls.add(tc)
			}
			if choice.FinishReason != "" {
				finish = string(choice.FinishReason)
			}
		}
	}

	if finish == string(openai.FinishReasonContentFilter) {
		return nil, started, fmt.Errorf("response blocked by content filter")
	}

	return &llm.ChatResult{
		Content:      content.String(),
		ToolCalls:    calls.result(),
		FinishReason: finish,
	}, started, nil
}

// toolCallAccumulator merges streamed tool call fragments by index.
type toolCallAccumulator struct {
	byIndex map[int]*llm.ToolCall
	args    map[int]*strings.Builder
	next    int
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{
		byIndex: map[int]*llm.ToolCall{},
		args:    map[int]*strings.Builder{},
	}
}

func (a *toolCallAccumulator) add(tc openai.ToolCall) {
	idx := a.next
	if tc.Index != nil {
		idx = *tc.Index
	} else if tc.ID == "" && a.next > 0 {
		idx = a.next - 1
	}

	call, ok := a.byIndex[idx]
	if !ok {
		call = &llm.ToolCall{}
		a.byIndex[idx] = call
		a.args[idx] = &strings.Builder{}
		if idx >= a.next {
			a.next = idx + 1
		}
	}
	if tc.ID != "" {
		call.ID = tc.ID
	}
	if tc.Function.Name != "" {
		call.Name = tc.Function.Name
	}
	a.args[idx].WriteString(tc.Function.Arguments)
}

func (a *toolCallAccumulator) result() []llm.ToolCall {
	if len(a.byIndex) == 0 {
		return nil
	}
	idxs := make([]int, 0, len(a.byIndex))
	for i := range a.byIndex {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)

	out := make([]llm.ToolCall, 0, len(idxs))
	for _, i := range idxs {
		call := *a.byIndex[i]
		call.Arguments = a.args[i].String()
		if call.Arguments == "" {
			call.Arguments = "{}"
		}
		out = append(out, call)
	}
	return out
}

// calculateBackoff calculates the backoff delay for a given attempt
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.baseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.maxDelay) {
		delay = float64(c.maxDelay)
	}
	return time.Duration(delay)
}

// isRetryable reports throttling, server-side and transport failures.
func isRetryable(err error) bool {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return false
	}
	return status == http.StatusTooManyRequests || status == http.StatusRequestTimeout || status >= 500
}

// IsConfigured implements llm.Streamer
func (c *Client) IsConfigured() bool {
	return c.configured
}

// Deployment returns the configured deployment name
func (c *Client) Deployment() string {
	return c.deployment
}
