// Package chat is the real-time chat hub. Browsers connect over a
// WebSocket, send messages to the agents and receive the filtered response
// stream plus the avatar and display events the broadcaster fans out.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"

	"github.com/drewby/chackgpt/domain/agents"
	"github.com/drewby/chackgpt/domain/avatar"
	"github.com/drewby/chackgpt/domain/broadcast"
	"github.com/drewby/chackgpt/domain/chatmessage"
	"github.com/drewby/chackgpt/domain/workflow"
	"github.com/drewby/chackgpt/internal/config"
	"github.com/drewby/chackgpt/pkg/llm"
	"github.com/drewby/chackgpt/pkg/logger"
	"github.com/drewby/chackgpt/pkg/streamfilter"
	"github.com/drewby/chackgpt/pkg/tracing"
)

// Runner runs the agents over a conversation.
type Runner interface {
	Run(ctx context.Context, history []llm.Message, emit func(workflow.Event)) ([]llm.Message, error)
}

// HubParams are the dependencies of NewHub.
type HubParams struct {
	fx.In

	Config   *config.Config
	Workflow *workflow.Workflow
	Chack    *avatar.ChackService
	Drew     *avatar.DrewService
	Messages *chatmessage.Service
	Log      *slog.Logger
}

// Hub tracks connected clients and runs their chat exchanges.
type Hub struct {
	cfg       config.HubConfig
	runner    Runner
	chack     *avatar.ChackService
	drew      *avatar.DrewService
	messages  *chatmessage.Service
	matcher   *streamfilter.Matcher
	histories *HistoryStore
	limiter   *MessageRateLimiter
	upgrader  websocket.Upgrader
	log       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewHub(p HubParams) (*Hub, error) {
	return New(p.Config, p.Workflow, p.Chack, p.Drew, p.Messages, p.Log)
}

func New(cfg *config.Config, runner Runner, chack *avatar.ChackService, drew *avatar.DrewService, messages *chatmessage.Service, log *slog.Logger) (*Hub, error) {
	histories, err := NewHistoryStore(cfg.Hub.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("creating history store: %w", err)
	}

	hubCfg := cfg.Hub
	if hubCfg.HeartbeatInterval <= 0 {
		hubCfg.HeartbeatInterval = 15 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		cfg:       hubCfg,
		runner:    runner,
		chack:     chack,
		drew:      drew,
		messages:  messages,
		matcher:   streamfilter.DefaultMatcher(),
		histories: histories,
		limiter:   NewMessageRateLimiter(hubCfg.MessagesPerMinute, hubCfg.MessageBurst),
		log:       log.With(logger.Scope("chat.hub")),
		ctx:       ctx,
		cancel:    cancel,
		conns:     make(map[string]*Connection),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins()),
	}
	return h, nil
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if lo.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || lo.Contains(allowed, origin)
	}
}

// ServeWS upgrades the request and serves the connection until it closes.
func (h *Hub) ServeWS(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		h.log.Debug("websocket upgrade failed", logger.Error(err))
		return nil
	}

	conn := newConnection(h.ctx, uuid.NewString(), ws, h.log)
	h.connect(conn)
	defer h.disconnect(conn)

	go conn.writePump(h.cfg.HeartbeatInterval)
	go h.processMessages(conn)
	h.readPump(conn)
	return nil
}

func (h *Hub) connect(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.mu.Unlock()
	connectionsActive.Inc()

	h.histories.Create(conn.ID)
	conn.log.Info("client connected")

	conn.Send(broadcast.MethodEmotionChanged, strings.ToLower(h.chack.Current()))
	conn.Send(broadcast.MethodDrewEmotionChanged, strings.ToLower(h.drew.Current()))
}

func (h *Hub) disconnect(conn *Connection) {
	h.mu.Lock()
	_, ok := h.conns[conn.ID]
	delete(h.conns, conn.ID)
	h.mu.Unlock()

	conn.Close()
	if !ok {
		return
	}
	connectionsActive.Dec()
	h.histories.Remove(conn.ID)
	h.limiter.Forget(conn.ID)
	conn.log.Info("client disconnected")
}

func (h *Hub) pongWait() time.Duration {
	return 2 * h.cfg.HeartbeatInterval
}

func (h *Hub) readPump(conn *Connection) {
	ws := conn.ws
	if h.cfg.MaxMessageBytes > 0 {
		ws.SetReadLimit(int64(h.cfg.MaxMessageBytes))
	}
	_ = ws.SetReadDeadline(time.Now().Add(h.pongWait()))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.pongWait()))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				conn.log.Warn("connection closed unexpectedly", logger.Error(err))
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(h.pongWait()))

		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			conn.Send(MethodReceiveError, "Error: malformed frame")
			continue
		}
		h.dispatch(conn, &in)
	}
}

func (h *Hub) dispatch(conn *Connection, in *inbound) {
	if in.Type != FrameInvoke {
		conn.log.Debug("ignoring frame", slog.String("type", in.Type))
		return
	}

	switch in.Method {
	case MethodSendMessage:
		text, err := in.stringArg(0)
		if err != nil {
			conn.Send(MethodReceiveError, "Error: "+err.Error())
			return
		}
		if !h.limiter.Allow(conn.ID) {
			messagesTotal.WithLabelValues("websocket", "rate_limited").Inc()
			conn.Send(MethodReceiveError, "Error: too many messages, please wait a moment")
			return
		}
		select {
		case conn.pending <- text:
		default:
			messagesTotal.WithLabelValues("websocket", "rejected").Inc()
			conn.Send(MethodReceiveError, "Error: still answering your previous messages")
		}
	default:
		conn.Send(MethodReceiveError, fmt.Sprintf("Error: unknown method %q", in.Method))
	}
}

// processMessages runs one connection's messages in arrival order.
func (h *Hub) processMessages(conn *Connection) {
	for {
		select {
		case text := <-conn.pending:
			h.SendMessage(conn.Context(), conn, text)
		case <-conn.Done():
			return
		}
	}
}

// SendMessage appends text to the connection's conversation and streams
// the agents' answer back to it.
func (h *Hub) SendMessage(ctx context.Context, conn *Connection, text string) {
	ctx, span := tracing.Start(ctx, "ChatHub.SendMessage",
		attribute.String("user.message", text),
		attribute.String("connection.id", conn.ID),
	)
	defer span.End()

	history, created := h.histories.GetOrCreate(conn.ID)
	if created {
		conn.log.Warn("conversation not found, started a new one")
	}
	history.Append(llm.Message{Role: llm.RoleUser, Content: text})

	produced, tokenCount, err := h.respond(ctx, history.Snapshot(), &socketResponder{hub: h, conn: conn})
	if err != nil {
		span.SetAttributes(
			attribute.String("exception.type", fmt.Sprintf("%T", err)),
			attribute.String("exception.message", err.Error()),
		)
		tracing.RecordError(span, err)
		messagesTotal.WithLabelValues("websocket", "error").Inc()
		conn.log.Error("chat exchange failed", logger.Error(err))
		return
	}

	history.Append(produced...)
	span.SetAttributes(attribute.Int("response.token_count", tokenCount))
	messagesTotal.WithLabelValues("websocket", "ok").Inc()
}

// responder receives the output of one exchange.
type responder interface {
	agentChanged(agent string)
	token(text string)
	complete(tokenCount int)
	fail(message string)
}

// respond runs the agents over history, filtering their text before it
// reaches out. Text still withheld by the filter when the run ends is
// dropped.
func (h *Hub) respond(ctx context.Context, history []llm.Message, out responder) ([]llm.Message, int, error) {
	h.messages.UpdateStreamingState(true)
	defer h.messages.UpdateStreamingState(false)

	filter := streamfilter.New(h.matcher)
	lastExecutor := ""
	produced, err := h.runner.Run(ctx, history, func(e workflow.Event) {
		switch e.Type {
		case workflow.EventExecutorChanged:
			if e.ExecutorID == lastExecutor {
				return
			}
			lastExecutor = e.ExecutorID
			agent := AgentForExecutor(e.ExecutorID)
			out.agentChanged(agent)
			h.messages.NotifyAgentChange(agent)
		case workflow.EventToken:
			if text, ok := filter.Push(e.Text); ok {
				tokensSent.Inc()
				out.token(text)
				h.messages.NotifyChatMessage(text)
			}
		}
	})
	if err != nil {
		out.fail(ErrorMessage(err))
		return produced, filter.Emitted(), err
	}

	if pending := filter.Pending(); pending != "" {
		h.log.Debug("dropping withheld text", slog.Int("length", len(pending)), slog.Bool("skipping", filter.Skipping()))
	}
	out.complete(filter.Emitted())
	return produced, filter.Emitted(), nil
}

// AgentForExecutor maps a workflow executor id to the agent name the
// browser shows.
func AgentForExecutor(executorID string) string {
	if strings.Contains(strings.ToLower(executorID), strings.ToLower(agents.ChackGPT)) {
		return agents.ChackGPT
	}
	return agents.DrewGPT
}

// ErrorMessage is the text sent to the client for a failed exchange. The
// wrapped cause is appended only when the message does not already end with it.
func ErrorMessage(err error) string {
	msg := "Error: " + err.Error()
	if inner := errors.Unwrap(err); inner != nil && !strings.HasSuffix(err.Error(), inner.Error()) {
		msg += " (Inner: " + inner.Error() + ")"
	}
	return msg
}

// Broadcast sends a method invocation to every connected client.
func (h *Hub) Broadcast(method string, args ...any) {
	frame, err := encodeEvent(method, args...)
	if err != nil {
		h.log.Error("failed to encode broadcast", slog.String("method", method), logger.Error(err))
		return
	}

	h.mu.RLock()
	conns := lo.Values(h.conns)
	h.mu.RUnlock()

	for _, c := range conns {
		c.sendFrame(frame)
	}
}

// ConnectionCount returns the number of open connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.cancel()

	h.mu.RLock()
	conns := lo.Values(h.conns)
	h.mu.RUnlock()

	for _, c := range conns {
		c.Close()
	}
	if len(conns) > 0 {
		h.log.Info("hub closed", slog.Int("connections", len(conns)))
	}
}

type socketResponder struct {
	hub  *Hub
	conn *Connection
}

func (r *socketResponder) agentChanged(agent string) {
	r.hub.Broadcast(MethodAgentChanged, agent)
}

func (r *socketResponder) token(text string) {
	r.conn.Send(MethodReceiveMessageToken, text)
}

func (r *socketResponder) complete(int) {
	r.conn.Send(MethodReceiveMessageComplete)
}

func (r *socketResponder) fail(message string) {
	r.conn.Send(MethodReceiveError, message)
}
