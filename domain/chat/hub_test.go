package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewby/chackgpt/domain/avatar"
	"github.com/drewby/chackgpt/domain/chatmessage"
	"github.com/drewby/chackgpt/domain/workflow"
	"github.com/drewby/chackgpt/internal/config"
	"github.com/drewby/chackgpt/pkg/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRunner replays a fixed script of agent output.
type fakeRunner struct {
	mu        sync.Mutex
	histories [][]llm.Message
	script    func(emit func(workflow.Event)) ([]llm.Message, error)
}

func (f *fakeRunner) Run(_ context.Context, history []llm.Message, emit func(workflow.Event)) ([]llm.Message, error) {
	f.mu.Lock()
	f.histories = append(f.histories, history)
	f.mu.Unlock()
	return f.script(emit)
}

func (f *fakeRunner) calls() [][]llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]llm.Message(nil), f.histories...)
}

func chackSays(tokens ...string) func(emit func(workflow.Event)) ([]llm.Message, error) {
	return func(emit func(workflow.Event)) ([]llm.Message, error) {
		id := "ChackGPT_7d9c"
		emit(workflow.Event{Type: workflow.EventExecutorChanged, ExecutorID: id, Agent: "ChackGPT"})
		for _, tok := range tokens {
			emit(workflow.Event{Type: workflow.EventToken, ExecutorID: id, Agent: "ChackGPT", Text: tok})
		}
		msg := llm.Message{Role: llm.RoleAssistant, Author: "ChackGPT", Content: strings.Join(tokens, "")}
		emit(workflow.Event{Type: workflow.EventCompleted, Messages: []llm.Message{msg}})
		return []llm.Message{msg}, nil
	}
}

type hubFixture struct {
	hub      *Hub
	runner   *fakeRunner
	messages *chatmessage.Service
	chack    *avatar.ChackService
}

func newHubFixture(t *testing.T, hubCfg config.HubConfig) *hubFixture {
	t.Helper()
	log := discardLogger()
	store := avatar.NewMemoryStore()
	fx := &hubFixture{
		runner:   &fakeRunner{script: chackSays("Hello", " world")},
		messages: chatmessage.NewService(log),
		chack:    avatar.NewChackService(store, log),
	}
	if hubCfg.HeartbeatInterval == 0 {
		hubCfg.HeartbeatInterval = time.Second
	}
	cfg := &config.Config{CORSOrigins: "*", Hub: hubCfg}
	hub, err := New(cfg, fx.runner, fx.chack, avatar.NewDrewService(store, log), fx.messages, log)
	require.NoError(t, err)
	t.Cleanup(hub.Close)
	fx.hub = hub
	return fx
}

// frame is a decoded server frame.
type frame struct {
	Type   string            `json:"type"`
	Method string            `json:"method"`
	Args   []json.RawMessage `json:"args"`
}

func (f frame) arg(t *testing.T, i int) string {
	t.Helper()
	require.Greater(t, len(f.Args), i, "frame %s has no argument %d", f.Method, i)
	var s string
	require.NoError(t, json.Unmarshal(f.Args[i], &s))
	return s
}

// queued drains the frames waiting in a connection's send buffer.
func queued(t *testing.T, conn *Connection) []frame {
	t.Helper()
	var out []frame
	for {
		select {
		case data := <-conn.send:
			var f frame
			require.NoError(t, json.Unmarshal(data, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}

func methods(frames []frame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Method
	}
	return out
}

func invoke(method string, args ...string) *inbound {
	in := &inbound{Type: FrameInvoke, Method: method}
	for _, a := range args {
		raw, _ := json.Marshal(a)
		in.Args = append(in.Args, raw)
	}
	return in
}

// offlineConn is a registered connection without a socket.
func (fx *hubFixture) offlineConn(id string) *Connection {
	conn := newConnection(context.Background(), id, nil, discardLogger())
	fx.hub.mu.Lock()
	fx.hub.conns[id] = conn
	fx.hub.mu.Unlock()
	return conn
}

func TestHub_SendMessage(t *testing.T) {
	fx := newHubFixture(t, config.HubConfig{})
	conn := fx.offlineConn("c1")

	var agents []string
	fx.messages.AgentChanged.Subscribe(func(a string) { agents = append(agents, a) })
	var streaming []bool
	fx.messages.StreamingStateChanged.Subscribe(func(v bool) { streaming = append(streaming, v) })

	fx.hub.SendMessage(context.Background(), conn, "hi")

	frames := queued(t, conn)
	assert.Equal(t, []string{
		MethodAgentChanged,
		MethodReceiveMessageToken,
		MethodReceiveMessageToken,
		MethodReceiveMessageComplete,
	}, methods(frames))
	assert.Equal(t, "ChackGPT", frames[0].arg(t, 0))
	assert.Equal(t, "Hello", frames[1].arg(t, 0))
	assert.Equal(t, " world", frames[2].arg(t, 0))
	assert.Empty(t, frames[3].Args)

	assert.Equal(t, []string{"ChackGPT"}, agents)
	assert.Equal(t, []bool{true, false}, streaming)

	history, created := fx.hub.histories.GetOrCreate("c1")
	assert.False(t, created, "missing history is created by SendMessage")
	snap := history.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "hi"}, snap[0])
	assert.Equal(t, "Hello world", snap[1].Content)
}

func TestHub_SendMessageCarriesHistory(t *testing.T) {
	fx := newHubFixture(t, config.HubConfig{})
	conn := fx.offlineConn("c1")
	fx.hub.histories.Create("c1")

	fx.hub.SendMessage(context.Background(), conn, "first")
	fx.hub.SendMessage(context.Background(), conn, "second")

	calls := fx.runner.calls()
	require.Len(t, calls, 2)
	assert.Len(t, calls[0], 1)
	require.Len(t, calls[1], 3)
	assert.Equal(t, "Hello world", calls[1][1].Content)
	assert.Equal(t, "second", calls[1][2].Content)
}

func TestHub_SendMessageFiltersLeakedToolCalls(t *testing.T) {
	fx := newHubFixture(t, config.HubConfig{})
	fx.runner.script = chackSays("Sure. ", "DisplaySlide(", "topic=aspire13)\n", "Done")
	conn := fx.offlineConn("c1")

	fx.hub.SendMessage(context.Background(), conn, "next")

	var tokens []string
	for _, f := range queued(t, conn) {
		if f.Method == MethodReceiveMessageToken {
			tokens = append(tokens, f.arg(t, 0))
		}
	}
	assert.Equal(t, []string{"Sure. ", "Done"}, tokens)
}

func TestHub_SendMessageError(t *testing.T) {
	fx := newHubFixture(t, config.HubConfig{})
	fx.runner.script = func(emit func(workflow.Event)) ([]llm.Message, error) {
		emit(workflow.Event{Type: workflow.EventExecutorChanged, ExecutorID: "DrewGPT_1", Agent: "DrewGPT"})
		return nil, fmt.Errorf("DrewGPT turn failed: %w", errors.New("boom"))
	}
	conn := fx.offlineConn("c1")
	fx.hub.histories.Create("c1")

	fx.hub.SendMessage(context.Background(), conn, "hi")

	frames := queued(t, conn)
	assert.Equal(t, []string{MethodAgentChanged, MethodReceiveError}, methods(frames))
	assert.Equal(t, "DrewGPT", frames[0].arg(t, 0))
	assert.Equal(t, "Error: DrewGPT turn failed: boom", frames[1].arg(t, 0))

	h, _ := fx.hub.histories.GetOrCreate("c1")
	assert.Equal(t, 1, h.Len(), "only the user message is kept after a failure")
}

func TestHub_AgentChangedGoesToEveryone(t *testing.T) {
	fx := newHubFixture(t, config.HubConfig{})
	caller := fx.offlineConn("c1")
	other := fx.offlineConn("c2")

	fx.hub.SendMessage(context.Background(), caller, "hi")

	assert.Equal(t, []string{MethodAgentChanged}, methods(queued(t, other)))
	assert.Len(t, queued(t, caller), 4)
}

func TestHub_Dispatch(t *testing.T) {
	tests := []struct {
		name    string
		in      *inbound
		pending int
		errText string
	}{
		{name: "send message queued", in: invoke(MethodSendMessage, "hi"), pending: 1},
		{name: "missing argument", in: invoke(MethodSendMessage), errText: "SendMessage expects 1 argument(s)"},
		{name: "non string argument", in: &inbound{Type: FrameInvoke, Method: MethodSendMessage, Args: []json.RawMessage{json.RawMessage(`42`)}}, errText: "must be a string"},
		{name: "unknown method", in: invoke("Shout", "hi"), errText: `unknown method "Shout"`},
		{name: "event frames ignored", in: &inbound{Type: FrameEvent, Method: MethodSendMessage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newHubFixture(t, config.HubConfig{})
			conn := fx.offlineConn("c1")

			fx.hub.dispatch(conn, tt.in)

			assert.Len(t, conn.pending, tt.pending)
			frames := queued(t, conn)
			if tt.errText == "" {
				assert.Empty(t, frames)
				return
			}
			require.Len(t, frames, 1)
			assert.Equal(t, MethodReceiveError, frames[0].Method)
			assert.Contains(t, frames[0].arg(t, 0), tt.errText)
		})
	}
}

func TestHub_DispatchRateLimited(t *testing.T) {
	fx := newHubFixture(t, config.HubConfig{MessagesPerMinute: 1, MessageBurst: 1})
	conn := fx.offlineConn("c1")

	fx.hub.dispatch(conn, invoke(MethodSendMessage, "one"))
	fx.hub.dispatch(conn, invoke(MethodSendMessage, "two"))

	assert.Len(t, conn.pending, 1)
	frames := queued(t, conn)
	require.Len(t, frames, 1)
	assert.Contains(t, frames[0].arg(t, 0), "too many messages")
}

func TestHub_DispatchQueueFull(t *testing.T) {
	fx := newHubFixture(t, config.HubConfig{})
	conn := fx.offlineConn("c1")

	for i := 0; i < pendingMessages; i++ {
		fx.hub.dispatch(conn, invoke(MethodSendMessage, "hi"))
	}
	assert.Empty(t, queued(t, conn))

	fx.hub.dispatch(conn, invoke(MethodSendMessage, "one more"))
	frames := queued(t, conn)
	require.Len(t, frames, 1)
	assert.Contains(t, frames[0].arg(t, 0), "still answering")
}

func TestAgentForExecutor(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"ChackGPT_2f1a", "ChackGPT"},
		{"chackgpt_2f1a", "ChackGPT"},
		{"DrewGPT_2f1a", "DrewGPT"},
		{"something-else", "DrewGPT"},
		{"", "DrewGPT"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, AgentForExecutor(tt.id))
		})
	}
}

type turnError struct{ cause error }

func (e *turnError) Error() string { return "turn failed" }
func (e *turnError) Unwrap() error { return e.cause }

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", errors.New("boom"), "Error: boom"},
		{"wrapped cause already in message", fmt.Errorf("outer: %w", errors.New("inner")), "Error: outer: inner"},
		{"hidden cause", &turnError{cause: errors.New("boom")}, "Error: turn failed (Inner: boom)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/chathub", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	open := originChecker([]string{"*"})
	assert.True(t, open(req("https://evil.example")))

	listed := originChecker([]string{"https://chackgpt.example"})
	assert.True(t, listed(req("https://chackgpt.example")))
	assert.True(t, listed(req("")), "non-browser clients send no origin")
	assert.False(t, listed(req("https://evil.example")))
}

// socketClient is a test client dialed against a live hub.
type socketClient struct {
	t  *testing.T
	ws *websocket.Conn
}

func dial(t *testing.T, fx *hubFixture) *socketClient {
	t.Helper()
	e := echo.New()
	RegisterRoutes(e, fx.hub, NewHandler(fx.hub, discardLogger()))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chathub"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { ws.Close() })
	return &socketClient{t: t, ws: ws}
}

func (c *socketClient) read() frame {
	c.t.Helper()
	require.NoError(c.t, c.ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := c.ws.ReadMessage()
	require.NoError(c.t, err)
	var f frame
	require.NoError(c.t, json.Unmarshal(data, &f))
	return f
}

func (c *socketClient) invoke(method string, args ...any) {
	c.t.Helper()
	require.NoError(c.t, c.ws.WriteJSON(map[string]any{"type": FrameInvoke, "method": method, "args": args}))
}

func TestHub_WebSocketSession(t *testing.T) {
	fx := newHubFixture(t, config.HubConfig{})
	_, err := fx.chack.Set(context.Background(), "HeavyMetal")
	require.NoError(t, err)

	client := dial(t, fx)

	hello := []frame{client.read(), client.read()}
	assert.Equal(t, "EmotionChanged", hello[0].Method)
	assert.Equal(t, "heavymetal", hello[0].arg(t, 0))
	assert.Equal(t, "DrewEmotionChanged", hello[1].Method)
	assert.Equal(t, "neutral", hello[1].arg(t, 0))
	assert.Equal(t, FrameEvent, hello[0].Type)

	require.Eventually(t, func() bool { return fx.hub.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, fx.hub.histories.Len())

	client.invoke(MethodSendMessage, "hello")
	got := []frame{client.read(), client.read(), client.read(), client.read()}
	assert.Equal(t, []string{
		MethodAgentChanged,
		MethodReceiveMessageToken,
		MethodReceiveMessageToken,
		MethodReceiveMessageComplete,
	}, methods(got))

	fx.hub.Broadcast("SlideCloseRequested")
	assert.Equal(t, "SlideCloseRequested", client.read().Method)

	require.NoError(t, client.ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	bad := client.read()
	assert.Equal(t, MethodReceiveError, bad.Method)

	client.ws.Close()
	require.Eventually(t, func() bool { return fx.hub.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, fx.hub.histories.Len())
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	fx := newHubFixture(t, config.HubConfig{})
	client := dial(t, fx)
	client.read()
	client.read()

	fx.hub.Close()

	require.NoError(t, client.ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := client.ws.ReadMessage()
	assert.Error(t, err)
	require.Eventually(t, func() bool { return fx.hub.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
