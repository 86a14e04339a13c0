package chat

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewby/chackgpt/pkg/llm"
)

func TestHistoryStore(t *testing.T) {
	s, err := NewHistoryStore(2)
	require.NoError(t, err)

	a := s.Create("a")
	a.Append(llm.Message{Role: llm.RoleUser, Content: "hi"})

	got, created := s.GetOrCreate("a")
	assert.False(t, created)
	assert.Same(t, a, got)

	_, created = s.GetOrCreate("b")
	assert.True(t, created)

	s.Create("c")
	assert.Equal(t, 2, s.Len())
	got, created = s.GetOrCreate("a")
	assert.True(t, created, "least recently used conversation was evicted")
	assert.Zero(t, got.Len())

	s.Remove("a")
	s.Remove("missing")
	assert.Equal(t, 1, s.Len())
}

func TestHistoryStore_CreateReplaces(t *testing.T) {
	s, err := NewHistoryStore(0)
	require.NoError(t, err)

	s.Create("a").Append(llm.Message{Role: llm.RoleUser, Content: "old"})
	s.Create("a")

	h, _ := s.GetOrCreate("a")
	assert.Zero(t, h.Len())
}

func TestHistory_SnapshotIsACopy(t *testing.T) {
	h := &History{}
	h.Append(llm.Message{Role: llm.RoleUser, Content: "one"})

	snap := h.Snapshot()
	snap[0].Content = "changed"
	h.Append(llm.Message{Role: llm.RoleAssistant, Content: "two"})

	assert.Equal(t, "one", h.Snapshot()[0].Content)
	assert.Len(t, snap, 1)
}

func TestMessageRateLimiter(t *testing.T) {
	m := NewMessageRateLimiter(1, 2)

	assert.True(t, m.Allow("a"))
	assert.True(t, m.Allow("a"))
	assert.False(t, m.Allow("a"))
	assert.True(t, m.Allow("b"), "limits are per connection")

	m.Forget("a")
	assert.True(t, m.Allow("a"), "forgotten connection starts with a full bucket")
}

func TestMessageRateLimiter_Disabled(t *testing.T) {
	m := NewMessageRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, m.Allow("a"))
	}
	assert.Zero(t, m.limiters.Len())
}

func TestMessageRateLimiter_EvictsIdleCallers(t *testing.T) {
	m := newMessageRateLimiter(1, 1, 2)

	assert.True(t, m.Allow("10.0.0.1"))
	assert.False(t, m.Allow("10.0.0.1"))

	for i := 2; i <= 50; i++ {
		m.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 2, m.limiters.Len(), "entries stay bounded however many callers appear")

	assert.True(t, m.Allow("10.0.0.1"), "evicted caller starts with a full bucket")
	assert.False(t, m.Allow("10.0.0.50"), "recent caller keeps its bucket")
}

func TestEncodeEvent(t *testing.T) {
	data, err := encodeEvent(MethodReceiveMessageComplete)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"event","method":"ReceiveMessageComplete","args":[]}`, string(data))

	data, err = encodeEvent(MethodReceiveMessageToken, "Hi")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"event","method":"ReceiveMessageToken","args":["Hi"]}`, string(data))
}

func TestInbound_StringArg(t *testing.T) {
	var in inbound
	require.NoError(t, json.Unmarshal([]byte(`{"type":"invoke","method":"SendMessage","args":["hello",3]}`), &in))

	s, err := in.stringArg(0)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	_, err = in.stringArg(1)
	assert.EqualError(t, err, "SendMessage argument 2 must be a string")

	_, err = in.stringArg(2)
	assert.EqualError(t, err, "SendMessage expects 3 argument(s)")
}
