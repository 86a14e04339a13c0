package chat

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/drewby/chackgpt/pkg/llm"
)

// DefaultHistorySize is used when the configured size is not positive.
const DefaultHistorySize = 256

// History is one connection's conversation.
type History struct {
	mu       sync.Mutex
	messages []llm.Message
}

// Snapshot returns a copy of the messages.
func (h *History) Snapshot() []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]llm.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Append(msgs ...llm.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msgs...)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// HistoryStore keeps conversations keyed by connection id. The least
// recently used conversation is dropped once the store is full.
type HistoryStore struct {
	cache *lru.Cache[string, *History]
}

func NewHistoryStore(size int) (*HistoryStore, error) {
	if size <= 0 {
		size = DefaultHistorySize
	}
	cache, err := lru.New[string, *History](size)
	if err != nil {
		return nil, err
	}
	return &HistoryStore{cache: cache}, nil
}

// Create starts an empty conversation for id, replacing any existing one.
func (s *HistoryStore) Create(id string) *History {
	h := &History{}
	s.cache.Add(id, h)
	return h
}

// GetOrCreate returns id's conversation. created reports whether it had to
// be made.
func (s *HistoryStore) GetOrCreate(id string) (h *History, created bool) {
	if h, ok := s.cache.Get(id); ok {
		return h, false
	}
	h = &History{}
	if prev, ok, _ := s.cache.PeekOrAdd(id, h); ok {
		return prev, false
	}
	return h, true
}

func (s *HistoryStore) Remove(id string) {
	s.cache.Remove(id)
}

func (s *HistoryStore) Len() int {
	return s.cache.Len()
}
