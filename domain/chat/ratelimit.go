package chat

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// MaxRateLimiterEntries caps how many callers keep a bucket. The least
// recently seen caller is evicted first and starts over with a full bucket.
const MaxRateLimiterEntries = 4096

// MessageRateLimiter bounds SendMessage calls per connection with a token
// bucket. A zero rate disables limiting.
type MessageRateLimiter struct {
	perMinute int
	burst     int

	// mu makes lookup-then-add atomic; the cache itself is safe to share.
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
}

func NewMessageRateLimiter(perMinute, burst int) *MessageRateLimiter {
	return newMessageRateLimiter(perMinute, burst, MaxRateLimiterEntries)
}

func newMessageRateLimiter(perMinute, burst, size int) *MessageRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if size <= 0 {
		size = MaxRateLimiterEntries
	}
	// lru.New only fails for a non-positive size.
	limiters, _ := lru.New[string, *rate.Limiter](size)
	return &MessageRateLimiter{
		perMinute: perMinute,
		burst:     burst,
		limiters:  limiters,
	}
}

// Allow reports whether connID may send another message now.
func (m *MessageRateLimiter) Allow(connID string) bool {
	if m.perMinute <= 0 {
		return true
	}
	return m.getLimiter(connID).Allow()
}

func (m *MessageRateLimiter) getLimiter(connID string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limiter, ok := m.limiters.Get(connID); ok {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.perMinute)), m.burst)
	m.limiters.Add(connID, limiter)
	return limiter
}

// Forget drops a closed connection's limiter.
func (m *MessageRateLimiter) Forget(connID string) {
	m.limiters.Remove(connID)
}
