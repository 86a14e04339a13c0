// Package events provides typed in-process publish/subscribe topics.
package events

import (
	"log/slog"
	"sort"
	"sync"
)

// Topic delivers values of type T to its subscribers. Emit calls subscribers
// synchronously in subscription order, outside the lock, so a subscriber may
// subscribe or unsubscribe while being called.
type Topic[T any] struct {
	name string
	log  *slog.Logger

	mu          sync.RWMutex
	nextID      uint64
	subscribers map[uint64]func(T)
}

// NewTopic creates an empty topic. log may be nil.
func NewTopic[T any](name string, log *slog.Logger) *Topic[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Topic[T]{
		name:        name,
		log:         log,
		subscribers: make(map[uint64]func(T)),
	}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is idempotent.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subscribers[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subscribers, id)
			t.mu.Unlock()
		})
	}
}

// Emit delivers v to every current subscriber. A panicking subscriber is
// logged and does not prevent delivery to the others.
func (t *Topic[T]) Emit(v T) {
	for _, fn := range t.snapshot() {
		t.deliver(fn, v)
	}
}

func (t *Topic[T]) deliver(fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("event subscriber panicked",
				slog.String("topic", t.name),
				slog.Any("panic", r),
			)
		}
	}()
	fn(v)
}

func (t *Topic[T]) snapshot() []func(T) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]uint64, 0, len(t.subscribers))
	for id := range t.subscribers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fns := make([]func(T), len(ids))
	for i, id := range ids {
		fns[i] = t.subscribers[id]
	}
	return fns
}

// SubscriberCount returns the number of active subscribers.
func (t *Topic[T]) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subscribers)
}

// Signal is a topic without a payload.
type Signal = Topic[struct{}]

// NewSignal creates an empty signal topic.
func NewSignal(name string, log *slog.Logger) *Signal {
	return NewTopic[struct{}](name, log)
}

// Fire emits on a signal.
func Fire(s *Signal) {
	s.Emit(struct{}{})
}
