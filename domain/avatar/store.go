package avatar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/drewby/chackgpt/domain/health"
	"github.com/drewby/chackgpt/internal/config"
	"github.com/drewby/chackgpt/pkg/logger"
)

// Store persists the current emotion per character so that several web
// replicas, or a restarted one, show the same avatar state.
type Store interface {
	health.Checker
	Load(ctx context.Context, character string) (string, bool, error)
	Save(ctx context.Context, character, emotion string) error
	Close() error
}

// NewStore returns a Redis store when REDIS_ADDR is set, a memory store otherwise.
func NewStore(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) Store {
	log = log.With(logger.Scope("avatar.store"))

	var s Store
	if cfg.Redis.IsEnabled() {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		s = NewRedisStore(client, cfg.Redis.Prefix)
		log.Info("avatar state stored in redis", slog.String("addr", cfg.Redis.Addr))
	} else {
		s = NewMemoryStore()
		log.Info("avatar state kept in memory")
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return s.Close()
		},
	})
	return s
}

// MemoryStore keeps state for the life of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Load(_ context.Context, character string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[character]
	return v, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, character, emotion string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[character] = emotion
	return nil
}

func (m *MemoryStore) Name() string                { return "avatar_store" }
func (m *MemoryStore) Check(context.Context) error { return nil }
func (m *MemoryStore) Close() error                { return nil }

// RedisStore keeps one string key per character.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(character string) string {
	return r.prefix + "avatar:" + character + ":emotion"
}

func (r *RedisStore) Load(ctx context.Context, character string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(character)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s emotion: %w", character, err)
	}
	return v, true, nil
}

func (r *RedisStore) Save(ctx context.Context, character, emotion string) error {
	if err := r.client.Set(ctx, r.key(character), emotion, 0).Err(); err != nil {
		return fmt.Errorf("save %s emotion: %w", character, err)
	}
	return nil
}

func (r *RedisStore) Name() string { return "avatar_store" }

func (r *RedisStore) Check(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
