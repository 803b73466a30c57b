package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/forkline/storefront/pkg/redis"
)

// Fixed keys inside a session-scoped Storage.
const (
	ItemsKey    = "items"
	LocationKey = "location"
)

// Storage is the durable key/value port the cart mirrors itself into.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string]string{}}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKeyPrefix(sessionID string) string
}

// RedisStorage namespaces keys under one cart session and refreshes the
// session TTL on every write.
type RedisStorage struct {
	client redisKV
	prefix string
	ttl    time.Duration
}

func NewRedisStorage(client redisKV, sessionID string, ttl time.Duration) (*RedisStorage, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id required")
	}
	return &RedisStorage{client: client, prefix: client.CartKeyPrefix(sessionID), ttl: ttl}, nil
}

func (r *RedisStorage) key(name string) string {
	return r.prefix + ":" + name
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key))
	if err != nil {
		if redis.IsNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, r.ttl)
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key))
}
