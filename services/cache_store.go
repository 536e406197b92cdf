package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"dailyread/models"

	"github.com/redis/go-redis/v9"
)

// CacheStore is the keyed store behind the query cache. Implementations
// drop entries that have not been written for longer than their GC time.
type CacheStore interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, bool, error)
	Set(ctx context.Context, key string, entry *models.CacheEntry) error
	Invalidate(ctx context.Context, key string) (bool, error)
}

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	gcTime  time.Duration
	now     func() time.Time
}

func NewMemoryStore(gcTime time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]models.CacheEntry),
		gcTime:  gcTime,
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (*models.CacheEntry, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.gcTime > 0 && m.now().Sub(entry.UpdatedAt) > m.gcTime {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return &entry, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, entry *models.CacheEntry) error {
	m.mu.Lock()
	m.entries[key] = *entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Invalidate(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	entry.Invalidated = true
	m.entries[key] = entry
	return true, nil
}

// RedisStore shares the query cache between several UI instances.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	gcTime time.Duration
}

func NewRedisStore(rdb *redis.Client, gcTime time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "dailyread:query:", gcTime: gcTime}
}

func (r *RedisStore) Get(ctx context.Context, key string) (*models.CacheEntry, bool, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return &entry, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, entry *models.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := r.rdb.Set(ctx, r.prefix+key, raw, r.gcTime).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Invalidate(ctx context.Context, key string) (bool, error) {
	entry, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	entry.Invalidated = true
	raw, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := r.rdb.Set(ctx, r.prefix+key, raw, redis.KeepTTL).Err(); err != nil {
		return false, fmt.Errorf("redis set %s: %w", key, err)
	}
	return true, nil
}
