package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"dailyread/metrics"
	"dailyread/models"

	"golang.org/x/sync/singleflight"
)

type QueryOptions struct {
	Enabled bool
}

// QueryCache deduplicates reads per key, keeps the last good result of each
// key in its store and tells subscribers when a key changes.
type QueryCache struct {
	store     CacheStore
	group     singleflight.Group
	staleTime time.Duration
	now       func() time.Time

	mu          sync.RWMutex
	generations map[string]uint64
	subscribers map[int]func(models.CacheEvent)
	nextSub     int
}

func NewQueryCache(store CacheStore, staleTime time.Duration) *QueryCache {
	return &QueryCache{
		store:       store,
		staleTime:   staleTime,
		now:         time.Now,
		generations: make(map[string]uint64),
		subscribers: make(map[int]func(models.CacheEvent)),
	}
}

// Subscribe registers fn for every cache event and returns its unsubscribe func.
func (qc *QueryCache) Subscribe(fn func(models.CacheEvent)) func() {
	qc.mu.Lock()
	id := qc.nextSub
	qc.nextSub++
	qc.subscribers[id] = fn
	qc.mu.Unlock()

	return func() {
		qc.mu.Lock()
		delete(qc.subscribers, id)
		qc.mu.Unlock()
	}
}

func (qc *QueryCache) notify(eventType models.CacheEventType, key string) {
	qc.mu.RLock()
	subs := make([]func(models.CacheEvent), 0, len(qc.subscribers))
	for _, fn := range qc.subscribers {
		subs = append(subs, fn)
	}
	qc.mu.RUnlock()

	event := models.CacheEvent{Type: eventType, Key: key}
	for _, fn := range subs {
		fn(event)
	}
}

func (qc *QueryCache) generation(key string) uint64 {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	return qc.generations[key]
}

// Invalidate marks key stale so the next read fetches it again. A fetch
// already in flight for key will not make it fresh.
func (qc *QueryCache) Invalidate(ctx context.Context, key models.QueryKey) error {
	k := key.String()

	qc.mu.Lock()
	qc.generations[k]++
	qc.mu.Unlock()
	qc.group.Forget(k)

	if _, err := qc.store.Invalidate(ctx, k); err != nil {
		return fmt.Errorf("invalidate %s: %w", k, err)
	}
	metrics.CacheInvalidations.WithLabelValues(key.Scope).Inc()
	qc.notify(models.EventInvalidated, k)
	return nil
}

// Settled reports the keys that have resolved, successfully or not, at or
// after since. A page that rendered a key as loading at since needs a
// reload for each of them.
func (qc *QueryCache) Settled(ctx context.Context, keys []string, since time.Time) []string {
	settled := []string{}
	for _, key := range keys {
		entry, ok, err := qc.store.Get(ctx, key)
		if err != nil {
			log.Printf("query cache: read %s: %v", key, err)
			continue
		}
		if ok && !entry.UpdatedAt.Before(since) {
			settled = append(settled, key)
		}
	}
	return settled
}

// load runs fetch once per key at a time. The fetch is detached from the
// caller so a caller giving up does not cancel it for the others.
func (qc *QueryCache) load(ctx context.Context, key string, fetch func(context.Context) (any, error)) <-chan singleflight.Result {
	gen := qc.generation(key)
	detached := context.WithoutCancel(ctx)

	return qc.group.DoChan(key, func() (interface{}, error) {
		data, err := fetch(detached)
		stale := qc.generation(key) != gen

		prev, _, getErr := qc.store.Get(detached, key)
		if getErr != nil {
			log.Printf("query cache: read %s before write: %v", key, getErr)
		}
		entry := models.CacheEntry{UpdatedAt: qc.now(), Invalidated: stale}

		if err != nil {
			if prev != nil {
				entry.Data = prev.Data
			}
			entry.Status = models.StatusError
			entry.Err = err.Error()
			if setErr := qc.store.Set(detached, key, &entry); setErr != nil {
				log.Printf("query cache: write %s: %v", key, setErr)
			}
			qc.notify(models.EventFailed, key)
			return nil, err
		}

		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		entry.Data = raw
		entry.Status = models.StatusSuccess
		if setErr := qc.store.Set(detached, key, &entry); setErr != nil {
			log.Printf("query cache: write %s: %v", key, setErr)
		}
		qc.notify(models.EventUpdated, key)
		return json.RawMessage(raw), nil
	})
}

// Query reads key through the cache. It never returns an error: failures
// show up as an error status on the result. When ctx ends before an
// uncached fetch resolves the result is loading and the fetch carries on.
func Query[T any](ctx context.Context, qc *QueryCache, key models.QueryKey, opts QueryOptions, fetch func(context.Context) (T, error)) models.QueryResult[T] {
	var result models.QueryResult[T]
	if !opts.Enabled {
		metrics.CacheLookups.WithLabelValues(key.Scope, "disabled").Inc()
		result.Status = models.StatusIdle
		return result
	}

	k := key.String()
	entry, ok, err := qc.store.Get(ctx, k)
	if err != nil {
		log.Printf("query cache: read %s: %v", k, err)
		ok = false
	}
	if ok && entry.HasData() {
		if err := json.Unmarshal(entry.Data, &result.Data); err != nil {
			log.Printf("query cache: decode %s: %v", k, err)
		} else {
			result.HasData = true
			result.UpdatedAt = entry.UpdatedAt
		}
	}

	run := func(ctx context.Context) (any, error) { return fetch(ctx) }

	if result.HasData && !entry.Invalidated && entry.Status == models.StatusSuccess {
		result.Status = models.StatusSuccess
		if qc.now().Sub(entry.UpdatedAt) < qc.staleTime {
			metrics.CacheLookups.WithLabelValues(key.Scope, "fresh").Inc()
			return result
		}
		metrics.CacheLookups.WithLabelValues(key.Scope, "stale").Inc()
		qc.load(ctx, k, run)
		result.IsFetching = true
		return result
	}

	metrics.CacheLookups.WithLabelValues(key.Scope, "miss").Inc()
	select {
	case res := <-qc.load(ctx, k, run):
		if res.Err != nil {
			metrics.CacheLookups.WithLabelValues(key.Scope, "error").Inc()
			result.Status = models.StatusError
			result.Err = res.Err
			return result
		}
		var fresh T
		if err := json.Unmarshal(res.Val.(json.RawMessage), &fresh); err != nil {
			result.Status = models.StatusError
			result.Err = fmt.Errorf("decode %s: %w", k, err)
			return result
		}
		result.Data = fresh
		result.HasData = true
		result.Status = models.StatusSuccess
		result.UpdatedAt = qc.now()
		return result
	case <-ctx.Done():
		result.IsFetching = true
		if result.HasData {
			result.Status = models.StatusSuccess
		} else {
			result.Status = models.StatusLoading
		}
		return result
	}
}

// Mutate runs fn and, only when it succeeds, invalidates the given keys.
func Mutate[T any](ctx context.Context, qc *QueryCache, fn func(context.Context) (T, error), invalidates ...models.QueryKey) (T, error) {
	out, err := fn(ctx)
	if err != nil {
		return out, err
	}
	for _, key := range invalidates {
		if err := qc.Invalidate(ctx, key); err != nil {
			log.Printf("query cache: %v", err)
		}
	}
	return out, nil
}
