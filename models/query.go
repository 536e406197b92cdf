package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	ScopeBlogs = "blogs"
	ScopeBlog  = "blog"
)

type QueryKey struct {
	Scope string
	ID    PostID
}

func ListKey() QueryKey { return QueryKey{Scope: ScopeBlogs} }

func PostKey(id PostID) QueryKey { return QueryKey{Scope: ScopeBlog, ID: id} }

func (k QueryKey) String() string {
	if k.ID == 0 {
		return k.Scope
	}
	return fmt.Sprintf("%s:%d", k.Scope, k.ID)
}

type QueryStatus string

const (
	StatusIdle    QueryStatus = "idle"
	StatusLoading QueryStatus = "loading"
	StatusSuccess QueryStatus = "success"
	StatusError   QueryStatus = "error"
)

// CacheEntry is what the cache store keeps per key. Data is the last
// successful result; it survives later failures and invalidation.
type CacheEntry struct {
	Data        json.RawMessage `json:"data,omitempty"`
	Err         string          `json:"err,omitempty"`
	Status      QueryStatus     `json:"status"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Invalidated bool            `json:"invalidated"`
}

func (e *CacheEntry) HasData() bool { return len(e.Data) > 0 }

type CacheEventType string

const (
	EventUpdated     CacheEventType = "query_updated"
	EventInvalidated CacheEventType = "query_invalidated"
	EventFailed      CacheEventType = "query_failed"
)

type CacheEvent struct {
	Type CacheEventType `json:"type"`
	Key  string         `json:"key"`
}

// QueryResult is the view-facing state of one read.
type QueryResult[T any] struct {
	Data       T
	HasData    bool
	Status     QueryStatus
	Err        error
	IsFetching bool
	UpdatedAt  time.Time
}

func (r QueryResult[T]) IsLoading() bool { return r.Status == StatusLoading }

func (r QueryResult[T]) IsError() bool { return r.Status == StatusError }

func (r QueryResult[T]) IsSuccess() bool { return r.Status == StatusSuccess }
