package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultSettleDelay is applied after a document open completes. The engine
// protocol has no layout-ready event, so the cache waits a fixed interval
// before handing the document out. Known-fragile heuristic; configurable.
const DefaultSettleDelay = 120 * time.Millisecond

// Cache memoizes open document handles by identifier so repeated lookups
// reuse one connection. It guarantees at most one open per identifier: a
// second call for the same id while the first is in flight waits on the same
// open instead of issuing another.
//
// Cache is an injectable instance, not package state; the owning service
// holds one for the page-session lifetime and tests build their own.
type Cache struct {
	global Global
	settle time.Duration

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	done chan struct{}
	doc  Doc
	err  error
}

// NewCache builds a cache over the given engine root. A negative settle
// delay selects the default.
func NewCache(global Global, settle time.Duration) *Cache {
	if settle < 0 {
		settle = DefaultSettleDelay
	}
	return &Cache{
		global:  global,
		settle:  settle,
		entries: make(map[string]*cacheEntry),
	}
}

// Open resolves a document handle. ref is either a document identifier or an
// already-open Doc, which passes through untouched.
func (c *Cache) Open(ctx context.Context, ref any) (Doc, error) {
	switch v := ref.(type) {
	case Doc:
		if v != nil && v.ID() != "" {
			return v, nil
		}
		return nil, fmt.Errorf("open document: empty handle")
	case string:
		return c.openID(ctx, v)
	case nil:
		return nil, fmt.Errorf("open document: missing identifier")
	default:
		return nil, fmt.Errorf("open document: unsupported reference %T", ref)
	}
}

func (c *Cache) openID(ctx context.Context, id string) (Doc, error) {
	if id == "" {
		return nil, fmt.Errorf("open document: missing identifier")
	}

	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		e = &cacheEntry{done: make(chan struct{})}
		c.entries[id] = e
		// The open itself is detached from the first caller's context so
		// that waiters with longer-lived contexts still get a usable handle.
		go c.open(context.WithoutCancel(ctx), id, e)
	}
	c.mu.Unlock()

	select {
	case <-e.done:
		return e.doc, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) open(ctx context.Context, id string, e *cacheEntry) {
	doc, err := c.global.OpenDoc(ctx, id, true)
	if err == nil && c.settle > 0 {
		time.Sleep(c.settle)
	}
	e.doc, e.err = doc, err
	if err != nil {
		// A failed open is not memoized; the next call retries.
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
	}
	close(e.done)
}
