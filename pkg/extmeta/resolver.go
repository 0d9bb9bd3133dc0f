// Package extmeta resolves display names for visualization type codes.
// Built-in chart types resolve locally; extension ids go through a backing
// source, fetched at most once per resolver lifetime.
package extmeta

import (
	"context"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Meta is the metadata kept per extension id.
type Meta struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Author  string `json:"author,omitempty"`
}

// Source is a backing retrieval strategy. Server installations expose a full
// registry listing; desktop installations only serve per-extension files.
// Exactly one of the two is used, chosen once by the capability probe at
// resolver construction.
type Source interface {
	// List returns every registered extension's metadata.
	List(ctx context.Context) ([]Meta, error)
	// Get returns one extension's metadata, or nil when unknown.
	Get(ctx context.Context, id string) (*Meta, error)
}

// builtinNames covers the engine's native chart types, which never appear in
// any extension registry.
var builtinNames = map[string]string{
	"barchart":         "Bar chart",
	"linechart":        "Line chart",
	"piechart":         "Pie chart",
	"scatterplot":      "Scatter plot",
	"combochart":       "Combo chart",
	"table":            "Table",
	"pivot-table":      "Pivot table",
	"treemap":          "Treemap",
	"gauge":            "Gauge",
	"kpi":              "KPI",
	"listbox":          "Listbox",
	"filterpane":       "Filter pane",
	"map":              "Map",
	"histogram":        "Histogram",
	"boxplot":          "Box plot",
	"distributionplot": "Distribution plot",
	"waterfallchart":   "Waterfall chart",
	"text-image":       "Text & image",
}

// Resolver caches extension metadata for its own lifetime. It is an
// injectable instance owned by the service, not package state.
//
// It guarantees at most one fetch per distinct id (and at most one registry
// listing): a second caller for the same id while the first fetch is in
// flight waits on the same entry instead of issuing another, the same shape
// as the connection cache.
type Resolver struct {
	src     Source
	desktop bool

	mu sync.Mutex
	// entries holds one entry per id ever requested; a resolved entry with a
	// nil meta records a miss so unknown ids are not re-fetched.
	entries map[string]*metaEntry
	listing *registryListing
}

type metaEntry struct {
	done chan struct{}
	meta *Meta
	err  error
}

type registryListing struct {
	done chan struct{}
	byID map[string]*Meta
	err  error
}

// NewResolver builds a resolver over the given source. desktop selects the
// per-extension fetch strategy; otherwise one registry listing serves all
// lookups.
func NewResolver(src Source, desktop bool) *Resolver {
	return &Resolver{
		src:     src,
		desktop: desktop,
		entries: make(map[string]*metaEntry),
	}
}

// ResolveNames fetches metadata for every distinct unresolved id. Already
// resolved ids (including recorded misses) are no-ops.
func (r *Resolver) ResolveNames(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if id == "" || builtinNames[id] != "" {
			continue
		}
		if err := r.resolve(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolve(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &metaEntry{done: make(chan struct{})}
		r.entries[id] = e
		// Detached from the first caller's context so waiters with
		// longer-lived contexts still get a resolved entry.
		go r.fetch(context.WithoutCancel(ctx), id, e)
	}
	r.mu.Unlock()

	select {
	case <-e.done:
		return e.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Resolver) fetch(ctx context.Context, id string, e *metaEntry) {
	if r.desktop {
		e.meta, e.err = r.src.Get(ctx, id)
	} else {
		e.meta, e.err = r.fromRegistry(ctx, id)
	}
	if e.err != nil {
		// A failed fetch is not memoized; the next call retries.
		r.mu.Lock()
		delete(r.entries, id)
		r.mu.Unlock()
	}
	close(e.done)
}

// fromRegistry serves a lookup from the one registry listing, triggering the
// listing on first use. A nil result records a miss.
func (r *Resolver) fromRegistry(ctx context.Context, id string) (*Meta, error) {
	r.mu.Lock()
	l := r.listing
	if l == nil {
		l = &registryListing{done: make(chan struct{})}
		r.listing = l
		go r.list(ctx, l)
	}
	r.mu.Unlock()

	select {
	case <-l.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.byID[id], nil
}

func (r *Resolver) list(ctx context.Context, l *registryListing) {
	all, err := r.src.List(ctx)
	if err != nil {
		l.err = err
		r.mu.Lock()
		r.listing = nil
		r.mu.Unlock()
		close(l.done)
		return
	}
	l.byID = make(map[string]*Meta, len(all))
	for i := range all {
		l.byID[all[i].ID] = &all[i]
	}
	close(l.done)
}

// DisplayName returns the resolved human-readable name for a visualization
// type code, falling back to a title-cased rendition of the code itself.
func (r *Resolver) DisplayName(id string) string {
	if name, ok := builtinNames[id]; ok {
		return name
	}
	r.mu.Lock()
	e := r.entries[id]
	r.mu.Unlock()
	if e != nil {
		select {
		case <-e.done:
			if e.err == nil && e.meta != nil && e.meta.Name != "" {
				return e.meta.Name
			}
		default:
		}
	}
	return cases.Title(language.Und).String(id)
}
