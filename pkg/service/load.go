package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/bi-tools/appcopy/pkg/collect"
	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
	"github.com/bi-tools/appcopy/pkg/reconcile"
	"github.com/bi-tools/appcopy/pkg/search"
)

// LoadResult is one reconciled view of a source document against the
// destination. Items are built fresh on every load.
type LoadResult struct {
	BatchID string
	Source  engine.Doc
	Dest    engine.Doc

	// Items holds the source document's normalized items per type, already
	// classified against the destination.
	Items map[models.ObjectType][]*models.Item
	// DestItems holds the destination's own items per type.
	DestItems map[models.ObjectType][]*models.Item
	// TypeErrors records per-type fetch failures. Types absent from the map
	// loaded cleanly; their items remain usable even when a sibling type
	// failed.
	TypeErrors map[models.ObjectType]error

	index *search.Index
}

// Close releases the result's search index.
func (r *LoadResult) Close() error {
	if r.index != nil {
		return r.index.Close()
	}
	return nil
}

// Filter narrows items of one type through the search index.
func (r *LoadResult) Filter(query string, t models.ObjectType) ([]*models.Item, error) {
	if query == "" {
		return r.Items[t], nil
	}
	matches, err := r.index.Search(query, &search.Options{Type: t})
	if err != nil {
		return nil, err
	}
	keep := make(map[string]bool, len(matches))
	for _, m := range matches {
		keep[m.ID] = true
	}
	var out []*models.Item
	for _, item := range r.Items[t] {
		if keep[item.ID] {
			out = append(out, item)
		}
	}
	return out, nil
}

// Find locates one source item by type and id.
func (r *LoadResult) Find(t models.ObjectType, id string) (*models.Item, error) {
	for _, item := range r.Items[t] {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("%s %q: %w", t, id, engine.ErrNotFound)
}

// LoadApp opens the source and destination documents, collects both sides'
// items, and classifies every source item against the destination.
//
// The per-type fetches run concurrently — they touch independent document
// subsystems — while each collector stays strictly sequential internally.
// A failing type records its error on the result instead of sinking the
// load; only document-open failures abort.
func (s *Service) LoadApp(ctx context.Context, sourceID, destID string) (*LoadResult, error) {
	cache, err := s.Cache(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := s.resolver(ctx)
	if err != nil {
		return nil, err
	}

	source, err := cache.Open(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	dest, err := cache.Open(ctx, destID)
	if err != nil {
		return nil, fmt.Errorf("open destination document: %w", err)
	}

	res := &LoadResult{
		BatchID:    uuid.NewString(),
		Source:     source,
		Dest:       dest,
		Items:      make(map[models.ObjectType][]*models.Item),
		DestItems:  make(map[models.ObjectType][]*models.Item),
		TypeErrors: make(map[models.ObjectType]error),
	}
	log := s.Log.WithFields(logrus.Fields{
		"batch":  res.BatchID,
		"source": source.ID(),
		"dest":   dest.ID(),
	})

	// Destination items feed classification only; skip the expensive
	// per-cell payload loading and validation there.
	destOpts := collect.Options{}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range collect.All(meta) {
		c := c
		g.Go(func() error {
			srcItems, err := c.Fetch(gctx, source, s.cfg.Collect)
			if err != nil {
				mu.Lock()
				res.TypeErrors[c.Type()] = err
				mu.Unlock()
				log.WithError(err).WithField("type", c.Type()).Warn("source fetch failed")
				return nil
			}
			destItems, err := c.Fetch(gctx, dest, destOpts)
			if err != nil {
				mu.Lock()
				res.TypeErrors[c.Type()] = err
				mu.Unlock()
				log.WithError(err).WithField("type", c.Type()).Warn("destination fetch failed")
				return nil
			}
			mu.Lock()
			res.Items[c.Type()] = srcItems
			res.DestItems[c.Type()] = destItems
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reconcile.ClassifyAll(res.Items, res.DestItems)

	idx, err := s.openIndex()
	if err != nil {
		return nil, err
	}
	if err := idx.IndexAll(res.Items); err != nil {
		idx.Close()
		return nil, fmt.Errorf("index items: %w", err)
	}
	res.index = idx

	log.WithField("types", len(res.Items)).Debug("load complete")
	return res, nil
}
