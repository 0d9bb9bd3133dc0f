package extmeta

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	metas []Meta
	// delay slows every call down so concurrent resolves overlap.
	delay time.Duration

	mu        sync.Mutex
	listCalls int
	getCalls  map[string]int
}

func newCountingSource(metas ...Meta) *countingSource {
	return &countingSource{metas: metas, getCalls: make(map[string]int)}
}

func (s *countingSource) List(ctx context.Context) ([]Meta, error) {
	time.Sleep(s.delay)
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	return s.metas, nil
}

func (s *countingSource) Get(ctx context.Context, id string) (*Meta, error) {
	time.Sleep(s.delay)
	s.mu.Lock()
	s.getCalls[id]++
	s.mu.Unlock()
	for i := range s.metas {
		if s.metas[i].ID == id {
			return &s.metas[i], nil
		}
	}
	return nil, nil
}

func TestResolverListsRegistryOnce(t *testing.T) {
	src := newCountingSource(Meta{ID: "sunburst", Name: "Sunburst chart"})
	r := NewResolver(src, false)
	ctx := context.Background()

	require.NoError(t, r.ResolveNames(ctx, []string{"sunburst", "unknown-ext"}))
	require.NoError(t, r.ResolveNames(ctx, []string{"sunburst", "unknown-ext"}))
	require.NoError(t, r.ResolveNames(ctx, []string{"another-unknown"}))

	assert.Equal(t, 1, src.listCalls, "the registry is listed at most once per resolver")
	assert.Empty(t, src.getCalls)
	assert.Equal(t, "Sunburst chart", r.DisplayName("sunburst"))
}

func TestResolverDesktopFetchesPerExtensionOnce(t *testing.T) {
	src := newCountingSource(Meta{ID: "sunburst", Name: "Sunburst chart"})
	r := NewResolver(src, true)
	ctx := context.Background()

	require.NoError(t, r.ResolveNames(ctx, []string{"sunburst", "sunburst", "missing"}))
	require.NoError(t, r.ResolveNames(ctx, []string{"sunburst", "missing"}))

	assert.Equal(t, 0, src.listCalls)
	assert.Equal(t, 1, src.getCalls["sunburst"], "each id is fetched at most once")
	assert.Equal(t, 1, src.getCalls["missing"], "misses are recorded, not re-fetched")
}

func TestResolverConcurrentCallersShareOneListing(t *testing.T) {
	src := newCountingSource(Meta{ID: "sunburst", Name: "Sunburst chart"})
	src.delay = 20 * time.Millisecond
	r := NewResolver(src, false)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.ResolveNames(context.Background(), []string{"sunburst", "unknown-ext"}))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.listCalls, "overlapping callers share one listing")
	assert.Equal(t, "Sunburst chart", r.DisplayName("sunburst"))
}

func TestResolverConcurrentCallersShareOneFetch(t *testing.T) {
	src := newCountingSource(Meta{ID: "sunburst", Name: "Sunburst chart"})
	src.delay = 20 * time.Millisecond
	r := NewResolver(src, true)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.ResolveNames(context.Background(), []string{"sunburst", "missing"}))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.getCalls["sunburst"], "overlapping callers share one fetch")
	assert.Equal(t, 1, src.getCalls["missing"])
}

func TestResolverSkipsBuiltins(t *testing.T) {
	src := newCountingSource()
	r := NewResolver(src, false)

	require.NoError(t, r.ResolveNames(context.Background(), []string{"barchart", "kpi", ""}))
	assert.Equal(t, 0, src.listCalls, "builtins never touch the source")
	assert.Equal(t, "Bar chart", r.DisplayName("barchart"))
	assert.Equal(t, "KPI", r.DisplayName("kpi"))
}

func TestDisplayNameFallsBackToTitleCase(t *testing.T) {
	r := NewResolver(newCountingSource(), false)
	assert.Equal(t, "Mystery", r.DisplayName("mystery"))
}
