package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/engine/enginetest"
)

func TestCacheOpensOnce(t *testing.T) {
	global := enginetest.NewGlobal()
	global.AddDoc(enginetest.NewDoc("sales"))
	cache := engine.NewCache(global, 0)

	ctx := context.Background()
	first, err := cache.Open(ctx, "sales")
	require.NoError(t, err)
	second, err := cache.Open(ctx, "sales")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, global.OpenCalls["sales"])
}

func TestCacheConcurrentOpensShareOneCall(t *testing.T) {
	global := enginetest.NewGlobal()
	global.AddDoc(enginetest.NewDoc("sales"))
	global.OpenDelay = 20 * time.Millisecond
	cache := engine.NewCache(global, 0)

	var wg sync.WaitGroup
	docs := make([]engine.Doc, 8)
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := cache.Open(context.Background(), "sales")
			require.NoError(t, err)
			docs[i] = doc
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, global.OpenCalls["sales"])
	for _, doc := range docs[1:] {
		assert.Same(t, docs[0], doc)
	}
}

func TestCacheSettleDelay(t *testing.T) {
	global := enginetest.NewGlobal()
	global.AddDoc(enginetest.NewDoc("sales"))
	cache := engine.NewCache(global, 50*time.Millisecond)

	start := time.Now()
	_, err := cache.Open(context.Background(), "sales")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestCacheFailedOpenIsRetried(t *testing.T) {
	global := enginetest.NewGlobal()
	cache := engine.NewCache(global, 0)
	ctx := context.Background()

	_, err := cache.Open(ctx, "missing")
	require.ErrorIs(t, err, engine.ErrNotFound)

	// The failure is not memoized: adding the document makes the next open
	// succeed.
	global.AddDoc(enginetest.NewDoc("missing"))
	doc, err := cache.Open(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, "missing", doc.ID())
	assert.Equal(t, 2, global.OpenCalls["missing"])
}

func TestCacheDocPassThrough(t *testing.T) {
	global := enginetest.NewGlobal()
	cache := engine.NewCache(global, 0)

	doc := enginetest.NewDoc("already-open")
	got, err := cache.Open(context.Background(), doc)
	require.NoError(t, err)
	assert.Same(t, engine.Doc(doc), got)
	assert.Empty(t, global.OpenCalls)
}

func TestCacheRejectsBadReferences(t *testing.T) {
	cache := engine.NewCache(enginetest.NewGlobal(), 0)
	ctx := context.Background()

	_, err := cache.Open(ctx, "")
	assert.Error(t, err)
	_, err = cache.Open(ctx, nil)
	assert.Error(t, err)
	_, err = cache.Open(ctx, 42)
	assert.Error(t, err)
}
