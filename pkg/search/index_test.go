package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bi-tools/appcopy/pkg/models"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexAndSearch(t *testing.T) {
	idx := testIndex(t)

	items := map[models.ObjectType][]*models.Item{
		models.TypeMeasure: {
			{ID: "m-1", Type: models.TypeMeasure, Label: "Revenue", SearchTerms: []string{"sales", "Sum(Sales)"}},
			{ID: "m-2", Type: models.TypeMeasure, Label: "Margin", SearchTerms: []string{"profit"}},
		},
		models.TypeDimension: {
			{ID: "d-1", Type: models.TypeDimension, Label: "Revenue region", SearchTerms: []string{"geo"}},
		},
	}
	require.NoError(t, idx.IndexAll(items))

	matches, err := idx.Search("revenue", nil)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = idx.Search("revenue", &Options{Type: models.TypeMeasure})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "m-1", matches[0].ID)
}

func TestIndexSearchesTerms(t *testing.T) {
	idx := testIndex(t)

	item := &models.Item{ID: "m-1", Type: models.TypeMeasure, Label: "Revenue", SearchTerms: []string{"quarterly"}}
	require.NoError(t, idx.IndexItem(item))

	matches, err := idx.Search("quarterly", nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Revenue", matches[0].Label)
}

func TestSearchWithoutFTSMatchesBlob(t *testing.T) {
	idx := testIndex(t)
	idx.useFTS = false

	item := &models.Item{ID: "m-1", Type: models.TypeMeasure, Label: "Revenue", SearchTerms: []string{"Sales"}}
	require.NoError(t, idx.IndexItem(item))

	// Label and terms match case-insensitively through the blob column.
	for _, q := range []string{"REVENUE", "sales", "Sal"} {
		matches, err := idx.Search(q, nil)
		require.NoError(t, err)
		require.Len(t, matches, 1, "query %q", q)
		assert.Equal(t, "m-1", matches[0].ID)
	}

	matches, err := idx.Search("profit", nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestIndexItemReplacesPrevious(t *testing.T) {
	idx := testIndex(t)

	item := &models.Item{ID: "m-1", Type: models.TypeMeasure, Label: "Old label"}
	require.NoError(t, idx.IndexItem(item))

	item.Label = "New label"
	require.NoError(t, idx.IndexItem(item))

	matches, err := idx.Search("label", nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "New label", matches[0].Label)
}

func TestSearchNoMatches(t *testing.T) {
	idx := testIndex(t)
	require.NoError(t, idx.IndexItem(&models.Item{ID: "m-1", Type: models.TypeMeasure, Label: "Revenue"}))

	matches, err := idx.Search("nonexistent", nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
