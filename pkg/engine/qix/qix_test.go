package qix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bi-tools/appcopy/pkg/engine"
)

func TestRPCErrorSentinels(t *testing.T) {
	notFound := &rpcError{Code: 9003, Message: "Object not found"}
	assert.True(t, errors.Is(notFound.sentinel(), engine.ErrNotFound))

	conflict := &rpcError{Code: 9004, Message: "Variable already exists"}
	assert.True(t, errors.Is(conflict.sentinel(), engine.ErrConflict))

	other := &rpcError{Code: 500, Message: "Internal engine error"}
	err := other.sentinel()
	assert.False(t, errors.Is(err, engine.ErrNotFound))
	assert.False(t, errors.Is(err, engine.ErrConflict))
	assert.Contains(t, err.Error(), "Internal engine error")
}

func TestListSpecsCoverEveryListType(t *testing.T) {
	for _, lt := range []string{
		engine.SheetList,
		engine.DimensionList,
		engine.MeasureList,
		engine.MasterObjectList,
		engine.VariableList,
		engine.BookmarkList,
	} {
		spec, ok := listSpecs[lt]
		require.True(t, ok, "missing list definition for %s", lt)
		assert.NotEmpty(t, spec.defKey)
		assert.NotEmpty(t, spec.layoutKey)
	}
}

func TestDecodeListEntries(t *testing.T) {
	layout := map[string]any{
		"qMeasureList": map[string]any{
			"qItems": []any{
				map[string]any{
					"qInfo": map[string]any{"qId": "m-1", "qType": "measure"},
					"qMeta": map[string]any{"title": "Revenue"},
					"qData": map[string]any{"title": "Revenue"},
				},
			},
		},
	}

	entries, err := decodeListEntries(layout, "qMeasureList")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "m-1", entries[0].Info.ID)
	assert.Equal(t, "Revenue", entries[0].Data["title"])
}

func TestDecodeListEntriesEmptyLayout(t *testing.T) {
	entries, err := decodeListEntries(map[string]any{}, "qMeasureList")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
