package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/engine/enginetest"
	"github.com/bi-tools/appcopy/pkg/models"
)

func sheetItem(label string, cells ...map[string]any) *models.Item {
	anyCells := make([]any, len(cells))
	for i, c := range cells {
		anyCells[i] = c
	}
	return &models.Item{
		Type:  models.TypeSheet,
		Label: label,
		Properties: map[string]any{
			"qInfo":    map[string]any{"qId": "src-sheet", "qType": "sheet"},
			"qMetaDef": map[string]any{"title": label},
			"rank":     float64(0),
			"cells":    anyCells,
		},
	}
}

func TestSheetAddAssignsNextRank(t *testing.T) {
	source := enginetest.NewDoc("src")
	dest := enginetest.NewDoc("dest")
	for i, id := range []string{"s0", "s1", "s2"} {
		dest.Add(engine.SheetList, id, map[string]any{
			"qInfo": map[string]any{"qType": "sheet"},
			"rank":  float64(i),
		})
	}
	ic := testContext(source, dest)

	err := sheetImporter{}.Add(context.Background(), ic, sheetItem("New sheet"))
	require.NoError(t, err)

	sheets := dest.Objects(engine.SheetList)
	require.Len(t, sheets, 4)
	assert.Equal(t, float64(3), sheets[3].Props["rank"], "new sheet lands after the last existing rank")
}

func TestSheetAddResolvesCellsFromOrigin(t *testing.T) {
	source := enginetest.NewDoc("src")
	source.Add(engine.MasterObjectList, "viz-1", map[string]any{
		"qInfo":         map[string]any{"qId": "viz-1", "qType": "barchart"},
		"visualization": "barchart",
	})
	dest := enginetest.NewDoc("dest")
	ic := testContext(source, dest)

	item := sheetItem("Overview", map[string]any{"name": "viz-1", "type": "barchart"})
	err := sheetImporter{}.Add(context.Background(), ic, item)
	require.NoError(t, err)

	sheets := dest.Objects(engine.SheetList)
	require.Len(t, sheets, 1)
	require.NotNil(t, sheets[0].Tree)
	require.Len(t, sheets[0].Tree.Children, 1)
	assert.Equal(t, "barchart", sheets[0].Tree.Children[0].Property["visualization"])
}

func TestSheetAddUsesAttachedCellPayloads(t *testing.T) {
	// Attached payloads make the import independent of the origin document.
	source := enginetest.NewDoc("src")
	dest := enginetest.NewDoc("dest")
	ic := testContext(source, dest)

	item := sheetItem("Overview", map[string]any{
		"name":       "viz-1",
		"properties": map[string]any{"visualization": "kpi"},
	})
	err := sheetImporter{}.Add(context.Background(), ic, item)
	require.NoError(t, err)

	sheets := dest.Objects(engine.SheetList)
	require.Len(t, sheets, 1)
	require.Len(t, sheets[0].Tree.Children, 1)
	assert.Equal(t, "kpi", sheets[0].Tree.Children[0].Property["visualization"])

	// Attachment keys must not leak into the stored sheet properties.
	cells := sheets[0].Props["cells"].([]any)
	_, has := cells[0].(map[string]any)["properties"]
	assert.False(t, has)
}

func TestSheetAddCreatesReferencedStates(t *testing.T) {
	source := enginetest.NewDoc("src")
	dest := enginetest.NewDoc("dest")
	dest.States = []string{"Existing"}
	ic := testContext(source, dest)

	item := sheetItem("Overview", map[string]any{
		"name":       "viz-1",
		"properties": map[string]any{"qHyperCubeDef": map[string]any{"qStateName": "Group A"}},
	})
	// State references live in the sheet payload itself here.
	item.Properties["qStateName"] = "Group A"

	err := sheetImporter{}.Add(context.Background(), ic, item)
	require.NoError(t, err)
	assert.Contains(t, dest.States, "Group A")
	assert.Contains(t, dest.States, "Existing")
}

func TestSheetUpdateWritesOntoTarget(t *testing.T) {
	source := enginetest.NewDoc("src")
	dest := enginetest.NewDoc("dest")
	target := dest.Add(engine.SheetList, "sh-1", map[string]any{
		"qInfo":    map[string]any{"qType": "sheet"},
		"qMetaDef": map[string]any{"title": "Old title"},
		"rank":     float64(0),
	})
	ic := testContext(source, dest)

	item := sheetItem("New title")
	item.UpdatableTargetID = "sh-1"

	created, err := sheetImporter{}.Update(context.Background(), ic, item)
	require.NoError(t, err)
	assert.False(t, created)

	meta := target.Props["qMetaDef"].(map[string]any)
	assert.Equal(t, "New title", meta["title"])
	assert.Len(t, dest.Objects(engine.SheetList), 1, "update must not create a sheet")
}

func TestSheetUpdateWithoutTargetFails(t *testing.T) {
	ic := testContext(enginetest.NewDoc("src"), enginetest.NewDoc("dest"))
	_, err := sheetImporter{}.Update(context.Background(), ic, sheetItem("Orphan"))
	require.ErrorIs(t, err, engine.ErrNotFound)
}

func TestSheetAddStripsPublishMeta(t *testing.T) {
	source := enginetest.NewDoc("src")
	dest := enginetest.NewDoc("dest")
	ic := testContext(source, dest)

	item := sheetItem("Published sheet")
	item.Properties["published"] = true
	item.Properties["owner"] = map[string]any{"userId": "someone"}
	item.Properties["qMeta"] = map[string]any{"approved": true}

	err := sheetImporter{}.Add(context.Background(), ic, item)
	require.NoError(t, err)

	props := dest.Objects(engine.SheetList)[0].Props
	assert.NotContains(t, props, "published")
	assert.NotContains(t, props, "owner")
	assert.NotContains(t, props, "qMeta")
}
