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

func TestDimensionAdd(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	ic := testContext(enginetest.NewDoc("src"), dest)

	item := &models.Item{
		Type:  models.TypeDimension,
		Label: "Region",
		Properties: map[string]any{
			"qInfo":    map[string]any{"qId": "src-dim", "qType": "dimension"},
			"qDim":     map[string]any{"qFieldDefs": []any{"Region"}},
			"qMetaDef": map[string]any{"title": "Region"},
		},
	}
	err := dimensionImporter{}.Add(context.Background(), ic, item)
	require.NoError(t, err)

	dims := dest.Objects(engine.DimensionList)
	require.Len(t, dims, 1)
	assert.NotEqual(t, "src-dim", engine.ObjectID(dims[0].Props))
	assert.Equal(t, map[string]any{"qFieldDefs": []any{"Region"}}, dims[0].Props["qDim"])
}

func TestMeasureUpdateInheritsDestinationID(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	target := dest.Add(engine.MeasureList, "m-1", map[string]any{
		"qMeasure": map[string]any{"qDef": "Sum(Old)"},
		"qMetaDef": map[string]any{"title": "Revenue"},
	})
	ic := testContext(enginetest.NewDoc("src"), dest)

	item := &models.Item{
		Type:  models.TypeMeasure,
		Label: "Revenue",
		Properties: map[string]any{
			"qInfo":    map[string]any{"qId": "src-m"},
			"qMeasure": map[string]any{"qDef": "Sum(New)"},
			"qMetaDef": map[string]any{"title": "Revenue"},
		},
		UpdatableTargetID: "m-1",
	}
	created, err := measureImporter{}.Update(context.Background(), ic, item)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "m-1", engine.ObjectID(target.Props))
	assert.Equal(t, map[string]any{"qDef": "Sum(New)"}, target.Props["qMeasure"])
}

func TestMasterObjectAddWritesOriginTree(t *testing.T) {
	source := enginetest.NewDoc("src")
	origin := source.Add(engine.MasterObjectList, "mo-1", map[string]any{
		"visualization": "filterpane",
		"qChildListDef": map[string]any{},
		"published":     true,
	})
	origin.Tree = &engine.PropertyTree{
		Property: map[string]any{
			"qInfo":         map[string]any{"qId": "mo-1"},
			"visualization": "filterpane",
			"published":     true,
		},
		Children: []*engine.PropertyTree{
			{Property: map[string]any{"visualization": "listbox"}},
		},
	}
	dest := enginetest.NewDoc("dest")
	ic := testContext(source, dest)

	item := &models.Item{
		ID:    "mo-1",
		Type:  models.TypeMasterObject,
		Label: "Filters",
		Properties: map[string]any{
			"qInfo":         map[string]any{"qId": "mo-1"},
			"visualization": "filterpane",
			"qChildListDef": map[string]any{},
		},
	}
	err := masterObjectImporter{}.Add(context.Background(), ic, item)
	require.NoError(t, err)

	objs := dest.Objects(engine.MasterObjectList)
	require.Len(t, objs, 1)
	require.NotNil(t, objs[0].Tree)
	require.Len(t, objs[0].Tree.Children, 1)
	assert.Equal(t, "listbox", objs[0].Tree.Children[0].Property["visualization"])
	assert.Equal(t, objs[0].ObjInfo.ID, engine.ObjectID(objs[0].Tree.Property),
		"tree root carries the destination id")
	assert.NotContains(t, objs[0].Tree.Property, "published")
}

func TestMasterObjectAddCreatesReferencedStates(t *testing.T) {
	source := enginetest.NewDoc("src")
	source.Add(engine.MasterObjectList, "mo-1", map[string]any{
		"visualization": "barchart",
	})
	dest := enginetest.NewDoc("dest")
	ic := testContext(source, dest)

	item := &models.Item{
		ID:    "mo-1",
		Type:  models.TypeMasterObject,
		Label: "Chart",
		Properties: map[string]any{
			"visualization": "barchart",
			"qHyperCubeDef": map[string]any{"qStateName": "Group A"},
		},
	}
	err := masterObjectImporter{}.Add(context.Background(), ic, item)
	require.NoError(t, err)
	assert.Equal(t, []string{"Group A"}, dest.States)
}

func TestMasterObjectUpdate(t *testing.T) {
	source := enginetest.NewDoc("src")
	source.Add(engine.MasterObjectList, "mo-src", map[string]any{
		"visualization": "kpi",
		"color":         "blue",
	})
	dest := enginetest.NewDoc("dest")
	target := dest.Add(engine.MasterObjectList, "mo-dest", map[string]any{
		"visualization": "kpi",
		"color":         "red",
	})
	ic := testContext(source, dest)

	item := &models.Item{
		ID:    "mo-src",
		Type:  models.TypeMasterObject,
		Label: "KPI",
		Properties: map[string]any{
			"visualization": "kpi",
			"color":         "blue",
		},
		UpdatableTargetID: "mo-dest",
	}
	created, err := masterObjectImporter{}.Update(context.Background(), ic, item)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "blue", target.Props["color"])
	assert.Equal(t, "mo-dest", engine.ObjectID(target.Props))
	assert.Len(t, dest.Objects(engine.MasterObjectList), 1)
}

func TestForDispatch(t *testing.T) {
	for _, typ := range models.AllTypes() {
		imp, err := For(typ)
		if typ == models.TypeBookmark {
			assert.ErrorIs(t, err, engine.ErrUnsupported)
			continue
		}
		require.NoError(t, err, "type %s", typ)
		assert.NotNil(t, imp)
	}
}
