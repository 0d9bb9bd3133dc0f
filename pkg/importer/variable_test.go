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

func variableItem(name, def string) *models.Item {
	return &models.Item{
		Type:  models.TypeVariable,
		Label: name,
		Properties: map[string]any{
			"qInfo":       map[string]any{"qId": "src-" + name, "qType": "variable"},
			"qName":       name,
			"qDefinition": def,
		},
	}
}

func TestVariableAdd(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	ic := testContext(enginetest.NewDoc("src"), dest)

	item := variableItem("vThreshold", "100")
	item.Properties["qIsScriptCreated"] = true

	err := variableImporter{}.Add(context.Background(), ic, item)
	require.NoError(t, err)

	vars := dest.Objects(engine.VariableList)
	require.Len(t, vars, 1)
	assert.Equal(t, "vThreshold", vars[0].Props["qName"])
	assert.Equal(t, "100", vars[0].Props["qDefinition"])
	assert.NotContains(t, vars[0].Props, "qIsScriptCreated", "imported variables are never script-created")
	assert.NotEqual(t, "src-vThreshold", engine.ObjectID(vars[0].Props), "source ids never travel")
}

func TestVariableAddDuplicateNameFails(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	dest.Add(engine.VariableList, "v-1", map[string]any{"qName": "vX", "qDefinition": "1"})
	ic := testContext(enginetest.NewDoc("src"), dest)

	err := variableImporter{}.Add(context.Background(), ic, variableItem("vX", "2"))
	require.ErrorIs(t, err, engine.ErrConflict)
}

func TestVariableUpdateByTargetID(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	target := dest.Add(engine.VariableList, "v-1", map[string]any{
		"qName":            "vX",
		"qDefinition":      "old",
		"qIsScriptCreated": true,
	})
	ic := testContext(enginetest.NewDoc("src"), dest)

	item := variableItem("vX", "new")
	item.UpdatableTargetID = "v-1"

	created, err := variableImporter{}.Update(context.Background(), ic, item)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, "new", target.Props["qDefinition"])
	assert.Equal(t, "v-1", engine.ObjectID(target.Props), "destination id is inherited")
	assert.Equal(t, true, target.Props["qIsScriptCreated"], "destination flag is inherited")
}

func TestVariableUpdateFallsBackToName(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	target := dest.Add(engine.VariableList, "v-other", map[string]any{
		"qName":       "vX",
		"qDefinition": "old",
	})
	ic := testContext(enginetest.NewDoc("src"), dest)

	item := variableItem("vX", "new")
	item.UpdatableTargetID = "v-gone"

	created, err := variableImporter{}.Update(context.Background(), ic, item)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "new", target.Props["qDefinition"])
}

func TestVariableUpdateSelfHealsIntoAdd(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	ic := testContext(enginetest.NewDoc("src"), dest)

	item := variableItem("vGone", "42")
	item.UpdatableTargetID = "v-gone"

	created, err := variableImporter{}.Update(context.Background(), ic, item)
	require.NoError(t, err)
	assert.True(t, created, "a vanished target turns the update into a create")

	vars := dest.Objects(engine.VariableList)
	require.Len(t, vars, 1)
	assert.Equal(t, "vGone", vars[0].Props["qName"])
}
