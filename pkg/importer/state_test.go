package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bi-tools/appcopy/pkg/engine/enginetest"
	"github.com/bi-tools/appcopy/pkg/models"
)

func stateItem(name string) *models.Item {
	return &models.Item{Type: models.TypeAlternateState, ID: name, Label: name}
}

func TestStateAdd(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	ic := testContext(enginetest.NewDoc("src"), dest)

	err := stateImporter{}.Add(context.Background(), ic, stateItem("Group A"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Group A"}, dest.States)
}

func TestStateAddIsIdempotent(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	dest.States = []string{"Group A"}
	ic := testContext(enginetest.NewDoc("src"), dest)

	// The engine rejects duplicate states; the importer must not even try.
	err := stateImporter{}.Add(context.Background(), ic, stateItem("Group A"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Group A"}, dest.States)
}

func TestStateUpdateIsRejected(t *testing.T) {
	ic := testContext(enginetest.NewDoc("src"), enginetest.NewDoc("dest"))
	_, err := stateImporter{}.Update(context.Background(), ic, stateItem("Group A"))
	assert.Error(t, err)
}
