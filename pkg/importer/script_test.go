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

func testContext(source, dest *enginetest.Doc) *Context {
	return &Context{Source: source, Dest: dest}
}

func scriptItem(tab, body string) *models.Item {
	return &models.Item{
		Type:       models.TypeScript,
		Label:      tab,
		Properties: map[string]any{"tab": tab, "script": body},
	}
}

func TestScriptAddAppendsAtEnd(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	dest.Script = "///$tab Main\r\nSET x=1;\r\n"
	ic := testContext(enginetest.NewDoc("src"), dest)

	err := scriptImporter{}.Add(context.Background(), ic, scriptItem("Load", "LOAD 1 as a;"))
	require.NoError(t, err)

	sections := engine.SplitScript(dest.Script)
	require.Len(t, sections, 2)
	assert.Equal(t, "Main", sections[0].Title)
	assert.Equal(t, "Load", sections[1].Title)
	assert.Equal(t, "LOAD 1 as a;", sections[1].Body)
}

func TestScriptAddUniquesTabTitle(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	dest.Script = "///$tab Main\r\na\r\n///$tab Main (1)\r\nb\r\n"
	ic := testContext(enginetest.NewDoc("src"), dest)

	err := scriptImporter{}.Add(context.Background(), ic, scriptItem("Main", "c"))
	require.NoError(t, err)

	sections := engine.SplitScript(dest.Script)
	require.Len(t, sections, 3)
	assert.Equal(t, "Main (2)", sections[2].Title, "smallest free suffix wins")
}

func TestScriptUpdateReplacesInPlace(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	dest.Script = "///$tab A\r\nfirst\r\n///$tab B\r\nsecond\r\n///$tab C\r\nthird\r\n"
	ic := testContext(enginetest.NewDoc("src"), dest)

	created, err := scriptImporter{}.Update(context.Background(), ic, scriptItem("B", "rewritten\r\n"))
	require.NoError(t, err)
	assert.False(t, created)

	sections := engine.SplitScript(dest.Script)
	require.Len(t, sections, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{sections[0].Title, sections[1].Title, sections[2].Title})
	assert.Equal(t, "rewritten\r\n", sections[1].Body)
	assert.Equal(t, "first\r\n", sections[0].Body)
}

func TestScriptUpdateMissingSectionFails(t *testing.T) {
	dest := enginetest.NewDoc("dest")
	dest.Script = "///$tab A\r\nbody\r\n"
	ic := testContext(enginetest.NewDoc("src"), dest)

	_, err := scriptImporter{}.Update(context.Background(), ic, scriptItem("Gone", "x"))
	require.ErrorIs(t, err, engine.ErrNotFound)
	assert.Contains(t, dest.Script, "body", "failed update must not touch the script")
}

func TestUniqueTabTitle(t *testing.T) {
	taken := map[string]bool{"Main": true, "Main (1)": true, "Main (3)": true}
	assert.Equal(t, "Main (2)", uniqueTabTitle("Main", taken))
	assert.Equal(t, "Fresh", uniqueTabTitle("Fresh", taken))
}
