package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		in   string
		want ObjectType
		ok   bool
	}{
		{"script", TypeScript, true},
		{"SHEET", TypeSheet, true},
		{"masterobject", TypeMasterObject, true},
		{"object", TypeMasterObject, true},
		{"viz", TypeMasterObject, true},
		{"state", TypeAlternateState, true},
		{"alternate-state", TypeAlternateState, true},
		{"variable", TypeVariable, true},
		{"nope", "", false},
	}
	for _, c := range cases {
		got, ok := ParseType(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestStatusHelpers(t *testing.T) {
	assert.False(t, Status{}.Processed())
	assert.True(t, Status{Imported: true}.ImportDone())
	assert.True(t, Status{ImportFailed: true}.Processed())
	assert.True(t, Status{Updated: true}.UpdateDone())
	assert.False(t, Status{Importing: true}.Processed(), "in-flight is not terminal")
}

func TestSameSearchTerms(t *testing.T) {
	assert.True(t, SameSearchTerms([]string{"a", "b"}, []string{"b", "a"}))
	assert.True(t, SameSearchTerms(nil, nil))
	assert.False(t, SameSearchTerms([]string{"a"}, []string{"a", "a"}))
	assert.False(t, SameSearchTerms([]string{"a"}, []string{"b"}))
}

func TestScriptAccessors(t *testing.T) {
	item := &Item{Properties: map[string]any{"tab": "Main", "script": "SET x=1;"}}
	assert.Equal(t, "Main", item.ScriptTab())
	assert.Equal(t, "SET x=1;", item.ScriptBody())

	empty := &Item{}
	assert.Equal(t, "", empty.ScriptTab())
	assert.Equal(t, "", empty.ScriptBody())
}

func TestSearchBlob(t *testing.T) {
	item := &Item{Label: "Revenue", SearchTerms: []string{"Sales", "KPI"}}
	assert.Equal(t, "revenue sales kpi", item.SearchBlob())
}
