// Package collect fetches raw engine records per object type and normalizes
// them into the uniform item model. Collectors never swallow engine errors;
// failure isolation across types is the orchestration layer's job.
package collect

import (
	"context"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/extmeta"
	"github.com/bi-tools/appcopy/pkg/models"
)

// Options tunes how much detail a collector resolves per item.
type Options struct {
	// LoadWithObjects resolves full cell properties (and child property
	// trees) for every visualization placed on a sheet.
	LoadWithObjects bool
	// ValidateExpressions checks definitions against the engine and records
	// findings as item warnings.
	ValidateExpressions bool
	// CheckBookmarkFields flags bookmark selections referencing fields that
	// no longer exist in the document.
	CheckBookmarkFields bool
}

// Collector fetches and normalizes one object type from a document.
type Collector interface {
	Type() models.ObjectType
	Fetch(ctx context.Context, doc engine.Doc, opts Options) ([]*models.Item, error)
}

// All returns every collector in collection order. The metadata resolver is
// shared; only the master-object collector consults it.
func All(meta *extmeta.Resolver) []Collector {
	return []Collector{
		scriptCollector{},
		sheetCollector{},
		dimensionCollector{},
		measureCollector{},
		masterObjectCollector{meta: meta},
		stateCollector{},
		variableCollector{},
		bookmarkCollector{},
	}
}

// sortByLabel orders items ascending by label, case-insensitively. Script
// and sheet collectors do not use it (source order and rank order apply).
func sortByLabel(items []*models.Item) {
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(items[i].Label, items[j].Label) < 0
	})
}

// readList fetches a session list and closes it immediately after copying
// the entries out. Leaked list handles keep engine subscriptions alive.
func readList(ctx context.Context, doc engine.Doc, listType string) ([]engine.ListEntry, error) {
	list, err := doc.GetList(ctx, listType)
	if err != nil {
		return nil, err
	}
	entries := list.Items()
	if cerr := list.Close(ctx); cerr != nil {
		return entries, cerr
	}
	return entries, nil
}

func stringsFromAny(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if str, ok := s.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

func metaDef(props map[string]any) map[string]any {
	m, _ := props["qMetaDef"].(map[string]any)
	return m
}

func titleOf(props map[string]any, entry engine.ListEntry) string {
	if t, ok := metaDef(props)["title"].(string); ok && t != "" {
		return t
	}
	t, _ := entry.Data["title"].(string)
	return t
}
