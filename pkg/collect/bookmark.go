package collect

import (
	"context"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
)

type bookmarkCollector struct{}

func (bookmarkCollector) Type() models.ObjectType { return models.TypeBookmark }

// Fetch collects bookmarks for inspection. For every alternate state bound
// to a bookmark it resolves the set-analysis expression, and optionally flags
// stored selections referencing fields that no longer exist. Bookmarks have
// no write path: the warnings are diagnostic and items are never importable.
func (bookmarkCollector) Fetch(ctx context.Context, doc engine.Doc, opts Options) ([]*models.Item, error) {
	entries, err := readList(ctx, doc, engine.BookmarkList)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	layout, err := doc.GetAppLayout(ctx)
	if err != nil {
		return nil, fmt.Errorf("app layout: %w", err)
	}
	states := append([]string{"$"}, layout.StateNames...)

	var fields map[string]bool
	if opts.CheckBookmarkFields {
		names, err := doc.GetFieldNames(ctx)
		if err != nil {
			return nil, fmt.Errorf("field names: %w", err)
		}
		fields = make(map[string]bool, len(names))
		for _, f := range names {
			fields[f] = true
		}
	}

	items := make([]*models.Item, 0, len(entries))
	for _, entry := range entries {
		obj, err := doc.GetBookmark(ctx, entry.Info.ID)
		if err != nil {
			return nil, fmt.Errorf("bookmark %s: %w", entry.Info.ID, err)
		}
		props, err := obj.GetProperties(ctx)
		if err != nil {
			return nil, fmt.Errorf("bookmark %s properties: %w", entry.Info.ID, err)
		}
		olayout, err := obj.GetLayout(ctx)
		if err != nil {
			return nil, fmt.Errorf("bookmark %s layout: %w", entry.Info.ID, err)
		}

		item := &models.Item{
			ID:         entry.Info.ID,
			Type:       models.TypeBookmark,
			Label:      titleOf(props, entry),
			Properties: props,
		}

		b := &detailBuilder{}
		b.add("description", "Description", stringField(metaDef(props), "description"))
		for _, state := range states {
			expr, err := doc.GetSetAnalysis(ctx, state, entry.Info.ID)
			if err != nil {
				return nil, fmt.Errorf("bookmark %s set analysis: %w", entry.Info.ID, err)
			}
			b.addCode("setAnalysis-"+state, "Set analysis ("+stateLabel(state)+")", expr)
		}
		b.addMeta(olayout)
		item.Details = b.details

		if fields != nil {
			item.Warnings = missingFieldWarnings(props, fields)
		}
		items = append(items, item)
	}

	sortByLabel(items)
	return items, nil
}

func stateLabel(state string) string {
	if state == "$" {
		return "default state"
	}
	return state
}

// missingFieldWarnings walks a bookmark's stored per-state selections and
// reports fields absent from the current field list.
func missingFieldWarnings(props map[string]any, fields map[string]bool) []string {
	var warnings []string
	bookmark, _ := props["qBookmark"].(map[string]any)
	stateData, _ := bookmark["qStateData"].([]any)
	for _, sd := range stateData {
		state, _ := sd.(map[string]any)
		stateName, _ := state["qStateName"].(string)
		fieldItems, _ := state["qFieldItems"].([]any)
		for _, fi := range fieldItems {
			fieldItem, _ := fi.(map[string]any)
			def, _ := fieldItem["qDef"].(map[string]any)
			name, _ := def["qName"].(string)
			if name != "" && !fields[name] {
				warnings = append(warnings, fmt.Sprintf(
					"selection in state %q references missing field %q", stateLabel(stateName), name))
			}
		}
	}
	return warnings
}
