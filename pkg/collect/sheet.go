package collect

import (
	"context"
	"fmt"
	"sort"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
)

type sheetCollector struct{}

func (sheetCollector) Type() models.ObjectType { return models.TypeSheet }

// Fetch lists all sheets and resolves each one's full properties. With
// LoadWithObjects it also pulls every placed visualization's properties from
// the source document, attaching them to the owning cell so the importer can
// recreate the sheet without going back to the origin. Sheets sort by rank —
// the document's own display order — not by label.
func (sheetCollector) Fetch(ctx context.Context, doc engine.Doc, opts Options) ([]*models.Item, error) {
	entries, err := readList(ctx, doc, engine.SheetList)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}

	items := make([]*models.Item, 0, len(entries))
	for _, entry := range entries {
		obj, err := doc.GetObject(ctx, entry.Info.ID)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", entry.Info.ID, err)
		}
		props, err := obj.GetProperties(ctx)
		if err != nil {
			return nil, fmt.Errorf("sheet %s properties: %w", entry.Info.ID, err)
		}
		layout, err := obj.GetLayout(ctx)
		if err != nil {
			return nil, fmt.Errorf("sheet %s layout: %w", entry.Info.ID, err)
		}

		if opts.LoadWithObjects {
			if err := attachCellObjects(ctx, doc, props); err != nil {
				return nil, fmt.Errorf("sheet %s objects: %w", entry.Info.ID, err)
			}
		}

		item := &models.Item{
			ID:         entry.Info.ID,
			Type:       models.TypeSheet,
			Label:      titleOf(props, entry),
			Properties: props,
		}
		b := &detailBuilder{}
		b.add("description", "Description", stringField(metaDef(props), "description"))
		if cells, ok := props["cells"].([]any); ok {
			b.add("objects", "Objects", fmt.Sprintf("%d", len(cells)))
		}
		b.addMeta(layout)
		item.Details = b.details
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return sheetRank(items[i].Properties) < sheetRank(items[j].Properties)
	})
	return items, nil
}

// attachCellObjects resolves every cell's referenced visualization. Objects
// owning a child property subtree (filter panes and their listboxes) carry
// the whole tree so it can travel with the sheet.
func attachCellObjects(ctx context.Context, doc engine.Doc, props map[string]any) error {
	cells, _ := props["cells"].([]any)
	for _, c := range cells {
		cell, ok := c.(map[string]any)
		if !ok {
			continue
		}
		name, _ := cell["name"].(string)
		if name == "" {
			continue
		}
		obj, err := doc.GetObject(ctx, name)
		if err != nil {
			return fmt.Errorf("cell object %s: %w", name, err)
		}
		cprops, err := obj.GetProperties(ctx)
		if err != nil {
			return fmt.Errorf("cell object %s properties: %w", name, err)
		}
		cell["properties"] = cprops
		if _, owns := cprops["qChildListDef"]; owns {
			tree, err := obj.GetFullPropertyTree(ctx)
			if err != nil {
				return fmt.Errorf("cell object %s tree: %w", name, err)
			}
			cell["propertyTree"] = tree
		}
	}
	return nil
}

// SheetRank reads a sheet's display rank from its properties.
func SheetRank(props map[string]any) float64 { return sheetRank(props) }

func sheetRank(props map[string]any) float64 {
	switch r := props["rank"].(type) {
	case float64:
		return r
	case int:
		return float64(r)
	}
	return 0
}
