package importer

import (
	"context"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/collect"
	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
)

type sheetImporter struct{}

func (s sheetImporter) Add(ctx context.Context, ic *Context, item *models.Item) error {
	return s.write(ctx, ic, item, "")
}

// Update delegates to the add path with the target id supplied, so the
// properties land on the existing destination object instead of a new one.
func (s sheetImporter) Update(ctx context.Context, ic *Context, item *models.Item) (bool, error) {
	if item.UpdatableTargetID == "" {
		return false, fmt.Errorf("sheet %q has no update target: %w", item.Label, engine.ErrNotFound)
	}
	return false, s.write(ctx, ic, item, item.UpdatableTargetID)
}

func (sheetImporter) write(ctx context.Context, ic *Context, item *models.Item, targetID string) error {
	props := engine.CloneProps(item.Properties)
	StripPublishMeta(props)

	// Cell payloads may not have been pre-fetched; resolve them from the
	// ORIGIN document, never the destination.
	trees, err := resolveCellTrees(ctx, ic.Source, props)
	if err != nil {
		return err
	}

	if err := importReferencedStates(ctx, ic, props); err != nil {
		return err
	}

	var obj engine.Object
	if targetID == "" {
		rank, err := nextSheetRank(ctx, ic.Dest)
		if err != nil {
			return err
		}
		props["rank"] = rank
		engine.SetObjectID(props, "")
		obj, err = ic.Dest.CreateObject(ctx, props)
		if err != nil {
			return fmt.Errorf("create sheet %q: %w", item.Label, err)
		}
	} else {
		obj, err = ic.Dest.GetObject(ctx, targetID)
		if err != nil {
			return fmt.Errorf("sheet target %s: %w", targetID, err)
		}
	}

	// Properties first, then overwrite the subtree's children with the
	// resolved visualization trees.
	if err := obj.SetProperties(ctx, props); err != nil {
		return fmt.Errorf("write sheet %q: %w", item.Label, err)
	}
	tree := &engine.PropertyTree{Property: props, Children: trees}
	if err := obj.SetFullPropertyTree(ctx, tree); err != nil {
		return fmt.Errorf("write sheet %q objects: %w", item.Label, err)
	}
	return nil
}

// resolveCellTrees produces one property tree per sheet cell, loading any
// payloads the collector did not attach, and strips the attachment keys from
// the cells before the sheet properties are written.
func resolveCellTrees(ctx context.Context, origin engine.Doc, props map[string]any) ([]*engine.PropertyTree, error) {
	cells, _ := props["cells"].([]any)
	trees := make([]*engine.PropertyTree, 0, len(cells))
	for _, c := range cells {
		cell, ok := c.(map[string]any)
		if !ok {
			continue
		}
		tree, err := cellTree(ctx, origin, cell)
		if err != nil {
			return nil, err
		}
		delete(cell, "properties")
		delete(cell, "propertyTree")
		if tree != nil {
			trees = append(trees, tree)
		}
	}
	return trees, nil
}

func cellTree(ctx context.Context, origin engine.Doc, cell map[string]any) (*engine.PropertyTree, error) {
	if tree, ok := cell["propertyTree"].(*engine.PropertyTree); ok {
		return tree, nil
	}
	if cprops, ok := cell["properties"].(map[string]any); ok {
		return &engine.PropertyTree{Property: cprops}, nil
	}

	name, _ := cell["name"].(string)
	if name == "" {
		return nil, nil
	}
	obj, err := origin.GetObject(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("origin object %s: %w", name, err)
	}
	cprops, err := obj.GetProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("origin object %s properties: %w", name, err)
	}
	if _, owns := cprops["qChildListDef"]; owns {
		tree, err := obj.GetFullPropertyTree(ctx)
		if err != nil {
			return nil, fmt.Errorf("origin object %s tree: %w", name, err)
		}
		return tree, nil
	}
	return &engine.PropertyTree{Property: cprops}, nil
}

// nextSheetRank places a new sheet last: maximum existing rank plus one.
func nextSheetRank(ctx context.Context, dest engine.Doc) (float64, error) {
	list, err := dest.GetList(ctx, engine.SheetList)
	if err != nil {
		return 0, fmt.Errorf("list destination sheets: %w", err)
	}
	entries := list.Items()
	if err := list.Close(ctx); err != nil {
		return 0, fmt.Errorf("close sheet list: %w", err)
	}

	max := -1.0
	for _, e := range entries {
		if r := collect.SheetRank(e.Data); r > max {
			max = r
		}
	}
	return max + 1, nil
}
