package importer

import (
	"context"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
)

type dimensionImporter struct{}

func (dimensionImporter) Add(ctx context.Context, ic *Context, item *models.Item) error {
	props := engine.CloneProps(item.Properties)
	StripPublishMeta(props)
	engine.SetObjectID(props, "")
	if _, err := ic.Dest.CreateDimension(ctx, props); err != nil {
		return fmt.Errorf("create dimension %q: %w", item.Label, err)
	}
	return nil
}

func (dimensionImporter) Update(ctx context.Context, ic *Context, item *models.Item) (bool, error) {
	obj, err := ic.Dest.GetDimension(ctx, item.UpdatableTargetID)
	if err != nil {
		return false, fmt.Errorf("dimension target %s: %w", item.UpdatableTargetID, err)
	}
	return false, writeOnto(ctx, obj, item)
}

type measureImporter struct{}

func (measureImporter) Add(ctx context.Context, ic *Context, item *models.Item) error {
	props := engine.CloneProps(item.Properties)
	StripPublishMeta(props)
	engine.SetObjectID(props, "")
	if _, err := ic.Dest.CreateMeasure(ctx, props); err != nil {
		return fmt.Errorf("create measure %q: %w", item.Label, err)
	}
	return nil
}

func (measureImporter) Update(ctx context.Context, ic *Context, item *models.Item) (bool, error) {
	obj, err := ic.Dest.GetMeasure(ctx, item.UpdatableTargetID)
	if err != nil {
		return false, fmt.Errorf("measure target %s: %w", item.UpdatableTargetID, err)
	}
	return false, writeOnto(ctx, obj, item)
}

type masterObjectImporter struct{}

// Add creates the object, then overwrites its property tree wholesale with
// the ORIGIN's full tree. Objects with child listboxes only round-trip
// correctly through the tree.
func (masterObjectImporter) Add(ctx context.Context, ic *Context, item *models.Item) error {
	props := engine.CloneProps(item.Properties)
	StripPublishMeta(props)
	engine.SetObjectID(props, "")

	if err := importReferencedStates(ctx, ic, props); err != nil {
		return err
	}

	obj, err := ic.Dest.CreateObject(ctx, props)
	if err != nil {
		return fmt.Errorf("create object %q: %w", item.Label, err)
	}
	return writeOriginTree(ctx, ic, item, obj)
}

func (masterObjectImporter) Update(ctx context.Context, ic *Context, item *models.Item) (bool, error) {
	obj, err := ic.Dest.GetObject(ctx, item.UpdatableTargetID)
	if err != nil {
		return false, fmt.Errorf("object target %s: %w", item.UpdatableTargetID, err)
	}
	if err := writeOnto(ctx, obj, item); err != nil {
		return false, err
	}
	return false, writeOriginTree(ctx, ic, item, obj)
}

func writeOriginTree(ctx context.Context, ic *Context, item *models.Item, dest engine.Object) error {
	origin, err := ic.Source.GetObject(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("origin object %s: %w", item.ID, err)
	}
	tree, err := origin.GetFullPropertyTree(ctx)
	if err != nil {
		return fmt.Errorf("origin object %s tree: %w", item.ID, err)
	}
	if tree.Property != nil {
		StripPublishMeta(tree.Property)
		engine.SetObjectID(tree.Property, dest.Info().ID)
	}
	if err := dest.SetFullPropertyTree(ctx, tree); err != nil {
		return fmt.Errorf("write object %q tree: %w", item.Label, err)
	}
	return nil
}

// writeOnto replaces an existing object's properties with the item's,
// inheriting the destination id.
func writeOnto(ctx context.Context, obj engine.Object, item *models.Item) error {
	props := engine.CloneProps(item.Properties)
	StripPublishMeta(props)
	engine.SetObjectID(props, obj.Info().ID)
	if err := obj.SetProperties(ctx, props); err != nil {
		return fmt.Errorf("write %s %q: %w", item.Type, item.Label, err)
	}
	return nil
}
