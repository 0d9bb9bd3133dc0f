package collect

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/extmeta"
	"github.com/bi-tools/appcopy/pkg/models"
)

// getObject looks an object up by id with a type-appropriate engine call.
type getObject func(ctx context.Context, doc engine.Doc, id string) (engine.Object, error)

// fetchDetailed runs the shared master-item flow: shallow list, then one
// item at a time (a strict sequential reduction — the engine does not
// tolerate large fan-out), loading layout and properties for that item in
// parallel before handing both to the type-specific builder.
func fetchDetailed(
	ctx context.Context,
	doc engine.Doc,
	listType string,
	get getObject,
	build func(entry engine.ListEntry, props, layout map[string]any) (*models.Item, error),
) ([]*models.Item, error) {
	entries, err := readList(ctx, doc, listType)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", listType, err)
	}

	items := make([]*models.Item, 0, len(entries))
	for _, entry := range entries {
		obj, err := get(ctx, doc, entry.Info.ID)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", listType, entry.Info.ID, err)
		}

		var props, layout map[string]any
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			props, err = obj.GetProperties(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			layout, err = obj.GetLayout(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("%s %s: %w", listType, entry.Info.ID, err)
		}

		item, err := build(entry, props, layout)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	sortByLabel(items)
	return items, nil
}

// validateDefinition checks an expression against the engine and returns the
// warnings to record. Diagnostic only: findings never affect importability.
func validateDefinition(ctx context.Context, doc engine.Doc, label, def string) ([]string, error) {
	if def == "" {
		return nil, nil
	}
	check, err := doc.CheckExpression(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("check expression for %q: %w", label, err)
	}
	var warnings []string
	if check.ErrorMsg != "" {
		warnings = append(warnings, fmt.Sprintf("%s: %s", label, check.ErrorMsg))
	}
	for _, f := range check.BadFields {
		warnings = append(warnings, fmt.Sprintf("%s references unknown field %q", label, f))
	}
	return warnings, nil
}

type dimensionCollector struct{}

func (dimensionCollector) Type() models.ObjectType { return models.TypeDimension }

func (dimensionCollector) Fetch(ctx context.Context, doc engine.Doc, opts Options) ([]*models.Item, error) {
	return fetchDetailed(ctx, doc, engine.DimensionList,
		func(ctx context.Context, doc engine.Doc, id string) (engine.Object, error) {
			return doc.GetDimension(ctx, id)
		},
		func(entry engine.ListEntry, props, layout map[string]any) (*models.Item, error) {
			def := dimensionDefinition(props)
			tags := stringsFromAny(metaDef(props)["tags"])
			item := &models.Item{
				ID:          entry.Info.ID,
				Type:        models.TypeDimension,
				Label:       titleOf(props, entry),
				Properties:  props,
				SearchTerms: append(tags, def),
			}
			if opts.ValidateExpressions {
				warnings, err := validateDefinition(ctx, doc, item.Label, def)
				if err != nil {
					return nil, err
				}
				item.Warnings = warnings
			}
			b := &detailBuilder{}
			b.addCode("definition", "Definition", def)
			b.addTags(tags)
			b.addMeta(layout)
			item.Details = b.details
			return item, nil
		})
}

func dimensionDefinition(props map[string]any) string {
	dim, _ := props["qDim"].(map[string]any)
	return strings.Join(stringsFromAny(dim["qFieldDefs"]), ", ")
}

type measureCollector struct{}

func (measureCollector) Type() models.ObjectType { return models.TypeMeasure }

func (measureCollector) Fetch(ctx context.Context, doc engine.Doc, opts Options) ([]*models.Item, error) {
	return fetchDetailed(ctx, doc, engine.MeasureList,
		func(ctx context.Context, doc engine.Doc, id string) (engine.Object, error) {
			return doc.GetMeasure(ctx, id)
		},
		func(entry engine.ListEntry, props, layout map[string]any) (*models.Item, error) {
			def := measureDefinition(props)
			tags := stringsFromAny(metaDef(props)["tags"])
			item := &models.Item{
				ID:          entry.Info.ID,
				Type:        models.TypeMeasure,
				Label:       titleOf(props, entry),
				Properties:  props,
				SearchTerms: append(tags, def),
			}
			if opts.ValidateExpressions {
				warnings, err := validateDefinition(ctx, doc, item.Label, def)
				if err != nil {
					return nil, err
				}
				item.Warnings = warnings
			}
			b := &detailBuilder{}
			b.addCode("definition", "Definition", def)
			b.addTags(tags)
			b.addMeta(layout)
			item.Details = b.details
			return item, nil
		})
}

func measureDefinition(props map[string]any) string {
	m, _ := props["qMeasure"].(map[string]any)
	def, _ := m["qDef"].(string)
	return def
}

type masterObjectCollector struct {
	meta *extmeta.Resolver
}

func (masterObjectCollector) Type() models.ObjectType { return models.TypeMasterObject }

func (c masterObjectCollector) Fetch(ctx context.Context, doc engine.Doc, opts Options) ([]*models.Item, error) {
	items, err := fetchDetailed(ctx, doc, engine.MasterObjectList,
		func(ctx context.Context, doc engine.Doc, id string) (engine.Object, error) {
			return doc.GetObject(ctx, id)
		},
		func(entry engine.ListEntry, props, layout map[string]any) (*models.Item, error) {
			// Objects owning a child subtree (filter panes) authoritatively
			// live in their property tree; updates must act on its root.
			if _, owns := props["qChildListDef"]; owns {
				obj, err := doc.GetObject(ctx, entry.Info.ID)
				if err != nil {
					return nil, fmt.Errorf("masterobject %s: %w", entry.Info.ID, err)
				}
				tree, err := obj.GetFullPropertyTree(ctx)
				if err != nil {
					return nil, fmt.Errorf("masterobject %s tree: %w", entry.Info.ID, err)
				}
				if tree.Property != nil {
					props = tree.Property
				}
			}
			tags := stringsFromAny(metaDef(props)["tags"])
			item := &models.Item{
				ID:          entry.Info.ID,
				Type:        models.TypeMasterObject,
				Label:       titleOf(props, entry),
				Properties:  props,
				SearchTerms: tags,
			}
			b := &detailBuilder{}
			vis, _ := props["visualization"].(string)
			b.add("type", "Type", vis)
			b.add("description", "Description", stringField(metaDef(props), "description"))
			b.addTags(tags)
			b.addMeta(layout)
			item.Details = b.details
			return item, nil
		})
	if err != nil {
		return nil, err
	}
	c.resolveTypeNames(ctx, items)
	return items, nil
}

// resolveTypeNames swaps visualization type codes for their display names.
// Resolution failures are non-fatal; the raw code is kept as fallback.
func (c masterObjectCollector) resolveTypeNames(ctx context.Context, items []*models.Item) {
	if c.meta == nil {
		return
	}
	var ids []string
	for _, item := range items {
		if vis, _ := item.Properties["visualization"].(string); vis != "" {
			ids = append(ids, vis)
		}
	}
	if len(ids) == 0 {
		return
	}
	_ = c.meta.ResolveNames(ctx, ids)
	for _, item := range items {
		vis, _ := item.Properties["visualization"].(string)
		if vis == "" {
			continue
		}
		name := c.meta.DisplayName(vis)
		for i := range item.Details {
			if item.Details[i].Name == "type" {
				item.Details[i].Value = name
			}
		}
	}
}

type variableCollector struct{}

func (variableCollector) Type() models.ObjectType { return models.TypeVariable }

func (variableCollector) Fetch(ctx context.Context, doc engine.Doc, opts Options) ([]*models.Item, error) {
	return fetchDetailed(ctx, doc, engine.VariableList,
		func(ctx context.Context, doc engine.Doc, id string) (engine.Object, error) {
			return doc.GetVariableByID(ctx, id)
		},
		func(entry engine.ListEntry, props, layout map[string]any) (*models.Item, error) {
			name, _ := props["qName"].(string)
			def, _ := props["qDefinition"].(string)
			tags := stringsFromAny(metaDef(props)["tags"])
			item := &models.Item{
				ID:          entry.Info.ID,
				Type:        models.TypeVariable,
				Label:       name,
				Properties:  props,
				SearchTerms: append(tags, def),
			}
			if opts.ValidateExpressions {
				warnings, err := validateDefinition(ctx, doc, name, def)
				if err != nil {
					return nil, err
				}
				item.Warnings = warnings
			}
			b := &detailBuilder{}
			b.addCode("definition", "Definition", def)
			b.add("description", "Description", stringField(props, "qComment"))
			b.addTags(tags)
			if scripted, ok := props["qIsScriptCreated"].(bool); ok {
				b.add("scriptCreated", "Created by script", yesNo(scripted))
			}
			b.addMeta(layout)
			item.Details = b.details
			return item, nil
		})
}
