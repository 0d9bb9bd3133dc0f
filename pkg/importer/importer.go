// Package importer executes add and update operations for reconciled items.
// Dispatch is a closed switch over the object types; failures are captured
// into the item's status flags and logged, never propagated past the item.
package importer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
)

// Context carries the documents an operation works against. Source is the
// origin document (needed when payloads were not pre-fetched), Dest the
// currently open document being written to.
type Context struct {
	Source engine.Doc
	Dest   engine.Doc
	Log    *logrus.Entry
}

// Importer adds or updates one object type. Update reports created=true when
// it fell back to creating the object (variable self-healing).
type Importer interface {
	Add(ctx context.Context, ic *Context, item *models.Item) error
	Update(ctx context.Context, ic *Context, item *models.Item) (created bool, err error)
}

// For resolves the importer for a type. The switch is closed over every
// declared object type; bookmarks have no write path and report unsupported.
func For(t models.ObjectType) (Importer, error) {
	switch t {
	case models.TypeScript:
		return scriptImporter{}, nil
	case models.TypeSheet:
		return sheetImporter{}, nil
	case models.TypeDimension:
		return dimensionImporter{}, nil
	case models.TypeMeasure:
		return measureImporter{}, nil
	case models.TypeMasterObject:
		return masterObjectImporter{}, nil
	case models.TypeAlternateState:
		return stateImporter{}, nil
	case models.TypeVariable:
		return variableImporter{}, nil
	case models.TypeBookmark:
		return nil, fmt.Errorf("bookmark: %w", engine.ErrUnsupported)
	default:
		return nil, fmt.Errorf("%s: %w", t, engine.ErrUnsupported)
	}
}

// Executor runs operations against items, driving the per-item status state
// machine. A terminal outcome is never reset; a failed item never aborts its
// siblings.
type Executor struct {
	Log *logrus.Entry
}

// ImportItem adds one item to the destination. No-op when the item is not
// importable or the import already reached a terminal outcome.
func (e *Executor) ImportItem(ctx context.Context, ic *Context, item *models.Item) {
	st := &item.Status
	if st.ImportDone() || st.Importing || !st.Importable {
		return
	}
	st.Importing = true
	defer func() { st.Importing = false }()

	err := e.runAdd(ctx, ic, item)
	if err != nil {
		st.ImportFailed = true
		e.entry(item).WithError(err).Error("import failed")
		return
	}
	st.Imported = true
	st.Exists = true
	e.entry(item).Debug("imported")
}

// UpdateItem updates the item's destination target. No-op when the item is
// not updatable or the update already reached a terminal outcome.
func (e *Executor) UpdateItem(ctx context.Context, ic *Context, item *models.Item) {
	st := &item.Status
	if st.UpdateDone() || st.Updating || !st.Updatable {
		return
	}
	st.Updating = true
	defer func() { st.Updating = false }()

	imp, err := For(item.Type)
	var created bool
	if err == nil {
		created, err = imp.Update(ctx, ic, item)
	}
	if err != nil {
		st.UpdateFailed = true
		e.entry(item).WithError(err).Error("update failed")
		return
	}
	if created {
		// The target vanished and the update became a create.
		st.Imported = true
		st.Exists = true
	} else {
		st.Updated = true
	}
	st.Updatable = false
	e.entry(item).Debug("updated")
}

func (e *Executor) runAdd(ctx context.Context, ic *Context, item *models.Item) error {
	imp, err := For(item.Type)
	if err != nil {
		return err
	}
	return imp.Add(ctx, ic, item)
}

func (e *Executor) entry(item *models.Item) *logrus.Entry {
	log := e.Log
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return log.WithFields(logrus.Fields{
		"type":  item.Type,
		"label": item.Label,
		"id":    item.ID,
	})
}

// importReferencedStates creates every alternate state a property payload
// references before the object itself is written, so the engine never sees a
// dangling state reference. Existing states are left untouched.
func importReferencedStates(ctx context.Context, ic *Context, props map[string]any) error {
	names := engine.CollectStateNames(props)
	if len(names) == 0 {
		return nil
	}
	layout, err := ic.Dest.GetAppLayout(ctx)
	if err != nil {
		return fmt.Errorf("destination layout: %w", err)
	}
	existing := make(map[string]bool, len(layout.StateNames))
	for _, s := range layout.StateNames {
		existing[s] = true
	}
	for _, name := range names {
		if existing[name] {
			continue
		}
		if err := ic.Dest.AddAlternateState(ctx, name); err != nil {
			return fmt.Errorf("add alternate state %q: %w", name, err)
		}
	}
	return nil
}
