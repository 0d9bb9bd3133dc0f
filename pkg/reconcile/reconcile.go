// Package reconcile decides, per item and per object type, whether a source
// item already exists in the destination, can be imported, or maps to an
// existing destination object it could update. Titles and names are the only
// identity signals that survive crossing documents; engine ids are never
// compared except for name-addressed types (script tabs, alternate states).
package reconcile

import (
	"reflect"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
)

// Classify annotates one source item against the destination's item sets.
// It sets Exists, Importable, Updatable, and UpdatableTargetID; the three
// flags are computed independently and are not mutually exclusive. The first
// destination item satisfying the update trigger wins (destination lists are
// label-sorted, so ties break on label order).
func Classify(item *models.Item, dest map[models.ObjectType][]*models.Item) {
	peers := dest[item.Type]

	switch item.Type {
	case models.TypeScript:
		item.Status.Exists = anyPeer(peers, func(p *models.Item) bool {
			return p.ScriptBody() == item.ScriptBody()
		})
		item.Status.Importable = true
		setUpdateTarget(item, peers, func(p *models.Item) bool {
			return p.Label == item.Label && p.ScriptBody() != item.ScriptBody()
		})

	case models.TypeSheet:
		item.Status.Exists = anyPeer(peers, labelEquals(item))
		item.Status.Importable = true
		setUpdateTarget(item, peers, func(p *models.Item) bool {
			return p.Label == item.Label && !cellsEqual(item.Properties, p.Properties)
		})

	case models.TypeDimension:
		item.Status.Exists = anyPeer(peers, labelEquals(item))
		item.Status.Importable = true
		setUpdateTarget(item, peers, func(p *models.Item) bool {
			return p.Label == item.Label && !deepEqual(item.Properties["qDim"], p.Properties["qDim"])
		})

	case models.TypeMeasure:
		item.Status.Exists = anyPeer(peers, labelEquals(item))
		item.Status.Importable = true
		setUpdateTarget(item, peers, func(p *models.Item) bool {
			return p.Label == item.Label && !deepEqual(item.Properties["qMeasure"], p.Properties["qMeasure"])
		})

	case models.TypeMasterObject:
		item.Status.Exists = anyPeer(peers, func(p *models.Item) bool {
			return p.Label == item.Label &&
				visualization(p) == visualization(item) &&
				models.SameSearchTerms(p.SearchTerms, item.SearchTerms)
		})
		item.Status.Importable = true
		setUpdateTarget(item, peers, func(p *models.Item) bool {
			return p.Label == item.Label &&
				!deepEqual(withoutIdentity(item.Properties), withoutIdentity(p.Properties))
		})

	case models.TypeAlternateState:
		// States are name-addressed and unique; an existing name blocks import
		// and there is no update path.
		item.Status.Exists = anyPeer(peers, labelEquals(item))
		item.Status.Importable = !item.Status.Exists

	case models.TypeVariable:
		nameTaken := anyPeer(peers, labelEquals(item))
		item.Status.Exists = anyPeer(peers, func(p *models.Item) bool {
			return p.Label == item.Label && deepEqual(p.Properties["qDefinition"], item.Properties["qDefinition"])
		})
		// The engine enforces unique variable names, so a taken name blocks
		// import even when the definition differs.
		item.Status.Importable = !nameTaken
		setUpdateTarget(item, peers, func(p *models.Item) bool {
			return p.Label == item.Label &&
				!deepEqual(variableContent(item.Properties), variableContent(p.Properties))
		})

	case models.TypeBookmark:
		// Bookmarks are collected for inspection only; no write path exists.
		item.Status.Exists = anyPeer(peers, labelEquals(item))
		item.Status.Importable = false
	}
}

// ClassifyAll runs Classify over every item of every type.
func ClassifyAll(items, dest map[models.ObjectType][]*models.Item) {
	for _, set := range items {
		for _, item := range set {
			Classify(item, dest)
		}
	}
}

func anyPeer(peers []*models.Item, pred func(*models.Item) bool) bool {
	for _, p := range peers {
		if pred(p) {
			return true
		}
	}
	return false
}

func labelEquals(item *models.Item) func(*models.Item) bool {
	return func(p *models.Item) bool { return p.Label == item.Label }
}

func setUpdateTarget(item *models.Item, peers []*models.Item, trigger func(*models.Item) bool) {
	for _, p := range peers {
		if trigger(p) {
			item.Status.Updatable = true
			item.UpdatableTargetID = p.ID
			return
		}
	}
}

func deepEqual(a, b any) bool { return reflect.DeepEqual(a, b) }

func visualization(item *models.Item) string {
	v, _ := item.Properties["visualization"].(string)
	return v
}

// withoutIdentity strips the engine identity and publish metadata blocks
// before comparing property payloads across documents.
func withoutIdentity(props map[string]any) map[string]any {
	out := engine.CloneProps(props)
	delete(out, "qInfo")
	delete(out, "qMeta")
	return out
}

// variableContent strips identity, metadata, and the script-created flag:
// imported variables are always created as non-script variables, so the flag
// must not produce spurious differences.
func variableContent(props map[string]any) map[string]any {
	out := withoutIdentity(props)
	delete(out, "qMetaDef")
	delete(out, "qIsScriptCreated")
	return out
}

// cellsEqual compares sheet cell layouts ignoring the per-cell object names,
// which are engine ids and not portable, and the collector's attached payload
// keys. Cell order is meaningful and compared as-is.
func cellsEqual(a, b map[string]any) bool {
	return deepEqual(cellsForCompare(a), cellsForCompare(b))
}

func cellsForCompare(props map[string]any) []any {
	cells, _ := props["cells"].([]any)
	out := make([]any, 0, len(cells))
	for _, c := range cells {
		cell, ok := c.(map[string]any)
		if !ok {
			out = append(out, c)
			continue
		}
		clone := engine.CloneProps(cell)
		delete(clone, "name")
		delete(clone, "properties")
		delete(clone, "propertyTree")
		out = append(out, clone)
	}
	return out
}
