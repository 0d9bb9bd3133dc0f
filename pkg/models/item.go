package models

import (
	"sort"
	"strings"
)

// ObjectType identifies the kind of importable object an Item wraps.
type ObjectType string

const (
	TypeScript         ObjectType = "script"
	TypeSheet          ObjectType = "sheet"
	TypeDimension      ObjectType = "dimension"
	TypeMeasure        ObjectType = "measure"
	TypeMasterObject   ObjectType = "masterObject"
	TypeAlternateState ObjectType = "alternate-state"
	TypeVariable       ObjectType = "variable"
	TypeBookmark       ObjectType = "bookmark"
)

// AllTypes lists every object type in collection order.
func AllTypes() []ObjectType {
	return []ObjectType{
		TypeScript,
		TypeSheet,
		TypeDimension,
		TypeMeasure,
		TypeMasterObject,
		TypeAlternateState,
		TypeVariable,
		TypeBookmark,
	}
}

// ParseType maps a user-supplied string to an ObjectType.
func ParseType(s string) (ObjectType, bool) {
	for _, t := range AllTypes() {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	// Common aliases used on the command line.
	switch strings.ToLower(s) {
	case "object", "visualization", "viz":
		return TypeMasterObject, true
	case "state":
		return TypeAlternateState, true
	}
	return "", false
}

// Detail is one labeled descriptive field shown when previewing an item.
// Code marks values that should render monospaced (expressions, definitions).
type Detail struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
	Code  bool   `json:"code,omitempty"`
}

// Status carries the per-item reconciliation and operation flags. The flags
// are independent: an item can be exists, importable, and updatable at once.
// Terminal flags (Imported, ImportFailed, Updated, UpdateFailed) are never
// reset within a session.
type Status struct {
	Selected     bool `json:"selected,omitempty"`
	Exists       bool `json:"exists,omitempty"`
	Importable   bool `json:"importable,omitempty"`
	Importing    bool `json:"importing,omitempty"`
	Imported     bool `json:"imported,omitempty"`
	ImportFailed bool `json:"importFailed,omitempty"`
	Updatable    bool `json:"updatable,omitempty"`
	Updating     bool `json:"updating,omitempty"`
	Updated      bool `json:"updated,omitempty"`
	UpdateFailed bool `json:"updateFailed,omitempty"`
}

// ImportDone reports whether the import operation has reached a terminal
// outcome for this item.
func (s Status) ImportDone() bool {
	return s.Imported || s.ImportFailed
}

// UpdateDone reports whether the update operation has reached a terminal
// outcome for this item.
func (s Status) UpdateDone() bool {
	return s.Updated || s.UpdateFailed
}

// Processed reports whether any operation already ran to completion, used by
// the batch runner to skip items.
func (s Status) Processed() bool {
	return s.ImportDone() || s.UpdateDone()
}

// Item is the uniform unit of exchange produced by every collector. Items are
// built fresh on every load; nothing persists across sessions.
type Item struct {
	// ID is the engine-assigned identifier. Alternate states carry the state
	// name itself; script sections get a synthetic positional id.
	ID string `json:"id"`

	// Type is set once by the collector that produced the item.
	Type ObjectType `json:"type"`

	// Label is the display title: object title, variable name, state name, or
	// script section label.
	Label string `json:"label"`

	// Properties is the type-specific payload used to recreate or update the
	// object. For script items it is a synthetic {tab, script} pair; for
	// alternate states it is nil (the name is the whole content).
	Properties map[string]any `json:"properties,omitempty"`

	// Details are descriptive fields for preview only; they never take part in
	// identity comparisons.
	Details []Detail `json:"details,omitempty"`

	// SearchTerms is a derived free-text set (tags plus definition text) used
	// for filtering. Order is irrelevant.
	SearchTerms []string `json:"searchTerms,omitempty"`

	// Warnings holds non-fatal findings, e.g. bookmark selections referencing
	// fields that no longer exist. They do not affect importability.
	Warnings []string `json:"warnings,omitempty"`

	Status Status `json:"status"`

	// UpdatableTargetID is the destination object this item would update, or
	// empty when no update target was found.
	UpdatableTargetID string `json:"updatableTargetId,omitempty"`
}

// ScriptTab returns the tab title of a script item.
func (it *Item) ScriptTab() string {
	s, _ := it.Properties["tab"].(string)
	return s
}

// ScriptBody returns the section body of a script item.
func (it *Item) ScriptBody() string {
	s, _ := it.Properties["script"].(string)
	return s
}

// SearchBlob joins the item's search terms and label into one lowercase blob
// for substring filtering.
func (it *Item) SearchBlob() string {
	parts := append([]string{it.Label}, it.SearchTerms...)
	return strings.ToLower(strings.Join(parts, " "))
}

// SameSearchTerms compares search terms with set semantics.
func SameSearchTerms(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
