// Package engine defines the contracts the import core needs from the host
// analytics engine. The engine owns all object storage and evaluation; this
// package only names the calls the collectors, reconciler, and importers
// depend on. A concrete websocket client lives in engine/qix and an in-memory
// fake for tests in engine/enginetest.
package engine

import "context"

// List type identifiers accepted by Doc.GetList.
const (
	SheetList        = "sheet"
	DimensionList    = "dimension"
	MeasureList      = "measure"
	MasterObjectList = "masterobject"
	VariableList     = "variable"
	BookmarkList     = "bookmark"
)

// ObjectInfo identifies an engine object.
type ObjectInfo struct {
	ID   string `json:"qId"`
	Type string `json:"qType"`
}

// ListEntry is one row of a session list: identity plus the engine's shallow
// metadata and per-type data payload.
type ListEntry struct {
	Info ObjectInfo     `json:"qInfo"`
	Meta map[string]any `json:"qMeta,omitempty"`
	Data map[string]any `json:"qData,omitempty"`
}

// List is a live session list handle. Callers must close it promptly after
// reading: an open list keeps an update subscription alive on the engine.
type List interface {
	Items() []ListEntry
	Close(ctx context.Context) error
}

// PropertyTree is an object's own properties plus the nested property trees
// of its child objects (sheets own their cells, filter panes own listboxes).
type PropertyTree struct {
	Property map[string]any  `json:"qProperty"`
	Children []*PropertyTree `json:"qChildren,omitempty"`
}

// Object is a handle to one engine object.
type Object interface {
	Info() ObjectInfo
	GetProperties(ctx context.Context) (map[string]any, error)
	SetProperties(ctx context.Context, props map[string]any) error
	GetLayout(ctx context.Context) (map[string]any, error)
	GetFullPropertyTree(ctx context.Context) (*PropertyTree, error)
	SetFullPropertyTree(ctx context.Context, tree *PropertyTree) error
}

// AppLayout is the subset of the document layout the core reads.
type AppLayout struct {
	Title      string   `json:"qTitle"`
	StateNames []string `json:"qStateNames"`
}

// ExpressionCheck is the engine's verdict on one expression.
type ExpressionCheck struct {
	ErrorMsg  string   `json:"qErrorMsg,omitempty"`
	BadFields []string `json:"qBadFieldNames,omitempty"`
}

// Doc is an open document handle.
type Doc interface {
	ID() string

	GetList(ctx context.Context, listType string) (List, error)
	GetAppLayout(ctx context.Context) (*AppLayout, error)

	GetScript(ctx context.Context) (string, error)
	SetScript(ctx context.Context, script string) error

	GetObject(ctx context.Context, id string) (Object, error)
	CreateObject(ctx context.Context, props map[string]any) (Object, error)
	GetDimension(ctx context.Context, id string) (Object, error)
	CreateDimension(ctx context.Context, props map[string]any) (Object, error)
	GetMeasure(ctx context.Context, id string) (Object, error)
	CreateMeasure(ctx context.Context, props map[string]any) (Object, error)
	GetVariableByID(ctx context.Context, id string) (Object, error)
	GetVariableByName(ctx context.Context, name string) (Object, error)
	CreateVariable(ctx context.Context, props map[string]any) (Object, error)
	GetBookmark(ctx context.Context, id string) (Object, error)

	AddAlternateState(ctx context.Context, name string) error

	CheckExpression(ctx context.Context, expr string) (*ExpressionCheck, error)
	GetSetAnalysis(ctx context.Context, stateName, bookmarkID string) (string, error)
	GetFieldNames(ctx context.Context) ([]string, error)
}

// DocEntry is one row of the engine's document list.
type DocEntry struct {
	ID    string `json:"qDocId"`
	Name  string `json:"qDocName"`
	Title string `json:"qTitle,omitempty"`
}

// Global is the engine's root handle.
type Global interface {
	// OpenDoc opens a document. withoutData skips loading the data payload,
	// which is all the import core ever needs from a source document.
	OpenDoc(ctx context.Context, id string, withoutData bool) (Doc, error)
	DocList(ctx context.Context) ([]DocEntry, error)
	EngineVersion(ctx context.Context) (string, error)
	// IsDesktopMode probes whether the engine runs as a local desktop instance
	// (per-file extension metadata) or a server (central registry).
	IsDesktopMode(ctx context.Context) (bool, error)
}
