// Package enginetest provides an in-memory engine implementation for tests.
// It honors the same contracts a live engine does: unique-name rejection for
// variables and alternate states, list handles that must be closed, and
// per-kind object stores in insertion order.
package enginetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bi-tools/appcopy/pkg/engine"
)

// Global is a fake engine root holding documents by id.
type Global struct {
	mu        sync.Mutex
	docs      map[string]*Doc
	OpenCalls map[string]int
	// OpenDelay simulates a slow engine open round-trip.
	OpenDelay time.Duration
	Desktop   bool
	Version   string
}

func NewGlobal() *Global {
	return &Global{
		docs:      make(map[string]*Doc),
		OpenCalls: make(map[string]int),
		Version:   "12.1518.0",
	}
}

func (g *Global) AddDoc(doc *Doc) *Doc {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.docs[doc.DocID] = doc
	return doc
}

func (g *Global) OpenDoc(ctx context.Context, id string, withoutData bool) (engine.Doc, error) {
	g.mu.Lock()
	g.OpenCalls[id]++
	doc, ok := g.docs[id]
	delay := g.OpenDelay
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, fmt.Errorf("document %q: %w", id, engine.ErrNotFound)
	}
	return doc, nil
}

func (g *Global) DocList(ctx context.Context) ([]engine.DocEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []engine.DocEntry
	for id, doc := range g.docs {
		out = append(out, engine.DocEntry{ID: id, Name: doc.Title})
	}
	return out, nil
}

func (g *Global) EngineVersion(ctx context.Context) (string, error) { return g.Version, nil }

func (g *Global) IsDesktopMode(ctx context.Context) (bool, error) { return g.Desktop, nil }

// Object is one fake engine object.
type Object struct {
	doc     *Doc
	ObjInfo engine.ObjectInfo
	Props   map[string]any
	// Meta is exposed through GetLayout as the qMeta block.
	Meta map[string]any
	Tree *engine.PropertyTree
}

func (o *Object) Info() engine.ObjectInfo { return o.ObjInfo }

func (o *Object) GetProperties(ctx context.Context) (map[string]any, error) {
	o.doc.mu.Lock()
	defer o.doc.mu.Unlock()
	return engine.CloneProps(o.Props), nil
}

func (o *Object) SetProperties(ctx context.Context, props map[string]any) error {
	o.doc.mu.Lock()
	defer o.doc.mu.Unlock()
	o.Props = engine.CloneProps(props)
	return nil
}

func (o *Object) GetLayout(ctx context.Context) (map[string]any, error) {
	o.doc.mu.Lock()
	defer o.doc.mu.Unlock()
	layout := engine.CloneProps(o.Props)
	if o.Meta != nil {
		layout["qMeta"] = engine.CloneProps(o.Meta)
	}
	return layout, nil
}

func (o *Object) GetFullPropertyTree(ctx context.Context) (*engine.PropertyTree, error) {
	o.doc.mu.Lock()
	defer o.doc.mu.Unlock()
	if o.Tree != nil {
		return cloneTree(o.Tree), nil
	}
	return &engine.PropertyTree{Property: engine.CloneProps(o.Props)}, nil
}

func (o *Object) SetFullPropertyTree(ctx context.Context, tree *engine.PropertyTree) error {
	o.doc.mu.Lock()
	defer o.doc.mu.Unlock()
	o.Tree = cloneTree(tree)
	if tree.Property != nil {
		o.Props = engine.CloneProps(tree.Property)
	}
	return nil
}

func cloneTree(t *engine.PropertyTree) *engine.PropertyTree {
	if t == nil {
		return nil
	}
	out := &engine.PropertyTree{Property: engine.CloneProps(t.Property)}
	for _, c := range t.Children {
		out.Children = append(out.Children, cloneTree(c))
	}
	return out
}

// Doc is a fake open document.
type Doc struct {
	mu    sync.Mutex
	DocID string
	Title string

	Script string
	States []string
	Fields []string
	// SetExprs maps "state/bookmarkID" to a set-analysis expression.
	SetExprs map[string]string
	// BadExprs forces CheckExpression findings for specific expressions.
	BadExprs map[string]*engine.ExpressionCheck
	// ListErrs forces GetList failures per list type.
	ListErrs map[string]error

	kinds map[string][]*Object
	byID  map[string]*Object

	// OpenLists counts list handles not yet closed.
	OpenLists int
	nextID    int
}

func NewDoc(id string) *Doc {
	return &Doc{
		DocID:    id,
		Title:    id,
		SetExprs: make(map[string]string),
		kinds:    make(map[string][]*Object),
		byID:     make(map[string]*Object),
	}
}

func (d *Doc) ID() string { return d.DocID }

// Add registers an object under a list kind (engine.SheetList etc.).
func (d *Doc) Add(kind, id string, props map[string]any) *Object {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.add(kind, id, props)
}

func (d *Doc) add(kind, id string, props map[string]any) *Object {
	if id == "" {
		d.nextID++
		id = fmt.Sprintf("%s-%d", kind, d.nextID)
	}
	props = engine.CloneProps(props)
	if props == nil {
		props = map[string]any{}
	}
	engine.SetObjectID(props, id)
	obj := &Object{
		doc:     d,
		ObjInfo: engine.ObjectInfo{ID: id, Type: kind},
		Props:   props,
	}
	d.kinds[kind] = append(d.kinds[kind], obj)
	d.byID[id] = obj
	return obj
}

// Objects returns the document's objects of one kind in insertion order.
func (d *Doc) Objects(kind string) []*Object {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Object(nil), d.kinds[kind]...)
}

func (d *Doc) GetList(ctx context.Context, listType string) (engine.List, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ListErrs[listType]; err != nil {
		return nil, err
	}
	var entries []engine.ListEntry
	for _, obj := range d.kinds[listType] {
		entries = append(entries, engine.ListEntry{
			Info: obj.ObjInfo,
			Meta: engine.CloneProps(obj.Meta),
			Data: listData(listType, obj),
		})
	}
	d.OpenLists++
	return &fakeList{doc: d, entries: entries}, nil
}

func listData(listType string, obj *Object) map[string]any {
	data := map[string]any{}
	if meta, ok := obj.Props["qMetaDef"].(map[string]any); ok {
		if title, ok := meta["title"].(string); ok {
			data["title"] = title
		}
	}
	switch listType {
	case engine.SheetList:
		if rank, ok := obj.Props["rank"]; ok {
			data["rank"] = rank
		}
	case engine.MasterObjectList:
		if vis, ok := obj.Props["visualization"]; ok {
			data["visualization"] = vis
		}
	case engine.VariableList:
		if name, ok := obj.Props["qName"].(string); ok {
			data["name"] = name
		}
	}
	return data
}

type fakeList struct {
	doc     *Doc
	entries []engine.ListEntry
	closed  bool
}

func (l *fakeList) Items() []engine.ListEntry { return l.entries }

func (l *fakeList) Close(ctx context.Context) error {
	l.doc.mu.Lock()
	defer l.doc.mu.Unlock()
	if !l.closed {
		l.closed = true
		l.doc.OpenLists--
	}
	return nil
}

func (d *Doc) GetAppLayout(ctx context.Context) (*engine.AppLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return &engine.AppLayout{
		Title:      d.Title,
		StateNames: append([]string(nil), d.States...),
	}, nil
}

func (d *Doc) GetScript(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Script, nil
}

func (d *Doc) SetScript(ctx context.Context, script string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Script = script
	return nil
}

func (d *Doc) getByID(id string) (*Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	obj, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("object %q: %w", id, engine.ErrNotFound)
	}
	return obj, nil
}

func (d *Doc) GetObject(ctx context.Context, id string) (engine.Object, error) {
	return d.getByID(id)
}

func (d *Doc) GetDimension(ctx context.Context, id string) (engine.Object, error) {
	return d.getByID(id)
}

func (d *Doc) GetMeasure(ctx context.Context, id string) (engine.Object, error) {
	return d.getByID(id)
}

func (d *Doc) GetBookmark(ctx context.Context, id string) (engine.Object, error) {
	return d.getByID(id)
}

func (d *Doc) GetVariableByID(ctx context.Context, id string) (engine.Object, error) {
	return d.getByID(id)
}

func (d *Doc) GetVariableByName(ctx context.Context, name string) (engine.Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, obj := range d.kinds[engine.VariableList] {
		if n, _ := obj.Props["qName"].(string); n == name {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("variable %q: %w", name, engine.ErrNotFound)
}

func (d *Doc) CreateObject(ctx context.Context, props map[string]any) (engine.Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kind := engine.MasterObjectList
	if info, ok := props["qInfo"].(map[string]any); ok {
		if t, _ := info["qType"].(string); t == "sheet" {
			kind = engine.SheetList
		}
	}
	return d.add(kind, "", props), nil
}

func (d *Doc) CreateDimension(ctx context.Context, props map[string]any) (engine.Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.add(engine.DimensionList, "", props), nil
}

func (d *Doc) CreateMeasure(ctx context.Context, props map[string]any) (engine.Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.add(engine.MeasureList, "", props), nil
}

func (d *Doc) CreateVariable(ctx context.Context, props map[string]any) (engine.Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, _ := props["qName"].(string)
	for _, obj := range d.kinds[engine.VariableList] {
		if n, _ := obj.Props["qName"].(string); n == name {
			return nil, fmt.Errorf("variable %q: %w", name, engine.ErrConflict)
		}
	}
	return d.add(engine.VariableList, "", props), nil
}

func (d *Doc) AddAlternateState(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.States {
		if s == name {
			return fmt.Errorf("alternate state %q: %w", name, engine.ErrConflict)
		}
	}
	d.States = append(d.States, name)
	return nil
}

func (d *Doc) CheckExpression(ctx context.Context, expr string) (*engine.ExpressionCheck, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if check, ok := d.BadExprs[expr]; ok {
		return check, nil
	}
	return &engine.ExpressionCheck{}, nil
}

func (d *Doc) GetSetAnalysis(ctx context.Context, stateName, bookmarkID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.SetExprs[stateName+"/"+bookmarkID], nil
}

func (d *Doc) GetFieldNames(ctx context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.Fields...), nil
}
