package qix

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/engine"
)

// listSpec describes how one list type maps onto a session object: the
// definition to create it with and the layout key its rows come back under.
type listSpec struct {
	objType   string
	defKey    string
	def       map[string]any
	layoutKey string
}

var listSpecs = map[string]listSpec{
	engine.SheetList: {
		objType: "SheetList",
		defKey:  "qAppObjectListDef",
		def: map[string]any{
			"qType": "sheet",
			"qData": map[string]any{"title": "/qMetaDef/title", "rank": "/rank"},
		},
		layoutKey: "qAppObjectList",
	},
	engine.MasterObjectList: {
		objType: "MasterObjectList",
		defKey:  "qAppObjectListDef",
		def: map[string]any{
			"qType": "masterobject",
			"qData": map[string]any{"title": "/qMetaDef/title", "visualization": "/visualization"},
		},
		layoutKey: "qAppObjectList",
	},
	engine.DimensionList: {
		objType: "DimensionList",
		defKey:  "qDimensionListDef",
		def: map[string]any{
			"qType": "dimension",
			"qData": map[string]any{"title": "/qMetaDef/title", "tags": "/qMetaDef/tags"},
		},
		layoutKey: "qDimensionList",
	},
	engine.MeasureList: {
		objType: "MeasureList",
		defKey:  "qMeasureListDef",
		def: map[string]any{
			"qType": "measure",
			"qData": map[string]any{"title": "/qMetaDef/title", "tags": "/qMetaDef/tags"},
		},
		layoutKey: "qMeasureList",
	},
	engine.VariableList: {
		objType: "VariableList",
		defKey:  "qVariableListDef",
		def: map[string]any{
			"qType":         "variable",
			"qShowReserved": false,
			"qShowConfig":   false,
			"qData":         map[string]any{"name": "/qName", "definition": "/qDefinition"},
		},
		layoutKey: "qVariableList",
	},
	engine.BookmarkList: {
		objType: "BookmarkList",
		defKey:  "qBookmarkListDef",
		def: map[string]any{
			"qData": map[string]any{"title": "/qMetaDef/title"},
		},
		layoutKey: "qBookmarkList",
	},
}

// sessionList reads its rows once at creation and keeps only the session
// object id so Close can release the engine-side subscription.
type sessionList struct {
	doc     *Doc
	id      string
	entries []engine.ListEntry
}

func (l *sessionList) Items() []engine.ListEntry { return l.entries }

func (l *sessionList) Close(ctx context.Context) error {
	return l.doc.destroySessionObject(ctx, l.id)
}

func (d *Doc) GetList(ctx context.Context, listType string) (engine.List, error) {
	spec, ok := listSpecs[listType]
	if !ok {
		return nil, fmt.Errorf("list %q: %w", listType, engine.ErrUnsupported)
	}

	props := map[string]any{
		"qInfo":   map[string]any{"qType": spec.objType},
		spec.defKey: spec.def,
	}
	obj, err := d.createSessionObject(ctx, props)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", listType, err)
	}

	layout, err := obj.GetLayout(ctx)
	if err != nil {
		_ = d.destroySessionObject(context.WithoutCancel(ctx), obj.info.ID)
		return nil, fmt.Errorf("%s layout: %w", listType, err)
	}
	entries, err := decodeListEntries(layout, spec.layoutKey)
	if err != nil {
		_ = d.destroySessionObject(context.WithoutCancel(ctx), obj.info.ID)
		return nil, fmt.Errorf("decode %s: %w", listType, err)
	}
	return &sessionList{doc: d, id: obj.info.ID, entries: entries}, nil
}

func decodeListEntries(layout map[string]any, key string) ([]engine.ListEntry, error) {
	section, _ := layout[key].(map[string]any)
	raw, err := json.Marshal(section["qItems"])
	if err != nil {
		return nil, err
	}
	var entries []engine.ListEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
