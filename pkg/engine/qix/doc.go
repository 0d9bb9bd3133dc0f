package qix

import (
	"context"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/engine"
)

// Doc is an open document handle on a session.
type Doc struct {
	s      *Session
	handle int
	id     string
}

func (d *Doc) ID() string { return d.id }

// getHandle runs a method that returns an object reference and wraps it. A
// zero handle means the engine found nothing; the JSON-RPC layer reports
// that as a null return rather than an error.
func (d *Doc) getHandle(ctx context.Context, method string, params any) (engine.Object, error) {
	var res struct {
		Return objRef `json:"qReturn"`
	}
	if err := d.s.Call(ctx, d.handle, method, params, &res); err != nil {
		return nil, err
	}
	if res.Return.Handle == 0 {
		return nil, engine.ErrNotFound
	}
	return &Object{
		s:      d.s,
		handle: res.Return.Handle,
		info:   engine.ObjectInfo{ID: res.Return.GenericID, Type: res.Return.GenericType},
	}, nil
}

func (d *Doc) GetAppLayout(ctx context.Context) (*engine.AppLayout, error) {
	var res struct {
		Layout engine.AppLayout `json:"qLayout"`
	}
	if err := d.s.Call(ctx, d.handle, "GetAppLayout", nil, &res); err != nil {
		return nil, err
	}
	return &res.Layout, nil
}

func (d *Doc) GetScript(ctx context.Context) (string, error) {
	var res struct {
		Script string `json:"qScript"`
	}
	if err := d.s.Call(ctx, d.handle, "GetScript", nil, &res); err != nil {
		return "", err
	}
	return res.Script, nil
}

func (d *Doc) SetScript(ctx context.Context, script string) error {
	return d.s.Call(ctx, d.handle, "SetScript", map[string]any{"qScript": script}, nil)
}

func (d *Doc) GetObject(ctx context.Context, id string) (engine.Object, error) {
	return d.getHandle(ctx, "GetObject", map[string]any{"qId": id})
}

func (d *Doc) CreateObject(ctx context.Context, props map[string]any) (engine.Object, error) {
	return d.getHandle(ctx, "CreateObject", map[string]any{"qProp": props})
}

func (d *Doc) GetDimension(ctx context.Context, id string) (engine.Object, error) {
	return d.getHandle(ctx, "GetDimension", map[string]any{"qId": id})
}

func (d *Doc) CreateDimension(ctx context.Context, props map[string]any) (engine.Object, error) {
	return d.getHandle(ctx, "CreateDimension", map[string]any{"qProp": props})
}

func (d *Doc) GetMeasure(ctx context.Context, id string) (engine.Object, error) {
	return d.getHandle(ctx, "GetMeasure", map[string]any{"qId": id})
}

func (d *Doc) CreateMeasure(ctx context.Context, props map[string]any) (engine.Object, error) {
	return d.getHandle(ctx, "CreateMeasure", map[string]any{"qProp": props})
}

func (d *Doc) GetVariableByID(ctx context.Context, id string) (engine.Object, error) {
	return d.getHandle(ctx, "GetVariableById", map[string]any{"qId": id})
}

func (d *Doc) GetVariableByName(ctx context.Context, name string) (engine.Object, error) {
	return d.getHandle(ctx, "GetVariableByName", map[string]any{"qName": name})
}

func (d *Doc) CreateVariable(ctx context.Context, props map[string]any) (engine.Object, error) {
	return d.getHandle(ctx, "CreateVariableEx", map[string]any{"qProp": props})
}

func (d *Doc) GetBookmark(ctx context.Context, id string) (engine.Object, error) {
	return d.getHandle(ctx, "GetBookmark", map[string]any{"qId": id})
}

func (d *Doc) AddAlternateState(ctx context.Context, name string) error {
	return d.s.Call(ctx, d.handle, "AddAlternateState", map[string]any{"qStateName": name}, nil)
}

func (d *Doc) CheckExpression(ctx context.Context, expr string) (*engine.ExpressionCheck, error) {
	var res engine.ExpressionCheck
	if err := d.s.Call(ctx, d.handle, "CheckExpression", map[string]any{"qExpr": expr}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (d *Doc) GetSetAnalysis(ctx context.Context, stateName, bookmarkID string) (string, error) {
	var res struct {
		SetExpression string `json:"qSetExpression"`
	}
	params := map[string]any{"qStateName": stateName, "qBookmarkId": bookmarkID}
	if err := d.s.Call(ctx, d.handle, "GetSetAnalysis", params, &res); err != nil {
		return "", err
	}
	return res.SetExpression, nil
}

// GetFieldNames reads the document's field names through a transient field
// list session object.
func (d *Doc) GetFieldNames(ctx context.Context) ([]string, error) {
	props := map[string]any{
		"qInfo":         map[string]any{"qType": "FieldList"},
		"qFieldListDef": map[string]any{},
	}
	obj, err := d.createSessionObject(ctx, props)
	if err != nil {
		return nil, fmt.Errorf("field list: %w", err)
	}
	defer func() {
		_ = d.destroySessionObject(context.WithoutCancel(ctx), obj.info.ID)
	}()

	var res struct {
		Layout struct {
			FieldList struct {
				Items []struct {
					Name string `json:"qName"`
				} `json:"qItems"`
			} `json:"qFieldList"`
		} `json:"qLayout"`
	}
	if err := d.s.Call(ctx, obj.handle, "GetLayout", nil, &res); err != nil {
		return nil, fmt.Errorf("field list layout: %w", err)
	}
	names := make([]string, 0, len(res.Layout.FieldList.Items))
	for _, item := range res.Layout.FieldList.Items {
		names = append(names, item.Name)
	}
	return names, nil
}

func (d *Doc) createSessionObject(ctx context.Context, props map[string]any) (*Object, error) {
	var res struct {
		Return objRef `json:"qReturn"`
	}
	err := d.s.Call(ctx, d.handle, "CreateSessionObject", map[string]any{"qProp": props}, &res)
	if err != nil {
		return nil, err
	}
	return &Object{
		s:      d.s,
		handle: res.Return.Handle,
		info:   engine.ObjectInfo{ID: res.Return.GenericID, Type: res.Return.GenericType},
	}, nil
}

func (d *Doc) destroySessionObject(ctx context.Context, id string) error {
	return d.s.Call(ctx, d.handle, "DestroySessionObject", map[string]any{"qId": id}, nil)
}
