package qix

import (
	"context"

	"github.com/bi-tools/appcopy/pkg/engine"
)

// Object is a live handle to one engine object.
type Object struct {
	s      *Session
	handle int
	info   engine.ObjectInfo
}

func (o *Object) Info() engine.ObjectInfo { return o.info }

func (o *Object) GetProperties(ctx context.Context) (map[string]any, error) {
	var res struct {
		Prop map[string]any `json:"qProp"`
	}
	if err := o.s.Call(ctx, o.handle, "GetProperties", nil, &res); err != nil {
		return nil, err
	}
	return res.Prop, nil
}

func (o *Object) SetProperties(ctx context.Context, props map[string]any) error {
	return o.s.Call(ctx, o.handle, "SetProperties", map[string]any{"qProp": props}, nil)
}

func (o *Object) GetLayout(ctx context.Context) (map[string]any, error) {
	var res struct {
		Layout map[string]any `json:"qLayout"`
	}
	if err := o.s.Call(ctx, o.handle, "GetLayout", nil, &res); err != nil {
		return nil, err
	}
	return res.Layout, nil
}

func (o *Object) GetFullPropertyTree(ctx context.Context) (*engine.PropertyTree, error) {
	var res struct {
		PropEntry *engine.PropertyTree `json:"qPropEntry"`
	}
	if err := o.s.Call(ctx, o.handle, "GetFullPropertyTree", nil, &res); err != nil {
		return nil, err
	}
	return res.PropEntry, nil
}

func (o *Object) SetFullPropertyTree(ctx context.Context, tree *engine.PropertyTree) error {
	return o.s.Call(ctx, o.handle, "SetFullPropertyTree", map[string]any{"qPropEntry": tree}, nil)
}
