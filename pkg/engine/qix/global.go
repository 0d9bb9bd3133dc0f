package qix

import (
	"context"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/engine"
)

// globalHandle is the engine's fixed handle for root-level methods.
const globalHandle = -1

// Global adapts a session's root handle to the engine.Global contract.
type Global struct {
	s *Session
}

func NewGlobal(s *Session) *Global { return &Global{s: s} }

// Session exposes the underlying connection so callers can close it.
func (g *Global) Session() *Session { return g.s }

func (g *Global) OpenDoc(ctx context.Context, id string, withoutData bool) (engine.Doc, error) {
	var res struct {
		Return objRef `json:"qReturn"`
	}
	params := map[string]any{"qDocName": id, "qNoData": withoutData}
	if err := g.s.Call(ctx, globalHandle, "OpenDoc", params, &res); err != nil {
		return nil, err
	}
	if res.Return.Handle == 0 {
		return nil, fmt.Errorf("document %q: %w", id, engine.ErrNotFound)
	}
	docID := res.Return.GenericID
	if docID == "" {
		docID = id
	}
	return &Doc{s: g.s, handle: res.Return.Handle, id: docID}, nil
}

func (g *Global) DocList(ctx context.Context) ([]engine.DocEntry, error) {
	var res struct {
		DocList []engine.DocEntry `json:"qDocList"`
	}
	if err := g.s.Call(ctx, globalHandle, "GetDocList", nil, &res); err != nil {
		return nil, err
	}
	return res.DocList, nil
}

func (g *Global) EngineVersion(ctx context.Context) (string, error) {
	var res struct {
		Version struct {
			ComponentVersion string `json:"qComponentVersion"`
		} `json:"qVersion"`
	}
	if err := g.s.Call(ctx, globalHandle, "EngineVersion", nil, &res); err != nil {
		return "", err
	}
	return res.Version.ComponentVersion, nil
}

func (g *Global) IsDesktopMode(ctx context.Context) (bool, error) {
	var res struct {
		Features struct {
			IsDesktop bool `json:"qIsDesktop"`
		} `json:"qFeatures"`
	}
	if err := g.s.Call(ctx, globalHandle, "GetConfiguration", nil, &res); err != nil {
		return false, err
	}
	return res.Features.IsDesktop, nil
}
