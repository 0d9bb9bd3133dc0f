package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
)

type variableImporter struct{}

// Add creates the variable as a non-script variable: the script-created flag
// never travels across documents. The engine rejects duplicate names; that
// conflict surfaces as an import failure and is not retried.
func (variableImporter) Add(ctx context.Context, ic *Context, item *models.Item) error {
	props := engine.CloneProps(item.Properties)
	StripPublishMeta(props)
	engine.SetObjectID(props, "")
	delete(props, "qIsScriptCreated")

	if _, err := ic.Dest.CreateVariable(ctx, props); err != nil {
		return fmt.Errorf("create variable %q: %w", item.Label, err)
	}
	return nil
}

// Update resolves the destination variable by id when known, else by name.
// The destination's existing id and script-created flag are inherited onto
// the incoming properties. When no destination variable exists at all the
// update self-heals into an add.
func (v variableImporter) Update(ctx context.Context, ic *Context, item *models.Item) (bool, error) {
	obj, err := findVariable(ctx, ic.Dest, item.UpdatableTargetID, item.Label)
	if errors.Is(err, engine.ErrNotFound) {
		if err := v.Add(ctx, ic, item); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("variable target %q: %w", item.Label, err)
	}

	existing, err := obj.GetProperties(ctx)
	if err != nil {
		return false, fmt.Errorf("variable %q properties: %w", item.Label, err)
	}

	props := engine.CloneProps(item.Properties)
	StripPublishMeta(props)
	engine.SetObjectID(props, engine.ObjectID(existing))
	if scripted, ok := existing["qIsScriptCreated"]; ok {
		props["qIsScriptCreated"] = scripted
	} else {
		delete(props, "qIsScriptCreated")
	}

	if err := obj.SetProperties(ctx, props); err != nil {
		return false, fmt.Errorf("write variable %q: %w", item.Label, err)
	}
	return false, nil
}

func findVariable(ctx context.Context, dest engine.Doc, id, name string) (engine.Object, error) {
	if id != "" {
		obj, err := dest.GetVariableByID(ctx, id)
		if err == nil {
			return obj, nil
		}
		if !errors.Is(err, engine.ErrNotFound) {
			return nil, err
		}
	}
	return dest.GetVariableByName(ctx, name)
}
