package importer

import (
	"context"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/models"
)

type stateImporter struct{}

// Add declares the alternate state in the destination. Adding a name that
// already exists resolves successfully without touching the document.
func (stateImporter) Add(ctx context.Context, ic *Context, item *models.Item) error {
	layout, err := ic.Dest.GetAppLayout(ctx)
	if err != nil {
		return fmt.Errorf("destination layout: %w", err)
	}
	for _, s := range layout.StateNames {
		if s == item.Label {
			return nil
		}
	}
	if err := ic.Dest.AddAlternateState(ctx, item.Label); err != nil {
		return fmt.Errorf("add alternate state %q: %w", item.Label, err)
	}
	return nil
}

// Update has no meaning for states: a state is only its name.
func (stateImporter) Update(ctx context.Context, ic *Context, item *models.Item) (bool, error) {
	return false, fmt.Errorf("alternate state %q has no update path", item.Label)
}
