package collect

import (
	"context"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
)

type stateCollector struct{}

func (stateCollector) Type() models.ObjectType { return models.TypeAlternateState }

// Fetch maps the document's declared alternate-state names to items. States
// have no engine id and no content beyond the name; the name is the id.
func (stateCollector) Fetch(ctx context.Context, doc engine.Doc, opts Options) ([]*models.Item, error) {
	layout, err := doc.GetAppLayout(ctx)
	if err != nil {
		return nil, fmt.Errorf("app layout: %w", err)
	}

	items := make([]*models.Item, 0, len(layout.StateNames))
	for _, name := range layout.StateNames {
		items = append(items, &models.Item{
			ID:    name,
			Type:  models.TypeAlternateState,
			Label: name,
		})
	}
	sortByLabel(items)
	return items, nil
}
