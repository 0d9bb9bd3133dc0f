package importer

import (
	"context"

	"github.com/bi-tools/appcopy/pkg/models"
)

// Operation is one per-item step of a batch, typically Executor.ImportItem
// or Executor.UpdateItem bound to a Context.
type Operation func(ctx context.Context, item *models.Item)

// RunBatch folds an operation over the items strictly sequentially: item N+1
// never starts before item N finishes. This keeps prerequisite imports ahead
// of their dependents and bounds the concurrent write load on the engine.
// Individual failures are isolated into each item's status flags; the batch
// never aborts for them. When any item is flagged selected, only the
// selected subset is processed.
func RunBatch(ctx context.Context, items []*models.Item, op Operation) error {
	for _, item := range Selection(items) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if item.Status.Processed() {
			continue
		}
		op(ctx, item)
	}
	return nil
}

// Selection returns the selected subset when any item is selected, otherwise
// all items.
func Selection(items []*models.Item) []*models.Item {
	var selected []*models.Item
	for _, item := range items {
		if item.Status.Selected {
			selected = append(selected, item)
		}
	}
	if len(selected) > 0 {
		return selected
	}
	return items
}
