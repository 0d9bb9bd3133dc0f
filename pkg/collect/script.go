package collect

import (
	"context"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
)

type scriptCollector struct{}

func (scriptCollector) Type() models.ObjectType { return models.TypeScript }

// Fetch splits the document script into one item per tab. Items keep source
// order: the tab order is the execution order and must not be re-sorted.
func (scriptCollector) Fetch(ctx context.Context, doc engine.Doc, opts Options) ([]*models.Item, error) {
	script, err := doc.GetScript(ctx)
	if err != nil {
		return nil, fmt.Errorf("get script: %w", err)
	}

	sections := engine.SplitScript(script)
	items := make([]*models.Item, 0, len(sections))
	for i, s := range sections {
		label := s.Title
		if label == "" {
			label = fmt.Sprintf("Section %d", i+1)
		}
		item := &models.Item{
			ID:    fmt.Sprintf("section-%d", i+1),
			Type:  models.TypeScript,
			Label: label,
			// Synthetic proxy shape: the engine only knows one script blob,
			// so each section travels as a {tab, script} pair.
			Properties: map[string]any{
				"tab":    label,
				"script": s.Body,
			},
		}
		b := &detailBuilder{}
		b.addCode("script", "Script", s.Body)
		item.Details = b.details
		items = append(items, item)
	}
	return items, nil
}
