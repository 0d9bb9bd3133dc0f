package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sirupsen/logrus"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/importer"
	"github.com/bi-tools/appcopy/pkg/models"
)

// Report summarizes one batch operation.
type Report struct {
	Type     models.ObjectType
	Imported int
	Updated  int
	Failed   int
	Skipped  int
}

func (r *Report) String() string {
	return fmt.Sprintf("%s: %d imported, %d updated, %d failed, %d skipped",
		r.Type, r.Imported, r.Updated, r.Failed, r.Skipped)
}

func (s *Service) operationContext(res *LoadResult) *importer.Context {
	return &importer.Context{
		Source: res.Source,
		Dest:   res.Dest,
		Log:    s.Log.WithField("batch", res.BatchID),
	}
}

// ImportItems imports the given items of one type, or all of them when ids
// is empty. The batch runs strictly sequentially and individual failures
// never abort it.
func (s *Service) ImportItems(ctx context.Context, res *LoadResult, t models.ObjectType, ids []string) (*Report, error) {
	items, err := selectItems(res, t, ids)
	if err != nil {
		return nil, err
	}

	exec := &importer.Executor{Log: s.Log.WithField("batch", res.BatchID)}
	ic := s.operationContext(res)
	err = importer.RunBatch(ctx, items, func(ctx context.Context, item *models.Item) {
		exec.ImportItem(ctx, ic, item)
	})
	if err != nil {
		return nil, err
	}
	return tally(t, items), nil
}

// UpdateItems updates the given items of one type onto their reconciled
// destination targets.
func (s *Service) UpdateItems(ctx context.Context, res *LoadResult, t models.ObjectType, ids []string) (*Report, error) {
	items, err := selectItems(res, t, ids)
	if err != nil {
		return nil, err
	}

	exec := &importer.Executor{Log: s.Log.WithField("batch", res.BatchID)}
	ic := s.operationContext(res)
	err = importer.RunBatch(ctx, items, func(ctx context.Context, item *models.Item) {
		exec.UpdateItem(ctx, ic, item)
	})
	if err != nil {
		return nil, err
	}
	return tally(t, items), nil
}

func selectItems(res *LoadResult, t models.ObjectType, ids []string) ([]*models.Item, error) {
	items := res.Items[t]
	if len(items) == 0 {
		if err, failed := res.TypeErrors[t]; failed {
			return nil, fmt.Errorf("%s items unavailable: %w", t, err)
		}
	}
	if len(ids) == 0 {
		return items, nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	matched := 0
	for _, item := range items {
		if wanted[item.ID] {
			item.Status.Selected = true
			matched++
		}
	}
	if matched == 0 {
		return nil, fmt.Errorf("no %s items match the given ids: %w", t, engine.ErrNotFound)
	}
	return items, nil
}

func tally(t models.ObjectType, items []*models.Item) *Report {
	r := &Report{Type: t}
	for _, item := range importer.Selection(items) {
		switch {
		case item.Status.Imported:
			r.Imported++
		case item.Status.Updated:
			r.Updated++
		case item.Status.ImportFailed || item.Status.UpdateFailed:
			r.Failed++
		default:
			r.Skipped++
		}
	}
	return r
}

// DiffItem renders a unified diff between a source item's content and its
// reconciled destination target.
func (s *Service) DiffItem(res *LoadResult, t models.ObjectType, id string) (string, error) {
	item, err := res.Find(t, id)
	if err != nil {
		return "", err
	}
	if item.UpdatableTargetID == "" {
		return "", fmt.Errorf("%s %q has no update target", t, item.Label)
	}

	var target *models.Item
	for _, p := range res.DestItems[t] {
		if p.ID == item.UpdatableTargetID {
			target = p
			break
		}
	}
	if target == nil {
		return "", fmt.Errorf("update target %s: %w", item.UpdatableTargetID, engine.ErrNotFound)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(itemContent(target)),
		B:        difflib.SplitLines(itemContent(item)),
		FromFile: "destination",
		ToFile:   "source",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("render diff: %w", err)
	}
	if text == "" {
		s.Log.WithFields(logrus.Fields{"type": t, "id": id}).Debug("diff is empty")
	}
	return text, nil
}

// itemContent renders the comparable content of an item as text, matching
// the per-type fields the reconciler compares.
func itemContent(item *models.Item) string {
	switch item.Type {
	case models.TypeScript:
		return item.ScriptBody()
	case models.TypeDimension:
		return jsonText(item.Properties["qDim"])
	case models.TypeMeasure:
		return jsonText(item.Properties["qMeasure"])
	case models.TypeVariable:
		return jsonText(item.Properties["qDefinition"])
	case models.TypeSheet:
		return jsonText(item.Properties["cells"])
	default:
		props := engine.CloneProps(item.Properties)
		delete(props, "qInfo")
		delete(props, "qMeta")
		return jsonText(props)
	}
}

func jsonText(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data) + "\n"
}
