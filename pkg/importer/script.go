package importer

import (
	"context"
	"fmt"

	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/models"
)

type scriptImporter struct{}

// Add appends the section to the end of the destination script. A tab title
// colliding with an existing tab gets " (n)" appended, with the smallest n
// that is still unique.
func (scriptImporter) Add(ctx context.Context, ic *Context, item *models.Item) error {
	script, err := ic.Dest.GetScript(ctx)
	if err != nil {
		return fmt.Errorf("get destination script: %w", err)
	}

	taken := map[string]bool{}
	for _, s := range engine.SplitScript(script) {
		taken[s.Title] = true
	}
	title := uniqueTabTitle(item.ScriptTab(), taken)

	script = engine.AppendSection(script, title, item.ScriptBody())
	if err := ic.Dest.SetScript(ctx, script); err != nil {
		return fmt.Errorf("set destination script: %w", err)
	}
	return nil
}

// Update rewrites the destination section whose tab title exactly matches,
// preserving every other section and their order. There is no fallback
// creation: a missing section is a failure.
func (scriptImporter) Update(ctx context.Context, ic *Context, item *models.Item) (bool, error) {
	script, err := ic.Dest.GetScript(ctx)
	if err != nil {
		return false, fmt.Errorf("get destination script: %w", err)
	}

	sections := engine.SplitScript(script)
	replaced := false
	for i := range sections {
		if sections[i].Title == item.ScriptTab() {
			sections[i].Body = item.ScriptBody()
			replaced = true
			break
		}
	}
	if !replaced {
		return false, fmt.Errorf("script section %q: %w", item.ScriptTab(), engine.ErrNotFound)
	}

	if err := ic.Dest.SetScript(ctx, engine.JoinScript(sections)); err != nil {
		return false, fmt.Errorf("set destination script: %w", err)
	}
	return false, nil
}

func uniqueTabTitle(title string, taken map[string]bool) string {
	if !taken[title] {
		return title
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", title, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
