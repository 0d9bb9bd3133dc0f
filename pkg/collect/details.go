package collect

import (
	"fmt"
	"strings"

	"github.com/bi-tools/appcopy/pkg/models"
)

// detailBuilder accumulates the preview fields shown for an item. Fields are
// appended in a fixed order and empty values are dropped.
type detailBuilder struct {
	details []models.Detail
}

func (b *detailBuilder) add(name, label, value string) {
	if value == "" {
		return
	}
	b.details = append(b.details, models.Detail{Name: name, Label: label, Value: value})
}

func (b *detailBuilder) addCode(name, label, value string) {
	if value == "" {
		return
	}
	b.details = append(b.details, models.Detail{Name: name, Label: label, Value: value, Code: true})
}

// addMeta appends the engine's publish/runtime metadata fields from a layout
// qMeta block: timestamps, owner, publish and approval status.
func (b *detailBuilder) addMeta(layout map[string]any) {
	meta, _ := layout["qMeta"].(map[string]any)
	if meta == nil {
		return
	}
	b.add("description", "Description", stringField(meta, "description"))
	b.add("createdDate", "Created", stringField(meta, "createdDate"))
	b.add("modifiedDate", "Modified", stringField(meta, "modifiedDate"))
	b.add("owner", "Owner", ownerName(meta["owner"]))
	if published, ok := meta["published"].(bool); ok {
		b.add("published", "Published", yesNo(published))
	}
	if approved, ok := meta["approved"].(bool); ok {
		b.add("approved", "Approved", yesNo(approved))
	}
}

func (b *detailBuilder) addTags(tags []string) {
	b.add("tags", "Tags", strings.Join(tags, ", "))
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func ownerName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		// Server engines expose owner as a user object.
		name := stringField(t, "name")
		if name == "" {
			name = fmt.Sprintf("%s\\%s", stringField(t, "userDirectory"), stringField(t, "userId"))
		}
		return strings.Trim(name, "\\")
	}
	return ""
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
