package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bi-tools/appcopy/pkg/models"
)

func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal to YAML: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

// statusText renders an item's status flags as a compact comma list.
func statusText(s models.Status) string {
	var parts []string
	if s.Exists {
		parts = append(parts, "exists")
	}
	if s.Importable {
		parts = append(parts, "importable")
	}
	if s.Updatable {
		parts = append(parts, "updatable")
	}
	if s.Imported {
		parts = append(parts, "imported")
	}
	if s.ImportFailed {
		parts = append(parts, "import-failed")
	}
	if s.Updated {
		parts = append(parts, "updated")
	}
	if s.UpdateFailed {
		parts = append(parts, "update-failed")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func warnTypeErrors(errs map[models.ObjectType]error) {
	for t, err := range errs {
		fmt.Fprintf(os.Stderr, "warning: %s items could not be loaded: %v\n", t, err)
	}
}
