package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bi-tools/appcopy/pkg/models"
	"github.com/bi-tools/appcopy/pkg/service"
)

func NewListCmd(svc **service.Service) *cobra.Command {
	var (
		listType   string
		listFilter string
		listJSON   bool
		listYAML   bool
	)

	cmd := &cobra.Command{
		Use:   "list <source> [dest]",
		Short: "List copyable objects in a document",
		Long: `List the copyable objects of a source document.

When a destination document is given, every object is classified against
it and the status column shows whether it already exists there, can be
imported, or can update an existing counterpart.

Examples:
  appcopy list sales.qvf
  appcopy list sales.qvf dashboard.qvf
  appcopy list sales.qvf dashboard.qvf --type measure
  appcopy list sales.qvf --filter margin`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := *svc

			source := args[0]
			dest := source
			withStatus := false
			if len(args) == 2 {
				dest = args[1]
				withStatus = true
			}

			res, err := s.LoadApp(ctx, source, dest)
			if err != nil {
				return err
			}
			defer res.Close()
			warnTypeErrors(res.TypeErrors)

			types := models.AllTypes()
			if listType != "" {
				t, ok := models.ParseType(listType)
				if !ok {
					return fmt.Errorf("unknown object type %q", listType)
				}
				types = []models.ObjectType{t}
			}

			var items []*models.Item
			for _, t := range types {
				subset, err := res.Filter(listFilter, t)
				if err != nil {
					return fmt.Errorf("filter %s items: %w", t, err)
				}
				items = append(items, subset...)
			}

			switch {
			case listJSON:
				return outputJSON(items)
			case listYAML:
				return outputYAML(items)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			if withStatus {
				fmt.Fprintln(w, "TYPE\tID\tLABEL\tSTATUS\tWARNINGS")
			} else {
				fmt.Fprintln(w, "TYPE\tID\tLABEL\tWARNINGS")
			}
			for _, item := range items {
				warnings := "-"
				if len(item.Warnings) > 0 {
					warnings = strings.Join(item.Warnings, "; ")
				}
				if withStatus {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						item.Type, item.ID, item.Label, statusText(item.Status), warnings)
				} else {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.Type, item.ID, item.Label, warnings)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&listType, "type", "t", "", "Only list one object type")
	cmd.Flags().StringVarP(&listFilter, "filter", "f", "", "Filter items by full-text search")
	cmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&listYAML, "yaml", false, "Output as YAML")

	return cmd
}
