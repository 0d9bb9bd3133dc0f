package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bi-tools/appcopy/pkg/service"
)

func NewAppsCmd(svc **service.Service) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List documents available on the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := *svc

			global, err := s.Global(ctx)
			if err != nil {
				return err
			}
			docs, err := global.DocList(ctx)
			if err != nil {
				return fmt.Errorf("list documents: %w", err)
			}

			if jsonOutput {
				return outputJSON(docs)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTITLE")
			for _, doc := range docs {
				title := doc.Title
				if title == "" {
					title = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", doc.ID, doc.Name, title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
