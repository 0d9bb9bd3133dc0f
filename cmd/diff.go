package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bi-tools/appcopy/pkg/models"
	"github.com/bi-tools/appcopy/pkg/service"
)

func NewDiffCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <source> <dest> <type> <id>",
		Short: "Show what an update would change",
		Long: `Show a unified diff between a source item and the destination object
it would update.

Examples:
  appcopy diff sales.qvf dashboard.qvf script section-1
  appcopy diff sales.qvf dashboard.qvf measure mRevenue`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := *svc

			t, ok := models.ParseType(args[2])
			if !ok {
				return fmt.Errorf("unknown object type %q", args[2])
			}

			res, err := s.LoadApp(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer res.Close()
			warnTypeErrors(res.TypeErrors)

			text, err := s.DiffItem(res, t, args[3])
			if err != nil {
				return err
			}
			if text == "" {
				fmt.Println("no differences")
				return nil
			}
			fmt.Print(text)
			return nil
		},
	}

	return cmd
}
