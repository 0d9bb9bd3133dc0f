package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bi-tools/appcopy/pkg/service"
)

func NewUpdateCmd(svc **service.Service) *cobra.Command {
	var (
		updateType string
		updateIDs  []string
	)

	cmd := &cobra.Command{
		Use:   "update <source> <dest>",
		Short: "Update destination objects from their source counterparts",
		Long: `Update objects in a destination document from the source document's
versions. Only items reconciled against an existing destination
counterpart with differing content are touched. A variable whose
counterpart disappeared is created instead.

Examples:
  appcopy update sales.qvf dashboard.qvf
  appcopy update sales.qvf dashboard.qvf --type script
  appcopy update sales.qvf dashboard.qvf --type variable --id vX`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := *svc

			types, err := operationTypes(updateType, updateIDs)
			if err != nil {
				return err
			}

			res, err := s.LoadApp(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer res.Close()
			warnTypeErrors(res.TypeErrors)

			failed := 0
			for _, t := range types {
				report, err := s.UpdateItems(ctx, res, t, updateIDs)
				if err != nil {
					return err
				}
				fmt.Println(report)
				failed += report.Failed
			}
			if failed > 0 {
				return fmt.Errorf("%d item(s) failed to update", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&updateType, "type", "t", "", "Only process one object type")
	cmd.Flags().StringSliceVar(&updateIDs, "id", nil, "Only process the given item ids (requires --type)")

	return cmd
}
