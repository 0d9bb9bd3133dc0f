package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bi-tools/appcopy/pkg/models"
	"github.com/bi-tools/appcopy/pkg/service"
)

func NewImportCmd(svc **service.Service) *cobra.Command {
	var (
		importType string
		importIDs  []string
	)

	cmd := &cobra.Command{
		Use:   "import <source> <dest>",
		Short: "Import objects from a source document into a destination",
		Long: `Import objects from a source document into a destination document.

Without --type every copyable type is processed. Items that already exist
in the destination, or cannot be imported, are skipped. Items run one at
a time; a failing item is reported and the batch continues.

Examples:
  appcopy import sales.qvf dashboard.qvf
  appcopy import sales.qvf dashboard.qvf --type measure
  appcopy import sales.qvf dashboard.qvf --type sheet --id JzmEx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := *svc

			types, err := operationTypes(importType, importIDs)
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
				report, err := s.ImportItems(ctx, res, t, importIDs)
				if err != nil {
					return err
				}
				fmt.Println(report)
				failed += report.Failed
			}
			if failed > 0 {
				return fmt.Errorf("%d item(s) failed to import", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&importType, "type", "t", "", "Only process one object type")
	cmd.Flags().StringSliceVar(&importIDs, "id", nil, "Only process the given item ids (requires --type)")

	return cmd
}

// operationTypes resolves the --type flag for batch commands. Id selection
// is only meaningful within a single type.
func operationTypes(typeFlag string, ids []string) ([]models.ObjectType, error) {
	if typeFlag == "" {
		if len(ids) > 0 {
			return nil, fmt.Errorf("--id requires --type")
		}
		return models.AllTypes(), nil
	}
	t, ok := models.ParseType(typeFlag)
	if !ok {
		return nil, fmt.Errorf("unknown object type %q", typeFlag)
	}
	return []models.ObjectType{t}, nil
}
