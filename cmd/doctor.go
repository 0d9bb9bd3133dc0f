package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bi-tools/appcopy/pkg/service"
)

func NewDoctorCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check engine connectivity and report its configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := *svc

			fmt.Println("Checking engine connection...")

			global, err := s.Global(ctx)
			if err != nil {
				fmt.Printf("  connection: FAILED (%v)\n", err)
				return fmt.Errorf("engine is unreachable")
			}
			fmt.Println("  connection: ok")

			version, err := global.EngineVersion(ctx)
			if err != nil {
				fmt.Printf("  version: FAILED (%v)\n", err)
			} else {
				fmt.Printf("  version: %s\n", version)
			}

			desktop, err := global.IsDesktopMode(ctx)
			switch {
			case err != nil:
				fmt.Printf("  mode: unknown (%v)\n", err)
			case desktop:
				fmt.Println("  mode: desktop")
			default:
				fmt.Println("  mode: server")
			}

			docs, err := global.DocList(ctx)
			if err != nil {
				fmt.Printf("  documents: FAILED (%v)\n", err)
			} else {
				fmt.Printf("  documents: %d available\n", len(docs))
			}

			return nil
		},
	}

	return cmd
}
