package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bi-tools/appcopy/cmd"
	"github.com/bi-tools/appcopy/cmd/config"
	"github.com/bi-tools/appcopy/pkg/service"
)

var svc *service.Service

func main() {
	rootCmd := &cobra.Command{
		Use:   "appcopy",
		Short: "Copy objects between analytics documents",
		Long: `appcopy lists, imports, and updates the building blocks of analytics
documents: load script sections, sheets, master dimensions and measures,
master visualizations, alternate states, and variables.`,
		SilenceUsage: true,
	}
	config.AddGlobalFlags(rootCmd)
	cobra.OnInitialize(config.InitConfig)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		svc, err = config.InitService()
		return err
	}

	rootCmd.AddCommand(cmd.NewAppsCmd(&svc))
	rootCmd.AddCommand(cmd.NewListCmd(&svc))
	rootCmd.AddCommand(cmd.NewImportCmd(&svc))
	rootCmd.AddCommand(cmd.NewUpdateCmd(&svc))
	rootCmd.AddCommand(cmd.NewDiffCmd(&svc))
	rootCmd.AddCommand(cmd.NewDoctorCmd(&svc))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
