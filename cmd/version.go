package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func NewVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				return outputJSON(map[string]string{
					"version": Version,
					"commit":  Commit,
					"date":    Date,
					"go":      runtime.Version(),
				})
			}
			fmt.Printf("appcopy %s (commit %s, built %s, %s)\n", Version, Commit, Date, runtime.Version())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version information in JSON format")

	return cmd
}
