package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"farmstore.GO/config"
)

var rootCmd = &cobra.Command{
	Use:   "farmstore",
	Short: "farmstore catalog and cart tooling",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadAppConfig()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
