package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "remora-cli",
	Short: "Remora CLI tool",
	Long: `Remora CLI is a command-line interface for the Remora framework.

Available commands:
  new-module       Scaffold a new application module and register it
  list-services    Discover and list services registered in the registry
  tree             Print the module tree declared in the manifest

Use "remora-cli [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
