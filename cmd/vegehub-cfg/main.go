// Vegehub-cfg is a configuration utility for VegeHub relay/sensor hubs.
//
// It provides hub discovery, an interactive setup wizard, and direct
// commands for pointing a hub at an update server, driving actuators, and
// inspecting device state. The tool communicates with hubs over their
// local HTTP API.
//
// Usage:
//
//	vegehub-cfg [command] [flags]
//
// Running without arguments launches the interactive wizard.
// See 'vegehub-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/vegehub/internal/logging"
	"github.com/muurk/vegehub/internal/version"
)

func main() {
	_ = logging.InitializeFromEnv()
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vegehub-cfg",
	Short: "VegeHub Device Configuration Utility",
	Long: `A standalone utility for configuring VegeHub relay/sensor hubs.

Provides hub discovery, an interactive setup wizard, and direct commands
for server setup, actuator control, and device inspection.

If no command is specified, the interactive wizard will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run wizard when no subcommand provided
		return runWizard(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vegehub-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
