package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gl2gh",
	Short: "Migrate GitLab groups to GitHub",
	Long: `gl2gh copies every project of a GitLab group (and its first-level
subgroups) into GitHub repositories, then applies repository policy in bulk.

Get started:
  gl2gh config init               Write tokens and defaults
  gl2gh doctor                    Verify credentials and the run ledger
  gl2gh list <group>              Show the projects that would be migrated
  gl2gh copy-content <group>      Copy branches and tags to GitHub
  gl2gh protect-branch            Apply a branch protection policy
  gl2gh webhooks                  Create webhooks from a template
  gl2gh history                   Show recent runs`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.gl2gh/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		listCmd,
		copyCmd,
		protectCmd,
		autoDeleteCmd,
		defaultBranchCmd,
		archiveCmd,
		webhooksCmd,
		historyCmd,
		configCmd,
		doctorCmd,
	)
}

func initConfig() {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}
}
