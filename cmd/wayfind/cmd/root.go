// Package cmd implements the wayfind command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/campusops/wayfind/internal/config"
	"github.com/campusops/wayfind/pkg/logging"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "wayfind",
	Short: "Aggregate campus locations and synchronize the search index",
	Long: `wayfind aggregates campus location facts from heterogeneous upstream
sources, reconciles them into a canonical record set, and synchronizes
that set into the search index with create/update/delete semantics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logging.SetDebug()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configuration.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(syncCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
