// If you are AI: this file assembles the root Cobra command and its
// subcommands.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"dcpflow/internal/logging"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "dcpflow",
		Short:         "Digital Cinema Package playback pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(logLevel))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newRenderCommand(&configFlag))
	rootCmd.AddCommand(newPlayCommand(&configFlag))
	rootCmd.AddCommand(newHintsCommand())
	rootCmd.AddCommand(newExamineCommand())

	return rootCmd
}
