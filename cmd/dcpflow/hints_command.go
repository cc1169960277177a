// If you are AI: this file implements "dcpflow hints", running the
// default lint checks over a playlist and rendering the findings table.

package main

import (
	"github.com/spf13/cobra"

	"dcpflow/internal/hints"
)

func newHintsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hints <playlist.xml>",
		Short: "Report composition issues found in a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := loadPlaylist(args[0])
			if err != nil {
				return err
			}
			findings := hints.Run(pl, hints.DefaultChecks())
			hints.Render(cmd.OutOrStdout(), findings)
			return nil
		},
	}
}
