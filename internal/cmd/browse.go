package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"LocalBoard/internal/logging"
	lbnet "LocalBoard/internal/net"
)

func newBrowseCmd() *cobra.Command {
	var timeout time.Duration

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "List boards advertised on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			seen := make(map[string]bool)
			err := lbnet.Browse(timeout, func(link string) {
				if seen[link] {
					return
				}
				seen[link] = true
				fmt.Fprintln(out, link)
			})
			if err != nil {
				return fmt.Errorf("browsing for boards: %w", err)
			}
			if len(seen) == 0 {
				logging.Logger().Info("[NET] no boards found", "timeout", timeout)
				fmt.Fprintln(cmd.ErrOrStderr(), "No boards found.")
			}
			return nil
		},
	}
	browseCmd.Flags().DurationVarP(&timeout, "timeout", "t", 2*time.Second, "how long to listen for answers")
	return browseCmd
}
