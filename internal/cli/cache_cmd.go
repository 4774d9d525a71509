package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/college-catalog/internal/store"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local catalog snapshot",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop cached catalog listings",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if !a.snapshots.Enabled() {
				fmt.Fprintln(cmd.OutOrStdout(), "Snapshot cache is disabled (SNAPSHOT_BACKEND=none)")
				return nil
			}
			if err := a.snapshots.Invalidate(cmd.Context(), store.SnapshotKeyPrefix); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s snapshot cache\n", a.cfg.Snapshot.Backend)
			return nil
		}),
	})
	return cmd
}
