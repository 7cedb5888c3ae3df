package cli

import (
	"fmt"

	"github.com/guiyumin/mfetch/internal/updater"
	"github.com/spf13/cobra"
)

func newUpdateCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update mfetch to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !check {
				return updater.Update(cmd.Context(), a.stdout)
			}

			latest, newer, err := updater.CheckUpdate(cmd.Context())
			if err != nil {
				return err
			}
			if !newer {
				fmt.Fprintln(a.stdout, "Already up to date")
				return nil
			}
			fmt.Fprintf(a.stdout, "New version available: %s (asset %s)\n", latest.Version(), updater.PlatformAssetName())
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "only check whether a newer release exists")
	return cmd
}
