package cli

import (
	"fmt"

	"github.com/guiyumin/mfetch/internal/core/config"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create mfetch config file with defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(a.configPath, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
