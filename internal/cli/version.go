package cli

import (
	"fmt"
	"runtime"

	"github.com/guiyumin/mfetch/internal/core/version"
	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "mfetch v%s %s/%s\n", version.Version, runtime.GOOS, runtime.GOARCH)
		},
	}
}
