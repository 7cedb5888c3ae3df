package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/guiyumin/mfetch/internal/core/logging"
	"github.com/guiyumin/mfetch/internal/core/namer"
	"github.com/spf13/cobra"
)

func newPruneCmd(a *app) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "prune [output_dir]",
		Short: "Delete artifacts and logs older than --max-age",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			dir := cfg.OutputDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return errors.New("no output directory given and none configured")
			}

			if !cmd.Flags().Changed("max-age") {
				if maxAge, err = cfg.PruneMaxAge(); err != nil {
					return err
				}
			}

			stats, err := namer.Prune(dir, maxAge, time.Now())
			if err != nil {
				return err
			}

			printPruneSummary(a, dir, stats)
			return json.NewEncoder(a.stdout).Encode(stats)
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "minimum age of files to delete (default from config, else 30m)")
	return cmd
}

func printPruneSummary(a *app, dir string, stats namer.PruneStats) {
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	if !logging.IsTerminal(a.stderr) {
		ok.DisableColor()
		warn.DisableColor()
	}

	ok.Fprintf(a.stderr, "Pruned %s: %d file(s) deleted, %s freed\n", dir, stats.Deleted, formatBytes(stats.Freed))
	if stats.Failed > 0 {
		warn.Fprintf(a.stderr, "%d file(s) could not be deleted\n", stats.Failed)
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
