package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guiyumin/mfetch/internal/core/config"
	"github.com/guiyumin/mfetch/internal/core/extractor"
	"github.com/guiyumin/mfetch/internal/core/media"
	"github.com/guiyumin/mfetch/internal/core/pipeline"
	"github.com/guiyumin/mfetch/internal/core/report"
	"github.com/guiyumin/mfetch/internal/core/version"
	"github.com/spf13/cobra"
)

// errPrinted marks a failure the command already reported in its own output;
// Run sets the exit code but writes no failure JSON for it
var errPrinted = errors.New("reported above")

// app holds what every command of one invocation shares
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	reporter *report.Reporter

	configPath string
}

func (a *app) loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(a.configPath)
}

type fetchOptions struct {
	mode    string
	backend string
	timeout time.Duration
	merge   bool
	verbose bool
}

func newRootCmd(a *app) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "mfetch <url> <output_dir> [video|audio]",
		Short: "Fetch one video or audio file from a social media URL",
		Long: `Fetch one video or audio file from a social media URL.

The result is printed as a single JSON object on stdout:
  {"success":true,"filepath":...,"filesize":...,"mediaType":...,"fileExtension":...}
  {"error":"..."}`,
		Version:       version.Version,
		Args:          cobra.RangeArgs(2, 3),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, a, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", string(media.ModeVideo), "video or audio (the positional mode wins)")
	cmd.Flags().StringVar(&opts.backend, "backend", pipeline.BackendAuto, "auto, ytdlp or instagram")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "kill the fetch after this long (default from config, else none)")
	cmd.Flags().BoolVar(&opts.merge, "merge", false, "fetch video and audio streams separately and mux them with ffmpeg")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "mirror the invocation log to stderr")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/mfetch/config.yml)")

	cmd.SetOut(a.stderr)
	cmd.SetErr(a.stderr)

	cmd.AddCommand(
		newIDCmd(a),
		newDoctorCmd(a),
		newPruneCmd(a),
		newInitCmd(a),
		newUpdateCmd(a),
		newVersionCmd(a),
		newCompletionCmd(a),
	)
	cmd.ValidArgsFunction = completeFetchArgs
	return cmd
}

func runFetch(cmd *cobra.Command, a *app, opts *fetchOptions, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	mode := opts.mode
	if len(args) == 3 {
		mode = args[2]
	}

	switch opts.backend {
	case pipeline.BackendAuto, extractor.BackendYtdlp, extractor.BackendInstagram:
	default:
		return fmt.Errorf("invalid backend %q: want auto, ytdlp or instagram", opts.backend)
	}

	timeout := opts.timeout
	if !cmd.Flags().Changed("timeout") {
		if timeout, err = cfg.TimeoutDuration(); err != nil {
			return err
		}
	} else if timeout < 0 {
		return fmt.Errorf("invalid timeout %q: must not be negative", timeout)
	}

	p := pipeline.New(pipeline.NewFactory(cfg, opts.merge))
	p.Backend = opts.backend
	p.Timeout = timeout
	if opts.verbose {
		p.Console = a.stderr
	}

	res := p.Run(cmd.Context(), media.Request{URL: args[0], OutputDir: args[1], Mode: mode})
	return a.reporter.Emit(res)
}

// Run executes one invocation with args and returns the process exit code
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{
		stdout:   stdout,
		stderr:   stderr,
		reporter: report.NewReporter(stdout),
	}

	cmd := newRootCmd(a)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil && !a.reporter.Reported() && !errors.Is(err, errPrinted) {
		a.reporter.Emit(media.FailureFrom(err))
	}
	if err != nil || a.reporter.Failed() {
		return 1
	}
	return 0
}

// Execute runs mfetch with the process arguments and returns the exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
