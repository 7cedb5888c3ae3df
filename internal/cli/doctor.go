package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guiyumin/mfetch/internal/core/config"
	"github.com/guiyumin/mfetch/internal/core/ffmpeg"
	"github.com/guiyumin/mfetch/internal/core/fetch/instagram"
	"github.com/guiyumin/mfetch/internal/core/fetch/ytdlp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	doctorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	doctorLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(12)
	doctorOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Width(3)
	doctorBadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Width(3)
	doctorWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Width(3)
	doctorDetail     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

type checkStatus int

const (
	checkOK checkStatus = iota
	checkWarn
	checkFailed
)

type check struct {
	name   string
	status checkStatus
	detail string
}

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the external tools mfetch depends on are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			checks := runChecks(cmd.Context(), cfg, a.configPath)
			renderChecks(a.stdout, checks)

			for _, c := range checks {
				if c.status == checkFailed {
					return fmt.Errorf("%s: %s: %w", c.name, c.detail, errPrinted)
				}
			}
			return nil
		},
	}
}

func runChecks(ctx context.Context, cfg *config.Config, configPath string) []check {
	var checks []check

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	yt := ytdlp.New(cfg.Ytdlp.Binary, nil, zerolog.Nop())
	if v, err := yt.Version(ctx); err != nil {
		checks = append(checks, check{"yt-dlp", checkFailed, err.Error()})
	} else {
		checks = append(checks, check{"yt-dlp", checkOK, yt.Binary + " " + v})
	}

	mux := ffmpeg.New(cfg.FFmpeg.Binary, cfg.FFmpeg.Embedded, zerolog.Nop())
	switch {
	case mux.Available():
		checks = append(checks, check{"ffmpeg", checkOK, mux.Binary})
	case cfg.FFmpeg.Embedded:
		checks = append(checks, check{"ffmpeg", checkWarn, "not in PATH, using embedded WebAssembly build (slower)"})
	default:
		checks = append(checks, check{"ffmpeg", checkWarn, "not found; --merge and Instagram audio will fail"})
	}

	if cfg.Instagram.Backend == config.InstagramYtdlp {
		checks = append(checks, check{"browser", checkOK, "not needed (instagram.backend: ytdlp)"})
	} else if path, ok := instagram.BrowserAvailable(cfg.Instagram.BrowserPath); ok {
		checks = append(checks, check{"browser", checkOK, path})
	} else {
		checks = append(checks, check{"browser", checkWarn, "Chromium not found; it will be downloaded on first Instagram fetch"})
	}

	if config.Exists(configPath) {
		p := configPath
		if p == "" {
			p, _ = config.ConfigPath()
		}
		checks = append(checks, check{"config", checkOK, p})
	} else {
		checks = append(checks, check{"config", checkWarn, "not found, using defaults (run 'mfetch init')"})
	}

	return checks
}

func renderChecks(w io.Writer, checks []check) {
	fmt.Fprintln(w, doctorTitleStyle.Render("mfetch doctor"))
	for _, c := range checks {
		var mark string
		switch c.status {
		case checkOK:
			mark = doctorOKStyle.Render("✓")
		case checkWarn:
			mark = doctorWarnStyle.Render("!")
		default:
			mark = doctorBadStyle.Render("✗")
		}
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
			doctorLabelStyle.Render(c.name),
			mark,
			doctorDetail.Render(c.detail),
		))
	}
}
