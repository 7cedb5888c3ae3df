package updater

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/guiyumin/mfetch/internal/core/version"
)

const (
	repoOwner = "guiyumin"
	repoName  = "mfetch"
)

func newUpdater() (*selfupdate.Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, err
	}
	return selfupdate.NewUpdater(selfupdate.Config{
		Source: source,
	})
}

// currentVersion returns the running version without a leading 'v'
func currentVersion() string {
	return strings.TrimPrefix(version.Version, "v")
}

func detectLatest(ctx context.Context) (*selfupdate.Updater, *selfupdate.Release, bool, error) {
	updater, err := newUpdater()
	if err != nil {
		return nil, nil, false, err
	}

	latest, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug(repoOwner, repoName))
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to check for updates: %w", err)
	}
	return updater, latest, found, nil
}

// CheckUpdate checks if a new version is available
func CheckUpdate(ctx context.Context) (*selfupdate.Release, bool, error) {
	_, latest, found, err := detectLatest(ctx)
	if err != nil || !found {
		return nil, false, err
	}

	if latest.LessOrEqual(currentVersion()) {
		return latest, false, nil
	}
	return latest, true, nil
}

// Update replaces the running executable with the latest release
func Update(ctx context.Context, out io.Writer) error {
	updater, latest, found, err := detectLatest(ctx)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no releases found for %s/%s", repoOwner, repoName)
	}

	current := currentVersion()
	if latest.LessOrEqual(current) {
		fmt.Fprintf(out, "Already up to date (v%s)\n", current)
		return nil
	}

	fmt.Fprintf(out, "Updating from v%s to %s...\n", current, latest.Version())

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}

	fmt.Fprintf(out, "Successfully updated to %s\n", latest.Version())
	return nil
}

// PlatformAssetName returns the expected release asset name for the current platform
func PlatformAssetName() string {
	return fmt.Sprintf("%s_%s_%s", repoName, runtime.GOOS, runtime.GOARCH)
}
