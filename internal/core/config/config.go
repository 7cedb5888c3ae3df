package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "mfetch"
)

const (
	InstagramBrowser = "browser"
	InstagramYtdlp   = "ytdlp"
)

// DefaultPruneMaxAge is how old an artifact must be before prune removes it
const DefaultPruneMaxAge = 30 * time.Minute

// ConfigDir returns the standard config directory for mfetch.
// Windows: %APPDATA%\mfetch\
// macOS/Linux: ~/.config/mfetch/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
// e.g., ~/.config/mfetch/config.yml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// Default output directory, used by prune when no directory is given
	OutputDir string `yaml:"output_dir,omitempty"`

	// Timeout for one fetch (e.g. "5m"); empty means no limit
	Timeout string `yaml:"timeout,omitempty"`

	Ytdlp     YtdlpConfig     `yaml:"ytdlp,omitempty"`
	FFmpeg    FFmpegConfig    `yaml:"ffmpeg,omitempty"`
	Instagram InstagramConfig `yaml:"instagram,omitempty"`
	Prune     PruneConfig     `yaml:"prune,omitempty"`
}

// YtdlpConfig configures the yt-dlp fetcher
type YtdlpConfig struct {
	// Binary is the yt-dlp executable (default: "yt-dlp" from PATH)
	Binary string `yaml:"binary,omitempty"`

	// ExtraArgs are appended before the URL, e.g. ["--cookies", "cookies.txt"]
	ExtraArgs []string `yaml:"extra_args,omitempty"`
}

// FFmpegConfig configures muxing and audio extraction
type FFmpegConfig struct {
	// Binary is the ffmpeg executable (default: "ffmpeg" from PATH)
	Binary string `yaml:"binary,omitempty"`

	// Embedded falls back to the bundled WebAssembly ffmpeg when no binary is found
	Embedded bool `yaml:"embedded"`
}

// InstagramConfig selects and configures the Instagram backend
type InstagramConfig struct {
	// Backend is "browser" (headless Chromium) or "ytdlp"
	Backend string `yaml:"backend,omitempty"`

	// SessionID is the sessionid cookie value from a logged-in browser
	SessionID string `yaml:"session_id,omitempty"`

	// BrowserPath overrides the Chromium binary
	BrowserPath string `yaml:"browser_path,omitempty"`
}

// PruneConfig holds settings for `mfetch prune`
type PruneConfig struct {
	// MaxAge is the age after which artifacts and logs are deleted (default: 30m)
	MaxAge string `yaml:"max_age,omitempty"`
}

// TimeoutDuration parses Timeout. Zero means no limit.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return parseDuration("timeout", c.Timeout, 0)
}

// PruneMaxAge parses Prune.MaxAge, falling back to DefaultPruneMaxAge
func (c *Config) PruneMaxAge() (time.Duration, error) {
	return parseDuration("prune.max_age", c.Prune.MaxAge, DefaultPruneMaxAge)
}

func parseDuration(key, s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, s)
	}
	return d, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.PruneMaxAge(); err != nil {
		return err
	}
	switch c.Instagram.Backend {
	case "", InstagramBrowser, InstagramYtdlp:
	default:
		return fmt.Errorf("invalid instagram.backend %q: want %s or %s", c.Instagram.Backend, InstagramBrowser, InstagramYtdlp)
	}
	return nil
}

// DefaultDownloadDir returns the default download directory
func DefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./downloads"
	}

	switch runtime.GOOS {
	case "darwin", "windows":
		return filepath.Join(home, "Downloads", AppDirName)
	default:
		return filepath.Join(home, "downloads")
	}
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputDir: DefaultDownloadDir(),
		FFmpeg:    FFmpegConfig{Embedded: true},
		Instagram: InstagramConfig{Backend: InstagramBrowser},
		Prune:     PruneConfig{MaxAge: DefaultPruneMaxAge.String()},
	}
}

// Exists checks if the config file at path exists; an empty path means the default location
func Exists(path string) bool {
	path, err := resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func resolve(path string) (string, error) {
	if path != "" {
		return expandPath(path), nil
	}
	return ConfigPath()
}

// Load reads the config from path, or ~/.config/mfetch/config.yml when path is empty
func Load(path string) (*Config, error) {
	path, err := resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.OutputDir = expandPath(cfg.OutputDir)
	cfg.Ytdlp.Binary = expandPath(cfg.Ytdlp.Binary)
	cfg.FFmpeg.Binary = expandPath(cfg.FFmpeg.Binary)
	cfg.Instagram.BrowserPath = expandPath(cfg.Instagram.BrowserPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// expandPath expands the tilde (~) in the path to the user's home directory.
// Both forward and backward slashes after the tilde are accepted.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		// Only expand if it's explicitly "~", "~/", or "~\"
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}

// Save writes cfg to path, or ~/.config/mfetch/config.yml when path is empty
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	configPath, err := resolve(path)
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# mfetch configuration file\n# Run 'mfetch init --force' to regenerate with defaults\n\n"
	content := header + string(data)

	return os.WriteFile(configPath, []byte(content), 0644)
}

// Init writes a default config to path. An existing file is kept unless force is set.
func Init(path string, force bool) (string, error) {
	p, err := resolve(path)
	if err != nil {
		return "", err
	}
	if !force && Exists(p) {
		return p, fmt.Errorf("%s already exists", p)
	}
	return p, Save(DefaultConfig(), p)
}

// LoadOrDefault loads the config if it exists, otherwise returns defaults.
// A config that exists but cannot be parsed is an error.
func LoadOrDefault(path string) (*Config, error) {
	if !Exists(path) {
		return DefaultConfig(), nil
	}
	return Load(path)
}
