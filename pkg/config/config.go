// Package config handles loading and saving spotlight configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/spotlight/config.yaml
//   - State:   ~/.local/state/spotlight/ (session progress)
//
// A .env file in the working directory is loaded first; SPOTLIGHT_* variables
// override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/spotlight/pkg/progress"
	"github.com/vanderheijden86/spotlight/pkg/tour"
)

// UIConfig holds terminal preferences.
type UIConfig struct {
	Mouse      bool   `yaml:"mouse"`                 // click-to-dismiss needs mouse reporting
	Role       string `yaml:"role,omitempty"`        // client or coach
	StartRoute string `yaml:"start_route,omitempty"` // first page shown
}

// ToursConfig lists tour definition files or directories.
type ToursConfig struct {
	Paths []string `yaml:"paths,omitempty"`
	Watch bool     `yaml:"watch,omitempty"` // reload definitions when files change
}

// MetricsConfig controls analytics export.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Tour     tour.Options           `yaml:"tour"`
	Progress progress.BackendConfig `yaml:"progress"`
	Tours    ToursConfig            `yaml:"tours,omitempty"`
	UI       UIConfig               `yaml:"ui"`
	Metrics  MetricsConfig          `yaml:"metrics,omitempty"`

	// Session is the browsing-session id; not persisted.
	Session string `yaml:"-"`
}

// TerminalTourOptions returns engine options in terminal cells.
func TerminalTourOptions() tour.Options {
	return tour.Options{
		SettleDelay:    120 * time.Millisecond,
		FrameInterval:  16 * time.Millisecond,
		Padding:        1,
		TooltipGap:     1,
		ScrollMargin:   2,
		ViewportMargin: 1,
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Tour: TerminalTourOptions(),
		Progress: progress.BackendConfig{
			Backend:    "file",
			Dir:        filepath.Join(StateDir(), "sessions"),
			SessionTTL: 12 * time.Hour,
		},
		UI: UIConfig{
			Mouse:      true,
			Role:       "client",
			StartRoute: "/dashboard",
		},
	}
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "spotlight")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "spotlight")
}

// StateDir returns the XDG state directory.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "spotlight")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "spotlight")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads .env, the XDG config file, and environment overrides.
func Load() (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		return cfg, cfg.ApplyEnv()
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.ApplyEnv()
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	for i := range cfg.Tours.Paths {
		cfg.Tours.Paths[i] = expandHome(cfg.Tours.Paths[i])
	}
	cfg.Progress.Dir = expandHome(cfg.Progress.Dir)
	cfg.Progress.SQLitePath = expandHome(cfg.Progress.SQLitePath)

	return cfg, cfg.Validate()
}

// ApplyEnv applies SPOTLIGHT_* overrides.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("SPOTLIGHT_SESSION"); v != "" {
		c.Session = v
	}
	if v := os.Getenv("SPOTLIGHT_ROLE"); v != "" {
		c.UI.Role = v
	}
	if v := os.Getenv("SPOTLIGHT_PROGRESS_BACKEND"); v != "" {
		c.Progress.Backend = v
	}
	if v := os.Getenv("SPOTLIGHT_REDIS_ADDR"); v != "" {
		c.Progress.RedisAddr = v
	}
	if v := os.Getenv("SPOTLIGHT_REDIS_PASSWORD"); v != "" {
		c.Progress.RedisPassword = v
	}
	if v := os.Getenv("SPOTLIGHT_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SPOTLIGHT_REDIS_DB: %w", err)
		}
		c.Progress.RedisDB = n
	}
	if v := os.Getenv("SPOTLIGHT_TOURS"); v != "" {
		c.Tours.Paths = strings.Split(v, string(os.PathListSeparator))
	}
	return c.Validate()
}

// Validate rejects values the engine cannot work with.
func (c Config) Validate() error {
	if c.Tour.SettleDelay < 0 || c.Tour.FrameInterval < 0 {
		return fmt.Errorf("tour timings must not be negative")
	}
	if c.Tour.Padding < 0 || c.Tour.TooltipGap < 0 || c.Tour.ViewportMargin < 0 {
		return fmt.Errorf("tour geometry must not be negative")
	}
	switch c.Progress.Backend {
	case "", "memory", "file", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown progress backend %q", c.Progress.Backend)
	}
	if c.Progress.Backend == "redis" && c.Progress.RedisAddr == "" {
		return fmt.Errorf("progress backend redis needs redis_addr")
	}
	switch c.UI.Role {
	case "client", "coach":
	default:
		return fmt.Errorf("unknown role %q (want client or coach)", c.UI.Role)
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
