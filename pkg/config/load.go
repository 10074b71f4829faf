package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/showreel/config.toml
//  2. ~/.config/showreel/config.toml
//
// If no file exists, returns DefaultConfig() with env overrides applied.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. A missing
// file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads configuration from an io.Reader. Keys absent from
// the document keep their default values.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			LogFile:  filepath.Join(xdgStateHome(home), "showreel", "showreel.log"),
			CacheDir: filepath.Join(xdgCacheHome(home), "showreel"),
		},
		Media: MediaConfig{
			Root:        ".",
			LoadTimeout: Duration{0},
			Workers:     4,
			StoreMB:     256,
			StoreTTL:    Duration{7 * 24 * time.Hour},
		},
		Image: ImageConfig{
			Protocol:       "auto",
			MaxCacheSizeMB: 32,
		},
		Gesture: GestureConfig{
			Threshold: 10000,
		},
		Input: InputConfig{
			Platform: "auto",
		},
		Theme: ThemeConfig{
			Name: "horus",
		},
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SHOWREEL_PROTOCOL"); v != "" {
		cfg.Image.Protocol = v
	}
	if v := os.Getenv("SHOWREEL_THEME"); v != "" {
		cfg.Theme.Name = v
	}
	if v := os.Getenv("SHOWREEL_MEDIA_ROOT"); v != "" {
		cfg.Media.Root = v
	}
	if v := os.Getenv("SHOWREEL_MEDIA_URL"); v != "" {
		cfg.Media.BaseURL = v
	}
	if v := os.Getenv("SHOWREEL_CATALOG"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("SHOWREEL_PLATFORM"); v != "" {
		cfg.Input.Platform = v
	}
	if v := os.Getenv("SHOWREEL_LOAD_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Media.LoadTimeout = Duration{d}
		}
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "showreel", "config.toml"))

	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "showreel", "config.toml"))
	}

	return paths
}

func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

func xdgCacheHome(home string) string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".cache")
}

func xdgStateHome(home string) string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "state")
}
