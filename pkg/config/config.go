// Package config provides TOML-based configuration for showreel.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Config is the root configuration document.
type Config struct {
	General GeneralConfig `toml:"general"`
	Catalog CatalogConfig `toml:"catalog"`
	Media   MediaConfig   `toml:"media"`
	Image   ImageConfig   `toml:"image"`
	Gesture GestureConfig `toml:"gesture"`
	Input   InputConfig   `toml:"input"`
	Theme   ThemeConfig   `toml:"theme"`
}

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	CacheDir string `toml:"cache_dir"`
}

// CatalogConfig points at the catalog file. An empty Path selects the
// built-in studio catalog.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// MediaConfig selects where media references are resolved from. When
// BaseURL is set it takes precedence over Root.
type MediaConfig struct {
	Root        string   `toml:"root"`
	BaseURL     string   `toml:"base_url"`
	LoadTimeout Duration `toml:"load_timeout"` // 0 = no timeout
	Workers     int      `toml:"workers"`

	// StoreMB bounds the on-disk copy of remote media under
	// general.cache_dir. 0 disables it.
	StoreMB  int      `toml:"store_mb"`
	StoreTTL Duration `toml:"store_ttl"` // 0 = keep until evicted
}

// ImageConfig controls terminal image rendering.
type ImageConfig struct {
	Protocol       string `toml:"protocol"` // auto, kitty, iterm2, sixel, halfblocks, none
	MaxCacheSizeMB int    `toml:"max_cache_size_mb"`
}

// GestureConfig tunes swipe recognition on the carousel.
type GestureConfig struct {
	Threshold float64 `toml:"threshold"`
}

// InputConfig selects the input platform: "pointer", "touch" or "auto".
type InputConfig struct {
	Platform string `toml:"platform"`
}

// ThemeConfig names the UI palette, optionally loaded from a TOML file.
type ThemeConfig struct {
	Name string `toml:"name"`
	File string `toml:"file"`
}

var (
	validProtocols = []string{"auto", "kitty", "iterm2", "sixel", "halfblocks", "none"}
	validPlatforms = []string{"auto", "pointer", "touch"}
	validLevels    = []string{"debug", "info", "warn", "error"}
)

// Validate checks the configuration for values the program cannot run with.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if !oneOf(c.General.LogLevel, validLevels) {
		errs = append(errs, fmt.Errorf("general.log_level: unknown level %q", c.General.LogLevel))
	}
	if !oneOf(c.Image.Protocol, validProtocols) {
		errs = append(errs, fmt.Errorf("image.protocol: unknown protocol %q", c.Image.Protocol))
	}
	if !oneOf(c.Input.Platform, validPlatforms) {
		errs = append(errs, fmt.Errorf("input.platform: unknown platform %q", c.Input.Platform))
	}
	if c.Gesture.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("gesture.threshold: must be positive, got %v", c.Gesture.Threshold))
	}
	if c.Media.StoreMB < 0 {
		errs = append(errs, fmt.Errorf("media.store_mb: must not be negative, got %d", c.Media.StoreMB))
	}
	if c.Media.Workers < 0 {
		errs = append(errs, fmt.Errorf("media.workers: must not be negative, got %d", c.Media.Workers))
	}
	if c.Media.BaseURL != "" {
		u, err := url.Parse(c.Media.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("media.base_url: %q is not an absolute URL", c.Media.BaseURL))
		}
	}

	return errors.Join(errs...)
}

func oneOf(v string, allowed []string) bool {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
