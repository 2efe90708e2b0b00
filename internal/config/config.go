// Package config loads settings for the peel commands from a TOML file and
// PEEL_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Canvas        CanvasConfig
	Window        WindowConfig
	Extract       ExtractConfig
	Assets        AssetsConfig
	Server        ServerConfig
	Debug         bool
	ScreenshotDir string `mapstructure:"screenshot_dir"`
}

// CanvasConfig is the canvas size given to imported scenes.
type CanvasConfig struct {
	Width  float64
	Height float64
}

// WindowConfig is the initial window.
type WindowConfig struct {
	Width  int
	Height int
	Title  string
}

// ExtractConfig selects the extraction backend. An empty endpoint uses the
// built-in mock extractor.
type ExtractConfig struct {
	// Endpoint is the full extraction URL, e.g. http://localhost:8089/extract.
	Endpoint      string
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Timeout       time.Duration
}

// AssetsConfig selects the asset store: "memory" or "sqlite".
type AssetsConfig struct {
	Backend string
	Path    string
}

// ServerConfig is the listen address of the extraction server.
type ServerConfig struct {
	Addr string
}

// Load reads configuration from file and env. Env var overrides use prefix
// PEEL_, e.g. PEEL_EXTRACT_ENDPOINT.
func Load() (Config, error) {
	home := os.Getenv("HOME")
	v := viper.New()

	v.SetDefault("canvas.width", 800)
	v.SetDefault("canvas.height", 600)
	v.SetDefault("window.width", 960)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.title", "BananaPeel")
	v.SetDefault("extract.endpoint", "")
	v.SetDefault("extract.rate_per_second", 2)
	v.SetDefault("extract.timeout", "30s")
	v.SetDefault("assets.backend", "memory")
	v.SetDefault("assets.path", filepath.Join(home, ".local", "share", "peel", "assets.db"))
	v.SetDefault("server.addr", ":8089")
	v.SetDefault("debug", false)
	v.SetDefault("screenshot_dir", "screenshots")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("PEEL_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "peel"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PEEL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("config: canvas size must be positive, got %vx%v", c.Canvas.Width, c.Canvas.Height)
	}
	switch c.Assets.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("config: unknown assets.backend %q", c.Assets.Backend)
	}
	if c.Extract.RatePerSecond < 0 {
		return fmt.Errorf("config: extract.rate_per_second must not be negative")
	}
	return nil
}
