// Package config holds the explicit render configuration. It is built once
// at startup and passed down; nothing in the pipeline reads global state.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

var (
	ErrBadCanvas  = errors.New("config: ширина и высота должны быть положительными")
	ErrBadFPS     = errors.New("config: fps должен быть положительным")
	ErrBadQuality = errors.New("config: качество должно быть low, medium или high")
)

// Config is the top-level render configuration. Defaults come from the
// environment; the CLI overrides them with flags.
type Config struct {
	OutputDir string `env:"I2V_OUTPUT_DIR, default=output"`

	Width  int `env:"I2V_WIDTH, default=1280"`
	Height int `env:"I2V_HEIGHT, default=720"`
	FPS    int `env:"I2V_FPS, default=30"`
	DPI    int `env:"I2V_DPI, default=150"`

	// DefaultDuration is used when a clip has neither audio nor a hint.
	DefaultDuration float64 `env:"I2V_DEFAULT_DURATION, default=5"`
	FadeDuration    float64 `env:"I2V_FADE, default=0.5"`
	Transition      string  `env:"I2V_TRANSITION, default=crossfade"`

	// Quality is the output tier: low, medium or high.
	Quality      string `env:"I2V_QUALITY, default=medium"`
	VideoEncoder string `env:"I2V_ENCODER"`

	// Workers is the frame pool size; 0 selects automatically.
	Workers int `env:"I2V_WORKERS"`

	// Seed fixes the random source for reproducible renders; 0 seeds from
	// the clock.
	Seed int64

	ShowStats bool
}

// Load reads defaults from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields the pipeline cannot recover from.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return ErrBadCanvas
	}
	if c.FPS <= 0 {
		return ErrBadFPS
	}
	switch c.Quality {
	case "low", "medium", "high":
	default:
		return ErrBadQuality
	}
	return nil
}
