// Package config holds the settings shared by every tilt operation and loads
// them from the environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Fepozopo/tilt/pkg/parallel"
)

// Environment variables read by FromEnv.
const (
	EnvMaxParallelism   = "TILT_MAX_PARALLELISM"
	EnvMinPixelsPerTask = "TILT_MIN_PIXELS_PER_TASK"
	EnvDebug            = "TILT_DEBUG"
)

// Configuration is passed to every processor invocation. It is read-only
// once built and safe to share between goroutines.
type Configuration struct {
	Parallel parallel.Settings
	Logger   *slog.Logger
}

// Default returns settings using every CPU and a logger that discards output.
func Default() *Configuration {
	return &Configuration{
		Parallel: parallel.DefaultSettings(),
		Logger:   slog.New(slog.DiscardHandler),
	}
}

// WithParallelism returns a copy of c limited to n concurrent row workers.
func (c *Configuration) WithParallelism(n int) *Configuration {
	out := *c
	out.Parallel.MaxDegreeOfParallelism = n
	return &out
}

// Log returns c.Logger, or a discarding logger when none is set.
func (c *Configuration) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Load reads envFile (if it exists) into the process environment and then
// builds a Configuration with FromEnv. Variables already set take precedence
// over the file.
func Load(envFile string) (*Configuration, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Configuration from TILT_* variables on top of Default.
func FromEnv() (*Configuration, error) {
	cfg := Default()
	if v, ok, err := positiveInt(EnvMaxParallelism); err != nil {
		return nil, err
	} else if ok {
		cfg.Parallel.MaxDegreeOfParallelism = v
	}
	if v, ok, err := positiveInt(EnvMinPixelsPerTask); err != nil {
		return nil, err
	} else if ok {
		cfg.Parallel.MinimumPixelsProcessedPerTask = v
	}
	if debugEnabled(os.Getenv(EnvDebug)) {
		cfg.Logger = NewLogger(os.Stderr, slog.LevelDebug)
	}
	return cfg, nil
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func positiveInt(name string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("config: invalid %s: %w", name, err)
	}
	if v <= 0 {
		return 0, false, fmt.Errorf("config: %s must be positive, got %d", name, v)
	}
	return v, true, nil
}

func debugEnabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
