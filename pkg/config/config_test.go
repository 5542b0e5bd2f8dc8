package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/tilt/pkg/parallel"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvMaxParallelism, EnvMinPixelsPerTask, EnvDebug} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Parallel.MaxDegreeOfParallelism)
	assert.NoError(t, cfg.Parallel.Validate())
	require.NotNil(t, cfg.Logger)

	one := cfg.WithParallelism(1)
	assert.Equal(t, 1, one.Parallel.MaxDegreeOfParallelism)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Parallel.MaxDegreeOfParallelism, "receiver must not change")
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMaxParallelism, "3")
	t.Setenv(EnvMinPixelsPerTask, " 12 ")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Parallel.MaxDegreeOfParallelism)
	assert.Equal(t, 12, cfg.Parallel.MinimumPixelsProcessedPerTask)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		EnvMaxParallelism:   "many",
		EnvMinPixelsPerTask: "0",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(name, value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even empty
	// ones, so drop them for the duration of the test.
	for _, k := range []string{EnvMaxParallelism, EnvMinPixelsPerTask} {
		require.NoError(t, os.Unsetenv(k))
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TILT_MAX_PARALLELISM=2\nTILT_MIN_PIXELS_PER_TASK=64\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Parallel.MaxDegreeOfParallelism)
	assert.Equal(t, 64, cfg.Parallel.MinimumPixelsProcessedPerTask)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Equal(t, parallel.DefaultMinimumPixelsProcessedPerTask, cfg.Parallel.MinimumPixelsProcessedPerTask)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelDebug)
	log.Debug("resample", "path", "nearest")
	assert.Contains(t, buf.String(), "path=nearest")
	assert.True(t, debugEnabled("TRUE"))
	assert.False(t, debugEnabled("0"))
}
