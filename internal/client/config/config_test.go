package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"pinctl"}, args...)
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Empty(t, c.Token)
	assert.Equal(t, 10*time.Second, c.Timeout)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags and a command",
			args: []string{"-a", "http://pins:9000", "-k", "tok", "-t", "3", "visit", "7", "Ann"},
			expected: &Config{
				ServerURL: "http://pins:9000", Token: "tok", Timeout: 3 * time.Second,
				Args: []string{"visit", "7", "Ann"},
			},
		},
		{
			name: "config flag is accepted and skipped",
			args: []string{"-c", "cfg.json", "list"},
			expected: &Config{
				ServerURL: "http://127.0.0.1:8080", Timeout: 10 * time.Second,
				Args: []string{"list"},
			},
		},
		{
			name:        "incorrect timeout",
			args:        []string{"-t", "abc", "list"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			cfg := &Config{}
			cfg.LoadDefaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseFlags_TimeoutKeptWhenFlagAbsent(t *testing.T) {
	withArgs(t, "list")

	cfg := &Config{Timeout: 1500 * time.Millisecond}
	parseFlags(cfg)

	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
}

func TestParseEnv(t *testing.T) {
	envFile = filepath.Join(t.TempDir(), "missing.env")
	t.Cleanup(func() { envFile = ".env" })

	t.Setenv("PINBOARD_SERVER", "http://env:8080")
	t.Setenv("PINBOARD_TOKEN", "env-token")
	t.Setenv("PINBOARD_TIMEOUT", "2s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "http://env:8080", cfg.ServerURL)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestParseEnv_BadTimeoutIgnored(t *testing.T) {
	envFile = filepath.Join(t.TempDir(), "missing.env")
	t.Cleanup(func() { envFile = ".env" })

	t.Setenv("PINBOARD_TIMEOUT", "soon")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestParseJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinctl.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url":"http://json:1","timeout":"4s"}`), 0o600))

	t.Run("overlays present fields", func(t *testing.T) {
		withArgs(t, "-config", path, "stats")

		cfg := &Config{Token: "keep"}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "http://json:1", cfg.ServerURL)
		assert.Equal(t, "keep", cfg.Token)
		assert.Equal(t, 4*time.Second, cfg.Timeout)
	})

	t.Run("no flag leaves config untouched", func(t *testing.T) {
		withArgs(t, "stats")

		cfg := &Config{ServerURL: "http://defaults"}
		parseJson(cfg)

		assert.Equal(t, "http://defaults", cfg.ServerURL)
	})

	t.Run("missing file panics", func(t *testing.T) {
		withArgs(t, "-c", filepath.Join(t.TempDir(), "nope.json"))

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}

func TestLoadConfig_Precedence(t *testing.T) {
	envFile = filepath.Join(t.TempDir(), "missing.env")
	t.Cleanup(func() { envFile = ".env" })
	t.Setenv("PINBOARD_SERVER", "http://env:1")
	t.Setenv("PINBOARD_TOKEN", "env-token")

	path := filepath.Join(t.TempDir(), "pinctl.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url":"http://json:2"}`), 0o600))

	withArgs(t, "-c", path, "-k", "flag-token", "show", "3")

	cfg := LoadConfig()

	assert.Equal(t, "http://json:2", cfg.ServerURL)
	assert.Equal(t, "flag-token", cfg.Token)
	assert.Equal(t, []string{"show", "3"}, cfg.Args)
}
