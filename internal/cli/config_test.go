package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDatabase, EnvActor, EnvRules, EnvSweep, EnvPoll} {
		unsetEnv(t, key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Environment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(EnvDatabase, "postgres://localhost/fleet")
	t.Setenv(EnvActor, "/etc/watchtower/admin.yaml")
	t.Setenv(EnvRules, "/etc/watchtower/rules")
	t.Setenv(EnvSweep, "*/5 * * * *")
	t.Setenv(EnvPoll, "500ms")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Database: "postgres://localhost/fleet",
		Actor:    "/etc/watchtower/admin.yaml",
		Rules:    "/etc/watchtower/rules",
		Sweep:    "*/5 * * * *",
		Poll:     500 * time.Millisecond,
	}, cfg)
}

func TestLoadConfig_DotenvFile(t *testing.T) {
	clearConfigEnv(t)

	path := writeFile(t, t.TempDir(), ".env",
		EnvRules+"=./rules\n"+EnvPoll+"=10s\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./rules", cfg.Rules)
	assert.Equal(t, 10*time.Second, cfg.Poll)
	assert.Equal(t, "watchtower.db", cfg.Database)
}

func TestLoadConfig_MalformedDotenvFile(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()

	bad := writeFile(t, dir, "bad.env", EnvRules+"=\"unterminated\n")
	_, err := LoadConfig(filepath.Join(dir, "missing.env"), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.env")
}

func TestLoadConfig_SkipsMissingFileAndLoadsTheRest(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()

	good := writeFile(t, dir, "good.env", EnvRules+"=./rules\n")
	cfg, err := LoadConfig(filepath.Join(dir, "missing.env"), good)
	require.NoError(t, err)
	assert.Equal(t, "./rules", cfg.Rules)
}

func TestLoadConfig_EnvironmentWinsOverFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(EnvRules, "/from/env")

	path := writeFile(t, t.TempDir(), ".env", EnvRules+"=/from/file\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Rules)
}

func TestLoadConfig_InvalidPoll(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"soon", "invalid " + EnvPoll},
		{"-1s", "must be positive"},
		{"0s", "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(EnvPoll, tt.value)

			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
