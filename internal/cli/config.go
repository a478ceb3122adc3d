package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Config.
const (
	EnvDatabase = "WATCHTOWER_DB"
	EnvActor    = "WATCHTOWER_ACTOR"
	EnvRules    = "WATCHTOWER_RULES"
	EnvSweep    = "WATCHTOWER_SWEEP"
	EnvPoll     = "WATCHTOWER_POLL"
)

// Config holds flag defaults taken from the environment.
type Config struct {
	Database string        // SQLite path or postgres:// DSN
	Actor    string        // actor profile YAML
	Rules    string        // CUE rules directory
	Sweep    string        // cron spec for maintenance sweeps
	Poll     time.Duration // history poll interval
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Database: "watchtower.db",
		Sweep:    "@every 1h",
		Poll:     2 * time.Second,
	}
}

// LoadConfig reads the environment, after loading files (".env" when none
// are given). Missing files are skipped, but a file that exists and does not
// parse is an error. Variables already set in the environment win over file
// values.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := DefaultConfig()
	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}
	cfg.Actor = os.Getenv(EnvActor)
	cfg.Rules = os.Getenv(EnvRules)
	if v := os.Getenv(EnvSweep); v != "" {
		cfg.Sweep = v
	}
	if v := os.Getenv(EnvPoll); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvPoll, err)
		}
		if d <= 0 {
			return cfg, fmt.Errorf("invalid %s: must be positive", EnvPoll)
		}
		cfg.Poll = d
	}
	return cfg, nil
}
