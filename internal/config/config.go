// Package config loads procdash server configuration from a TOML file,
// falling back to defaults when no file is present.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the procdash server configuration.
type Config struct {
	Server struct {
		// Listen is the HTTP listen address (default ":8080").
		Listen string `toml:"listen"`

		// LockFile guards against two procdash instances polling the
		// same manager (default "/tmp/procdash.lock").
		LockFile string `toml:"lock_file"`
	} `toml:"server"`

	Sync struct {
		// FullIntervalMS is the full-snapshot tick interval in
		// milliseconds (default 1500).
		FullIntervalMS int `toml:"full_interval_ms"`

		// StateIntervalMS is the state-snapshot tick interval in
		// milliseconds (default 1000).
		StateIntervalMS int `toml:"state_interval_ms"`
	} `toml:"sync"`

	PM2 struct {
		// Bin is the pm2 binary (default "pm2" from PATH).
		Bin string `toml:"bin"`

		// CallTimeoutMS bounds each pm2 invocation in milliseconds
		// (default 10000).
		CallTimeoutMS int `toml:"call_timeout_ms"`
	} `toml:"pm2"`

	Logs struct {
		// TailLines is how many trailing log lines the full snapshot
		// carries per process (default 100).
		TailLines int `toml:"tail_lines"`
	} `toml:"logs"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.Server.Listen = ":8080"
	cfg.Server.LockFile = "/tmp/procdash.lock"
	cfg.Sync.FullIntervalMS = 1500
	cfg.Sync.StateIntervalMS = 1000
	cfg.PM2.Bin = "pm2"
	cfg.PM2.CallTimeoutMS = 10000
	cfg.Logs.TailLines = 100
	return cfg
}

// Load reads the config file at path on top of the defaults. An empty
// path or a missing file yields the defaults; a malformed file is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is an operator-supplied flag
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// FullInterval returns the full-snapshot tick interval.
func (c Config) FullInterval() time.Duration {
	return time.Duration(c.Sync.FullIntervalMS) * time.Millisecond
}

// StateInterval returns the state-snapshot tick interval.
func (c Config) StateInterval() time.Duration {
	return time.Duration(c.Sync.StateIntervalMS) * time.Millisecond
}

// CallTimeout returns the per-call pm2 timeout.
func (c Config) CallTimeout() time.Duration {
	return time.Duration(c.PM2.CallTimeoutMS) * time.Millisecond
}
