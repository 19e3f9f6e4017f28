// Package config holds runtime settings for the CLI client.
package config

import "os"

// Config holds runtime settings for the roamsync CLI.
//
// Fields:
//   - ServerAddr: base URL of the backend HTTP API.
//   - DatabasePath: where the local sqlite state (session, outbox, cache)
//     lives.
type Config struct {
	ServerAddr   string
	DatabasePath string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "roamsync.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment. Command-line flags, handled by the CLI itself, take
// precedence over both.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()

	if v := os.Getenv("ROAMSYNC_SERVER_ADDR"); v != "" {
		cfg.ServerAddr = v
	}
	if v := os.Getenv("ROAMSYNC_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	return cfg
}
