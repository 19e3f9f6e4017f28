package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerAddr)
	assert.Equal(t, "roamsync.db", cfg.DatabasePath)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ROAMSYNC_SERVER_ADDR", "https://api.example.com")
	t.Setenv("ROAMSYNC_DB_PATH", "/tmp/state.db")

	cfg := LoadConfig()
	assert.Equal(t, "https://api.example.com", cfg.ServerAddr)
	assert.Equal(t, "/tmp/state.db", cfg.DatabasePath)
}
