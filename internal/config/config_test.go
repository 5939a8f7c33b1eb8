package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("language: zh\n"))
	require.NoError(t, err)

	assert.Equal(t, "zh", cfg.Language)
	assert.Equal(t, DefaultPlaceholderWidth, cfg.PlaceholderWidth)
	assert.Equal(t, DefaultProbeTimeout, cfg.ProbeTimeout)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, ".", cfg.OutputDir)
}

func TestParseDuration(t *testing.T) {
	cfg, err := Parse([]byte("probe_timeout: 3s\nplaceholder_width: 121\n"))
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 121, cfg.PlaceholderWidth)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("language: [unterminated"))
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	t.Setenv("VTHUMB_CONFIG", path)

	assert.False(t, Exists())

	cfg := Default()
	cfg.OutputDir = "/tmp/thumbs"
	cfg.SetWebDAVServer("nas", WebDAVServer{URL: "https://nas.local/dav", Username: "me"})
	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/thumbs", loaded.OutputDir)
	require.NotNil(t, loaded.GetWebDAVServer("nas"))
	assert.Equal(t, "me", loaded.GetWebDAVServer("nas").Username)
	assert.Nil(t, loaded.GetWebDAVServer("missing"))
}

func TestLoadOrDefaultEnvPort(t *testing.T) {
	t.Setenv("VTHUMB_CONFIG", filepath.Join(t.TempDir(), "none.yml"))
	t.Setenv("VTHUMB_PORT", "9090")

	cfg := LoadOrDefault()
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"language", "zh", false},
		{"placeholder_width", "120", false},
		{"placeholder_width", "-1", true},
		{"probe_timeout", "2s", false},
		{"probe_timeout", "soon", true},
		{"server.port", "70000", true},
		{"server.history", "false", false},
		{"nope", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := Default().Set(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeleteWebDAVServer(t *testing.T) {
	cfg := Default()
	cfg.SetWebDAVServer("a", WebDAVServer{URL: "https://a"})
	cfg.DeleteWebDAVServer("a")
	assert.Nil(t, cfg.GetWebDAVServer("a"))
}
