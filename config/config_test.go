package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := DefaultConfig()
	cfg.Trigger.BPM = 120
	cfg.Sampler.Path = "/tmp/kick.wav"
	cfg.UI.LastCursorX = 4
	require.NoError(t, cfg.Save())

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.FileExists(t, path)

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audio:\n  bufferSize: 512\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Audio.BufferSize)
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, 33, cfg.Grid.Width)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sample rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"buffer size", func(c *Config) { c.Audio.BufferSize = -1 }},
		{"grid", func(c *Config) { c.Grid.Height = 0 }},
		{"bpm", func(c *Config) { c.Trigger.BPM = 0 }},
		{"subdivision", func(c *Config) { c.Trigger.Subdivision = 1.5 }},
		{"fps", func(c *Config) { c.UI.FPS = 0 }},
	}
	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audio: [1, 2"), 0644))
	_, err := LoadFile(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("grid:\n  width: 0\n"), 0644))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalid)
}
