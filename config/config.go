package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

// AudioConfig controls the device stream
type AudioConfig struct {
	SampleRate int     `yaml:"sampleRate"`
	BufferSize int     `yaml:"bufferSize"`
	Enabled    bool    `yaml:"enabled"`
	Gain       float32 `yaml:"gain"`
}

// GridConfig sets the playing field size
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TriggerConfig holds defaults for newly placed triggers
type TriggerConfig struct {
	BPM         float32 `yaml:"bpm"`
	Subdivision float32 `yaml:"subdivision"`
}

type StepConfig struct {
	Level float32 `yaml:"level"`
}

// SamplerConfig names the clip loaded for new samplers
type SamplerConfig struct {
	Path string  `yaml:"path,omitempty"`
	Loop bool    `yaml:"loop"`
	Gain float32 `yaml:"gain"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette     string `yaml:"palette,omitempty"`
	FPS         int    `yaml:"fps"`
	LastCursorX int    `yaml:"lastCursorX"`
	LastCursorY int    `yaml:"lastCursorY"`
}

// Config is the main configuration structure
type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	Grid    GridConfig    `yaml:"grid"`
	Trigger TriggerConfig `yaml:"trigger"`
	Step    StepConfig    `yaml:"step"`
	Sampler SamplerConfig `yaml:"sampler"`
	UI      UIConfig      `yaml:"ui"`
	Debug   bool          `yaml:"debug"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 48000,
			BufferSize: 4800,
			Enabled:    true,
			Gain:       0.2,
		},
		Grid:    GridConfig{Width: 33, Height: 17},
		Trigger: TriggerConfig{BPM: 480, Subdivision: 0.25},
		Step:    StepConfig{Level: 1.0},
		Sampler: SamplerConfig{Loop: true, Gain: 1.0},
		UI:      UIConfig{FPS: 30},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-gridsynth"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Keys missing from the file keep their
// default values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with
func (c *Config) Validate() error {
	switch {
	case c.Audio.SampleRate <= 0:
		return fmt.Errorf("%w: audio.sampleRate must be positive, got %d", ErrInvalid, c.Audio.SampleRate)
	case c.Audio.BufferSize <= 0:
		return fmt.Errorf("%w: audio.bufferSize must be positive, got %d", ErrInvalid, c.Audio.BufferSize)
	case c.Grid.Width <= 0 || c.Grid.Height <= 0:
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalid, c.Grid.Width, c.Grid.Height)
	case c.Trigger.BPM <= 0:
		return fmt.Errorf("%w: trigger.bpm must be positive, got %g", ErrInvalid, c.Trigger.BPM)
	case c.Trigger.Subdivision < 0 || c.Trigger.Subdivision > 1:
		return fmt.Errorf("%w: trigger.subdivision must be within [0, 1], got %g", ErrInvalid, c.Trigger.Subdivision)
	case c.UI.FPS <= 0:
		return fmt.Errorf("%w: ui.fps must be positive, got %d", ErrInvalid, c.UI.FPS)
	}
	return nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
