package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-gridsynth/config"
	"go-gridsynth/debug"
	"go-gridsynth/engine"
	"go-gridsynth/grid"
	"go-gridsynth/sample"
)

// flags shared by every subcommand
type rootFlags struct {
	configPath string
	debug      bool
	noAudio    bool
	bufferSize int
	sampleRate int
	samplePath string
	palette    string
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	root := &cobra.Command{
		Use:   "gridsynth",
		Short: "gridsynth - a grid of step sequencers that charge, discharge and trigger samples",
		Long: `gridsynth places Steps, Triggers and Samplers on a grid. Adjacent Steps form
chains; Triggers pulse the Steps they touch, and Samplers play a clip when a
neighbouring Step fires.

Run without arguments to start the terminal interface.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if f.debug {
				if err := debug.Enable(); err != nil {
					return fmt.Errorf("failed to enable debug log: %w", err)
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			debug.Disable()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, &f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default ~/.config/go-gridsynth/config.yaml)")
	pf.BoolVar(&f.debug, "debug", false, "write a debug log to ~/.config/go-gridsynth/debug.log")
	pf.BoolVar(&f.noAudio, "no-audio", false, "run without opening the audio device")
	pf.IntVar(&f.bufferSize, "buffer-size", 0, "samples per buffer (overrides config)")
	pf.IntVar(&f.sampleRate, "sample-rate", 0, "sample rate in Hz (overrides config)")
	pf.StringVar(&f.samplePath, "sample", "", "WAV file for samplers (overrides config)")
	pf.StringVar(&f.palette, "palette", "", "embedded palette name or .gpl path")

	root.AddCommand(newRenderCmd(&f))
	return root
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(f *rootFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if f.debug {
		cfg.Debug = true
	}
	if f.noAudio {
		cfg.Audio.Enabled = false
	}
	if f.bufferSize != 0 {
		cfg.Audio.BufferSize = f.bufferSize
	}
	if f.sampleRate != 0 {
		cfg.Audio.SampleRate = f.sampleRate
	}
	if f.samplePath != "" {
		cfg.Sampler.Path = f.samplePath
	}
	if f.palette != "" {
		cfg.UI.Palette = f.palette
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	debug.Log("config", "loaded: %+v", *cfg)
	return cfg, nil
}

// saveCursor stores the cursor in the config file. The file is re-read so
// flag overrides are not persisted.
func saveCursor(f *rootFlags, cursor grid.Position) error {
	path := f.configPath
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return err
		}
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	cfg.UI.LastCursorX, cfg.UI.LastCursorY = cursor.X, cursor.Y
	return cfg.SaveFile(path)
}

func engineOptions(cfg *config.Config) engine.Options {
	return engine.Options{
		SampleRate:  cfg.Audio.SampleRate,
		BufferSize:  cfg.Audio.BufferSize,
		Width:       cfg.Grid.Width,
		Height:      cfg.Grid.Height,
		Gain:        cfg.Audio.Gain,
		StepLevel:   cfg.Step.Level,
		BPM:         float64(cfg.Trigger.BPM),
		Subdivision: float64(cfg.Trigger.Subdivision),
	}
}

// loadClip returns nil when no sample is configured
func loadClip(cfg *config.Config) (*sample.Clip, sample.Style, error) {
	style := sample.OneShot
	if cfg.Sampler.Loop {
		style = sample.Loop
	}
	if cfg.Sampler.Path == "" {
		return nil, style, nil
	}
	clip, err := sample.Load(cfg.Sampler.Path)
	if err != nil {
		return nil, style, err
	}
	if clip.SampleRate != cfg.Audio.SampleRate {
		debug.Log("config", "sample %s is %d Hz, engine runs at %d Hz; playing unresampled",
			clip.Name, clip.SampleRate, cfg.Audio.SampleRate)
	}
	return clip, style, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
