package main

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go-gridsynth/audio"
	"go-gridsynth/debug"
	"go-gridsynth/engine"
	"go-gridsynth/grid"
	"go-gridsynth/oto"
	"go-gridsynth/sequencer"
	"go-gridsynth/theme"
	"go-gridsynth/tui"
)

// runInteractive starts the audio stream, the refresh loop and the TUI, and
// stops all three when any one of them ends.
func runInteractive(cmd *cobra.Command, f *rootFlags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	palette, err := theme.LoadPalette(cfg.UI.Palette)
	if err != nil {
		return fmt.Errorf("failed to load palette: %w", err)
	}
	clip, style, err := loadClip(cfg)
	if err != nil {
		return err
	}
	eng, err := engine.New(engineOptions(cfg))
	if err != nil {
		return err
	}
	mgr := sequencer.NewManager(eng, sequencer.Options{
		FPS:          cfg.UI.FPS,
		Cursor:       grid.Pos(cfg.UI.LastCursorX, cfg.UI.LastCursorY),
		Clip:         clip,
		SamplerStyle: style,
		SamplerGain:  cfg.Sampler.Gain,
	})

	period := time.Duration(cfg.Audio.BufferSize) * time.Second / time.Duration(cfg.Audio.SampleRate)
	var dev *oto.Device
	if cfg.Audio.Enabled {
		if dev, err = oto.Open(cfg.Audio.SampleRate, period); err != nil {
			return fmt.Errorf("%w (use --no-audio to run silently)", err)
		}
		defer dev.Close()
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	handoff := audio.NewHandoff()
	stream := audio.NewStream(mgr, cfg.Audio.BufferSize, handoff)
	g.Go(func() error { return stream.Run(ctx) })

	var meter tui.Meter
	if dev != nil {
		reader := audio.NewReader(ctx, handoff, period)
		dev.Play(reader)
		meter = reader
	} else {
		g.Go(func() error { return audio.Pace(ctx, handoff, period) })
	}
	g.Go(func() error { return mgr.Run(ctx) })

	p := tea.NewProgram(tui.NewModel(mgr, theme.New(palette), meter), tea.WithAltScreen(), tea.WithContext(ctx))
	g.Go(func() error {
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			err = nil
		}
		// quitting the TUI ends the session
		return errSessionDone{err}
	})

	err = g.Wait()
	var done errSessionDone
	if errors.As(err, &done) {
		err = done.err
	}
	debug.Log("tui", "session ended after %d passes, %d render failures", mgr.Snapshot().Passes, stream.Failed())

	if serr := saveCursor(f, mgr.Cursor()); serr != nil {
		debug.Log("config", "failed to save config: %v", serr)
	}
	return err
}

// errSessionDone cancels the errgroup when the TUI exits, carrying its error.
type errSessionDone struct{ err error }

func (e errSessionDone) Error() string {
	if e.err == nil {
		return "session done"
	}
	return e.err.Error()
}
