// Package oto plays an audio.Reader through the system audio device.
package oto

import (
	"fmt"
	"io"
	"time"

	oto3 "github.com/ebitengine/oto/v3"

	"go-gridsynth/debug"
)

// Device owns the process-wide oto context and a single player.
type Device struct {
	ctx    *oto3.Context
	player *oto3.Player
}

// Open creates a stereo float32 context. oto allows one context per process.
func Open(sampleRate int, buffer time.Duration) (*Device, error) {
	ctx, ready, err := oto3.NewContext(&oto3.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto3.FormatFloat32LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	debug.Log("audio", "oto context ready at %d Hz, buffer %v", sampleRate, buffer)
	return &Device{ctx: ctx}, nil
}

// Play starts pulling frames from r. It returns immediately.
func (d *Device) Play(r io.Reader) {
	d.player = d.ctx.NewPlayer(r)
	d.player.Play()
}

// Err reports a playback or context failure, if any.
func (d *Device) Err() error {
	if d.player != nil {
		if err := d.player.Err(); err != nil {
			return fmt.Errorf("oto player: %w", err)
		}
	}
	if err := d.ctx.Err(); err != nil {
		return fmt.Errorf("oto context: %w", err)
	}
	return nil
}

// Close stops playback and suspends the context.
func (d *Device) Close() error {
	if d.player != nil {
		d.player.Pause()
	}
	if err := d.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}
