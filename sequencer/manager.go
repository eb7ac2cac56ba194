// Package sequencer owns the engine on behalf of the UI and the audio stream.
// Every edit and every sampling pass runs under one mutex, so the stream
// never observes a half-applied edit.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-gridsynth/command"
	"go-gridsynth/debug"
	"go-gridsynth/engine"
	"go-gridsynth/entity"
	"go-gridsynth/grid"
	"go-gridsynth/sample"
	"go-gridsynth/widgets"
)

var (
	ErrNoClip   = errors.New("no sample loaded")
	ErrGridFull = errors.New("grid is full")
)

// Options configure a Manager beyond the engine itself
type Options struct {
	FPS    int
	Cursor grid.Position

	// Clip is used for newly placed samplers; nil disables them.
	Clip         *sample.Clip
	SamplerStyle sample.Style
	SamplerGain  float32
}

// Manager serializes edits and sampling passes on one engine
type Manager struct {
	mu     sync.Mutex
	engine *engine.Engine
	opts   Options

	parser  command.Parser
	cursor  grid.Position
	muted   bool
	message string

	silence      []float32
	peakL, peakR float32
	tmp          []float32

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a new manager around e
func NewManager(e *engine.Engine, opts Options) *Manager {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	return &Manager{
		engine:     e,
		opts:       opts,
		cursor:     e.Grid().Rect.Clamp(opts.Cursor),
		UpdateChan: make(chan struct{}, 1),
	}
}

// Run posts a UI refresh at the configured FPS until ctx is done
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(m.opts.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.notifyUpdate()
		}
	}
}

// notifyUpdate notifies the TUI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// Sample runs one engine pass. While muted the engine still advances but
// silence is returned.
func (m *Manager) Sample(size int) (left, right []float32, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	left, right, err = m.engine.Sample(size)
	if err != nil {
		return nil, nil, err
	}
	m.peakL, m.tmp = widgets.Peak(left, m.tmp)
	m.peakR, m.tmp = widgets.Peak(right, m.tmp)
	if m.muted {
		if len(m.silence) != size {
			m.silence = make([]float32, size)
		}
		return m.silence, m.silence, nil
	}
	return left, right, nil
}

// HandleKey feeds one key to the command parser and applies the resulting
// command. It reports the command when one completed.
func (m *Manager) HandleKey(key string) (command.Command, bool) {
	m.mu.Lock()
	c, ok := m.parser.Feed(key)
	m.mu.Unlock()
	if ok {
		m.Apply(c)
	}
	m.notifyUpdate()
	return c, ok
}

// Apply performs c atomically with respect to Sample. Failures are also
// shown on the status line.
func (m *Manager) Apply(c command.Command) error {
	m.mu.Lock()
	err := m.apply(c)
	m.mu.Unlock()
	if err != nil {
		m.SetMessage(err.Error())
		debug.Log("edit", "%v failed: %v", c.Op, err)
	}
	return err
}

func (m *Manager) apply(c command.Command) error {
	rect := m.engine.Grid().Rect
	switch c.Op {
	case command.OpMove:
		m.cursor = rect.Clamp(m.cursor.Add(c.Delta))
	case command.OpMoveTo:
		m.cursor = rect.Clamp(c.Target)
	case command.OpAdd:
		return m.add(c)
	case command.OpDelete:
		if err := m.engine.Delete(m.cursor); err != nil {
			return err
		}
		m.message = ""
	case command.OpEdit:
		if _, ok := m.engine.Get(m.cursor); !ok {
			return fmt.Errorf("edit at %v: %w", m.cursor, grid.ErrEmpty)
		}
	case command.OpMute:
		m.muted = !m.muted
	case command.OpClear:
		m.message = ""
	case command.OpQuit:
	default:
		panic(fmt.Sprintf("sequencer: unhandled op %v", c.Op))
	}
	return nil
}

func (m *Manager) add(c command.Command) error {
	pos := m.cursor
	g := m.engine.Grid()
	if c.Nearest && !g.IsEmpty(pos) {
		p, ok := g.FindNearestEmpty(pos)
		if !ok {
			return ErrGridFull
		}
		pos = p
	}

	var (
		ent *entity.Entity
		err error
	)
	switch c.Kind {
	case entity.KindStep:
		ent, err = m.engine.PlaceStep(pos)
	case entity.KindTrigger:
		ent, err = m.engine.PlaceTrigger(pos)
	case entity.KindSampler:
		if m.opts.Clip == nil {
			return ErrNoClip
		}
		ent, err = m.engine.PlaceSampler(pos, m.opts.Clip, m.opts.SamplerStyle, m.opts.SamplerGain)
	default:
		panic(fmt.Sprintf("sequencer: unhandled kind %v", c.Kind))
	}
	if err != nil {
		return err
	}
	m.cursor = pos
	m.message = ent.Prompt()
	return nil
}

// EditSetting updates setting i of the entity under the cursor
func (m *Manager) EditSetting(i int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.engine.EditSetting(m.cursor, i, text); err != nil {
		m.message = err.Error()
		return err
	}
	if ent, ok := m.engine.Get(m.cursor); ok {
		m.message = ent.Prompt()
	}
	return nil
}

// SetMessage replaces the status line
func (m *Manager) SetMessage(msg string) {
	m.mu.Lock()
	m.message = msg
	m.mu.Unlock()
}

// Cursor returns the current cursor position
func (m *Manager) Cursor() grid.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// Muted reports whether the main outs are silenced
func (m *Manager) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}
