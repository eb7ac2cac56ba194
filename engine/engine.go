// Package engine drives one buffer at a time: every entity on the grid is
// processed exactly once, in grid storage order, then the monitored outputs
// are mixed into the stereo main outs.
package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/viterin/vek/vek32"

	"go-gridsynth/bus"
	"go-gridsynth/debug"
	"go-gridsynth/entity"
	"go-gridsynth/grid"
	"go-gridsynth/resolver"
	"go-gridsynth/sample"
)

var ErrBufferSize = errors.New("buffer size must be positive")

// Channel selects the main outs a monitor feeds.
type Channel int

const (
	Left Channel = 1 << iota
	Right
	Both = Left | Right
)

// Monitor routes one signal into the main outs.
type Monitor struct {
	Handle  bus.Handle
	Channel Channel
}

// Options are the engine's fixed parameters and the defaults for new
// entities.
type Options struct {
	SampleRate  int
	BufferSize  int
	Width       int
	Height      int
	Gain        float32
	StepLevel   float32
	BPM         float64
	Subdivision float64
}

func DefaultOptions() Options {
	return Options{
		SampleRate:  48000,
		BufferSize:  4800,
		Width:       33,
		Height:      17,
		Gain:        0.2,
		StepLevel:   1,
		BPM:         480,
		Subdivision: 0.25,
	}
}

type Engine struct {
	opts     Options
	bus      *bus.Bus
	grid     *resolver.Grid
	wiring   resolver.Wiring
	left     bus.Handle
	right    bus.Handle
	monitors []Monitor
	passes   uint64
}

func New(opts Options) (*Engine, error) {
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %d: must be positive", opts.SampleRate)
	}
	if opts.BufferSize <= 0 {
		return nil, fmt.Errorf("new engine: %w", ErrBufferSize)
	}
	b := bus.New(opts.BufferSize)
	main := b.NewID()
	left, err := b.Register(main, "left_out")
	if err != nil {
		return nil, err
	}
	right, err := b.Register(main, "right_out")
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:  opts,
		bus:   b,
		grid:  grid.New[*entity.Entity](grid.NewRect(opts.Width, opts.Height)),
		left:  left,
		right: right,
	}, nil
}

func (e *Engine) Options() Options        { return e.opts }
func (e *Engine) Bus() *bus.Bus           { return e.bus }
func (e *Engine) Grid() *resolver.Grid    { return e.grid }
func (e *Engine) Wiring() resolver.Wiring { return e.wiring }
func (e *Engine) Monitors() []Monitor     { return e.monitors }
func (e *Engine) Passes() uint64          { return e.passes }
func (e *Engine) SetGain(g float32)       { e.opts.Gain = g }

func (e *Engine) Get(p grid.Position) (*entity.Entity, bool) {
	return e.grid.Get(p)
}

// PlaceStep adds a Step with the default level at pos.
func (e *Engine) PlaceStep(pos grid.Position) (*entity.Entity, error) {
	return e.place(pos, func() (*entity.Entity, error) {
		return entity.NewStep(e.bus, e.opts.StepLevel)
	})
}

// PlaceTrigger adds a Trigger with the default tempo at pos.
func (e *Engine) PlaceTrigger(pos grid.Position) (*entity.Entity, error) {
	return e.place(pos, func() (*entity.Entity, error) {
		return entity.NewTrigger(e.bus, e.opts.BPM, e.opts.Subdivision)
	})
}

// PlaceSampler adds a Sampler playing clip at pos.
func (e *Engine) PlaceSampler(pos grid.Position, clip *sample.Clip, style sample.Style, gain float32) (*entity.Entity, error) {
	return e.place(pos, func() (*entity.Entity, error) {
		return entity.NewSampler(e.bus, clip, style, gain)
	})
}

func (e *Engine) place(pos grid.Position, create func() (*entity.Entity, error)) (*entity.Entity, error) {
	if !e.grid.Rect.Contains(pos) {
		return nil, fmt.Errorf("place at %v: %w", pos, grid.ErrOutOfBounds)
	}
	if !e.grid.IsEmpty(pos) {
		return nil, fmt.Errorf("place at %v: %w", pos, grid.ErrOccupied)
	}
	ent, err := create()
	if err != nil {
		return nil, err
	}
	if err := e.grid.Add(pos, ent); err != nil {
		ent.Release(e.bus)
		return nil, err
	}
	n := len(e.monitors)
	e.monitors = append(e.monitors, defaultMonitors(ent)...)
	if err := e.Resolve(); err != nil {
		e.grid.Remove(pos)
		e.monitors = e.monitors[:n]
		ent.Release(e.bus)
		return nil, err
	}
	debug.Log("edit", "placed %v at %v id=%d", ent.Kind, pos, ent.ID())
	return ent, nil
}

func defaultMonitors(ent *entity.Entity) []Monitor {
	switch ent.Kind {
	case entity.KindStep:
		return []Monitor{{Handle: ent.Step.Output, Channel: Both}}
	case entity.KindSampler:
		return []Monitor{
			{Handle: ent.Sampler.Left, Channel: Left},
			{Handle: ent.Sampler.Right, Channel: Right},
		}
	case entity.KindTrigger:
		return nil
	}
	panic(fmt.Sprintf("engine: unhandled kind %v", ent.Kind))
}

// Delete removes the entity at pos, drops its monitors and releases its
// buffers.
func (e *Engine) Delete(pos grid.Position) error {
	ent, ok := e.grid.Remove(pos)
	if !ok {
		return fmt.Errorf("delete at %v: %w", pos, grid.ErrEmpty)
	}
	id := ent.ID()
	e.monitors = slices.DeleteFunc(e.monitors, func(m Monitor) bool {
		return m.Handle.ID == id
	})
	ent.Release(e.bus)
	debug.Log("edit", "deleted %v at %v id=%d", ent.Kind, pos, id)
	return e.Resolve()
}

// Move relocates the entity at from to to. A move the wiring cannot follow
// is undone.
func (e *Engine) Move(from, to grid.Position) error {
	if err := e.grid.Move(from, to); err != nil {
		return err
	}
	if err := e.Resolve(); err != nil {
		if undo := e.grid.Move(to, from); undo != nil {
			return errors.Join(err, undo)
		}
		return err
	}
	return nil
}

// EditSetting parses text into setting i of the entity at pos.
func (e *Engine) EditSetting(pos grid.Position, i int, text string) error {
	ent, ok := e.grid.Get(pos)
	if !ok {
		return fmt.Errorf("edit at %v: %w", pos, grid.ErrEmpty)
	}
	if err := ent.EditSetting(i, text); err != nil {
		return err
	}
	debug.Log("edit", "%v at %v setting %d = %q", ent.Kind, pos, i, text)
	return nil
}

// Resolve recomputes the wiring. On failure the previous wiring stays.
func (e *Engine) Resolve() error {
	w, err := resolver.Resolve(e.grid, e.bus)
	if err != nil {
		return debug.Errorf("resolver", "resolve: %w", err)
	}
	e.wiring = w
	debug.Log("resolver", "resolved %d entities into %d chains", e.grid.Len(), len(w.Chains))
	return nil
}

// AddMonitor routes h into the main outs. The handle must be registered.
func (e *Engine) AddMonitor(h bus.Handle, ch Channel) error {
	if !e.bus.Has(h) {
		return fmt.Errorf("monitor %v: %w", h, bus.ErrUnregistered)
	}
	e.monitors = append(e.monitors, Monitor{Handle: h, Channel: ch})
	return nil
}

// Sample runs one pass of size samples and returns the stereo main outs. The
// returned slices belong to the engine and are overwritten by the next call.
// Monitors are checked before anything runs, so a bad monitor fails the call
// without advancing any entity.
func (e *Engine) Sample(size int) (left, right []float32, err error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("sample %d: %w", size, ErrBufferSize)
	}
	for _, m := range e.monitors {
		if !e.bus.Has(m.Handle) {
			return nil, nil, fmt.Errorf("sample: monitor %v: %w", m.Handle, bus.ErrUnregistered)
		}
	}
	e.bus.Resize(size)

	for _, ent := range e.grid.Items() {
		if err := ent.Process(e.bus, e.opts.SampleRate); err != nil {
			return nil, nil, fmt.Errorf("sample: %w", err)
		}
	}

	if left, err = e.bus.Buffer(e.left); err != nil {
		return nil, nil, err
	}
	if right, err = e.bus.Buffer(e.right); err != nil {
		return nil, nil, err
	}
	clear(left)
	clear(right)
	for _, m := range e.monitors {
		buf, err := e.bus.Buffer(m.Handle)
		if err != nil {
			return nil, nil, err
		}
		if m.Channel&Left != 0 {
			vek32.Add_Inplace(left, buf)
		}
		if m.Channel&Right != 0 {
			vek32.Add_Inplace(right, buf)
		}
	}
	vek32.MulNumber_Inplace(left, e.opts.Gain)
	vek32.MulNumber_Inplace(right, e.opts.Gain)

	e.passes++
	debug.LogEvery(500, "engine", "pass %d size=%d entities=%d", e.passes, size, e.grid.Len())
	return left, right, nil
}
