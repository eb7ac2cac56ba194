// Package entity holds the things that can be placed on the grid. Entity is a
// closed sum over Kind: every operation switches on Kind and panics on a kind
// it does not know, so adding a kind means visiting every switch.
package entity

import (
	"fmt"
	"strconv"

	"go-gridsynth/bus"
	"go-gridsynth/grid"
	"go-gridsynth/sample"
)

type Kind int

const (
	KindStep Kind = iota
	KindTrigger
	KindSampler
)

func (k Kind) String() string {
	switch k {
	case KindStep:
		return "step"
	case KindTrigger:
		return "trigger"
	case KindSampler:
		return "sampler"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Entity is exactly one of Step, Trigger or Sampler, selected by Kind.
type Entity struct {
	Kind    Kind
	Step    *Step
	Trigger *Trigger
	Sampler *Sampler
}

// Glyph is what a renderer draws for an entity. Intensity is in [0, 1].
type Glyph struct {
	Rune      rune
	Intensity float64
}

func NewStep(b *bus.Bus, level float32) (*Entity, error) {
	s, err := newStep(b, level)
	if err != nil {
		return nil, err
	}
	return &Entity{Kind: KindStep, Step: s}, nil
}

func NewTrigger(b *bus.Bus, bpm, subdivision float64) (*Entity, error) {
	t, err := newTrigger(b, bpm, subdivision)
	if err != nil {
		return nil, err
	}
	return &Entity{Kind: KindTrigger, Trigger: t}, nil
}

func NewSampler(b *bus.Bus, clip *sample.Clip, style sample.Style, gain float32) (*Entity, error) {
	s, err := newSampler(b, clip, style, gain)
	if err != nil {
		return nil, err
	}
	return &Entity{Kind: KindSampler, Sampler: s}, nil
}

func (e *Entity) unknown() string {
	return fmt.Sprintf("entity: unhandled kind %v", e.Kind)
}

// ID is the single producing identity of the entity on the bus.
func (e *Entity) ID() bus.ID {
	switch e.Kind {
	case KindStep:
		return e.Step.id
	case KindTrigger:
		return e.Trigger.id
	case KindSampler:
		return e.Sampler.id
	}
	panic(e.unknown())
}

func (e *Entity) Position() grid.Position {
	switch e.Kind {
	case KindStep:
		return e.Step.pos
	case KindTrigger:
		return e.Trigger.pos
	case KindSampler:
		return e.Sampler.pos
	}
	panic(e.unknown())
}

func (e *Entity) SetPosition(p grid.Position) {
	switch e.Kind {
	case KindStep:
		e.Step.pos = p
	case KindTrigger:
		e.Trigger.pos = p
	case KindSampler:
		e.Sampler.pos = p
	default:
		panic(e.unknown())
	}
}

// Outputs lists every slot the entity writes during a pass.
func (e *Entity) Outputs() []bus.Handle {
	switch e.Kind {
	case KindStep:
		return []bus.Handle{e.Step.Output}
	case KindTrigger:
		return []bus.Handle{e.Trigger.Output}
	case KindSampler:
		return []bus.Handle{e.Sampler.Left, e.Sampler.Right}
	}
	panic(e.unknown())
}

// Inputs lists the handles the entity reads. Triggers read nothing.
func (e *Entity) Inputs() []bus.Handle {
	switch e.Kind {
	case KindStep:
		return e.Step.Inputs()
	case KindTrigger:
		return nil
	case KindSampler:
		return e.Sampler.Inputs()
	}
	panic(e.unknown())
}

// Process produces the entity's outputs for the current pass.
func (e *Entity) Process(b *bus.Bus, sampleRate int) error {
	switch e.Kind {
	case KindStep:
		return e.Step.Process(b)
	case KindTrigger:
		return e.Trigger.Process(b, sampleRate)
	case KindSampler:
		return e.Sampler.Process(b)
	}
	panic(e.unknown())
}

func (e *Entity) Prompt() string {
	switch e.Kind {
	case KindStep:
		return "step"
	case KindTrigger:
		return fmt.Sprintf("t %sbpm", strconv.FormatFloat(e.Trigger.BPM, 'g', -1, 64))
	case KindSampler:
		return "sample " + e.Sampler.player.Clip().Name
	}
	panic(e.unknown())
}

func (e *Entity) Settings() []Setting {
	switch e.Kind {
	case KindStep:
		return e.Step.settings()
	case KindTrigger:
		return e.Trigger.settings()
	case KindSampler:
		return e.Sampler.settings()
	}
	panic(e.unknown())
}

// UpdateSetting applies one setting, matched by description. A rejected
// setting leaves the entity unchanged.
func (e *Entity) UpdateSetting(s Setting) error {
	switch e.Kind {
	case KindStep:
		return e.Step.updateSetting(s)
	case KindTrigger:
		return e.Trigger.updateSetting(s)
	case KindSampler:
		return e.Sampler.updateSetting(s)
	}
	panic(e.unknown())
}

// EditSetting parses text into the setting at index i and applies it.
func (e *Entity) EditSetting(i int, text string) error {
	settings := e.Settings()
	if i < 0 || i >= len(settings) {
		return fmt.Errorf("setting %d of %v: %w", i, e.Kind, ErrUnknownSetting)
	}
	s, err := settings[i].Parse(text)
	if err != nil {
		return err
	}
	return e.UpdateSetting(s)
}

func (e *Entity) Glyph() Glyph {
	switch e.Kind {
	case KindStep:
		return e.Step.glyph()
	case KindTrigger:
		return e.Trigger.glyph()
	case KindSampler:
		return e.Sampler.glyph()
	}
	panic(e.unknown())
}

// Release returns the entity's buffers to the bus.
func (e *Entity) Release(b *bus.Bus) {
	b.Release(e.ID())
}
