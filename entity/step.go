package entity

import (
	"fmt"

	"github.com/viterin/vek/vek32"

	"go-gridsynth/bus"
	"go-gridsynth/grid"
)

// GateThreshold is the level at which an input counts as high.
const GateThreshold = 0.5

type StepState int

const (
	Idle StepState = iota
	Charging
	Discharging
)

func (s StepState) String() string {
	switch s {
	case Charging:
		return "charging"
	case Discharging:
		return "discharging"
	}
	return "idle"
}

// Step is a gate extender. While its combined input is high it accumulates
// one unit of charge per sample and outputs silence; once the input drops it
// outputs Level for as many samples as it has charge.
type Step struct {
	id     bus.ID
	pos    grid.Position
	state  StepState
	charge int

	MaxCharge int // high-water mark, display only
	Level     float32
	Output    bus.Handle

	inputs []bus.Handle
	gate   []float32
}

func newStep(b *bus.Bus, level float32) (*Step, error) {
	id := b.NewID()
	out, err := b.Register(id, "output")
	if err != nil {
		return nil, fmt.Errorf("new step: %w", err)
	}
	return &Step{id: id, Output: out, Level: level}, nil
}

func (s *Step) State() StepState { return s.state }
func (s *Step) Charge() int      { return s.charge }

// Trigger seeds the charge directly.
func (s *Step) Trigger(charge int) *Step {
	s.charge = max(charge, 0)
	return s
}

func (s *Step) ClearConnections() {
	s.inputs = s.inputs[:0]
}

func (s *Step) AddInput(h bus.Handle) {
	s.inputs = append(s.inputs, h)
}

func (s *Step) Inputs() []bus.Handle {
	return s.inputs
}

// Process runs the state machine once per sample of the current buffer.
func (s *Step) Process(b *bus.Bus) error {
	n := b.Size()
	if len(s.gate) != n {
		s.gate = make([]float32, n)
	}
	clear(s.gate)
	for _, in := range s.inputs {
		buf, err := b.Buffer(in)
		if err != nil {
			return fmt.Errorf("step %v input: %w", s.pos, err)
		}
		vek32.Maximum_Inplace(s.gate, buf)
	}
	out, err := b.Buffer(s.Output)
	if err != nil {
		return fmt.Errorf("step %v output: %w", s.pos, err)
	}

	for i := range out {
		switch {
		case s.gate[i] >= GateThreshold:
			s.state = Charging
			s.charge++
			out[i] = 0
		case s.charge > 0:
			s.state = Discharging
			s.charge--
			out[i] = s.Level
		default:
			s.state = Idle
			out[i] = 0
		}
		s.MaxCharge = max(s.MaxCharge, s.charge)
	}
	return nil
}

func (s *Step) settings() []Setting {
	return []Setting{FloatSetting("level", float64(s.Level))}
}

func (s *Step) updateSetting(set Setting) error {
	switch set.Description {
	case "level":
		if err := expectKind(set, SettingFloat); err != nil {
			return err
		}
		s.Level = float32(set.Float)
		return nil
	}
	return fmt.Errorf("step: %q: %w", set.Description, ErrUnknownSetting)
}

func (s *Step) glyph() Glyph {
	if s.state == Discharging && s.MaxCharge > 0 {
		return Glyph{Rune: '.', Intensity: float64(s.charge)/float64(s.MaxCharge)/2 + 0.5}
	}
	return Glyph{Rune: '.', Intensity: 0.2}
}
