package entity

import (
	"fmt"

	"go-gridsynth/bus"
	"go-gridsynth/grid"
)

// Trigger is a clock: a pulse at BPM, high for the first Subdivision of each
// period.
type Trigger struct {
	id    bus.ID
	pos   grid.Position
	phase float64

	BPM         float64
	Subdivision float64
	Output      bus.Handle
}

func newTrigger(b *bus.Bus, bpm, subdivision float64) (*Trigger, error) {
	id := b.NewID()
	out, err := b.Register(id, "output")
	if err != nil {
		return nil, fmt.Errorf("new trigger: %w", err)
	}
	return &Trigger{id: id, Output: out, BPM: bpm, Subdivision: subdivision}, nil
}

func (t *Trigger) Phase() float64 { return t.phase }
func (t *Trigger) High() bool     { return t.phase < t.Subdivision }

func (t *Trigger) Process(b *bus.Bus, sampleRate int) error {
	out, err := b.Buffer(t.Output)
	if err != nil {
		return fmt.Errorf("trigger %v output: %w", t.pos, err)
	}
	inc := t.BPM / 60 / float64(sampleRate)
	for i := range out {
		t.phase += inc
		if t.phase >= 1 {
			t.phase = 0
		}
		if t.phase < t.Subdivision {
			out[i] = 1
		} else {
			out[i] = 0
		}
	}
	return nil
}

func (t *Trigger) settings() []Setting {
	return []Setting{
		FloatSetting("bpm", t.BPM),
		FloatSetting("div", t.Subdivision),
	}
}

func (t *Trigger) updateSetting(s Setting) error {
	if err := expectKind(s, SettingFloat); err != nil {
		return err
	}
	switch s.Description {
	case "bpm":
		if s.Float <= 0 {
			return settingError(s, "must be positive")
		}
		t.BPM = s.Float
	case "div":
		if s.Float < 0 || s.Float > 1 {
			return settingError(s, "must be between 0 and 1")
		}
		t.Subdivision = s.Float
	default:
		return fmt.Errorf("trigger: %q: %w", s.Description, ErrUnknownSetting)
	}
	return nil
}

func (t *Trigger) glyph() Glyph {
	if t.High() {
		return Glyph{Rune: 't', Intensity: 1}
	}
	return Glyph{Rune: 't', Intensity: 0.6}
}
