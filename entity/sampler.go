package entity

import (
	"fmt"

	"github.com/viterin/vek/vek32"

	"go-gridsynth/bus"
	"go-gridsynth/grid"
	"go-gridsynth/sample"
)

// Sampler plays a clip into two output slots. A rising edge on its combined
// gate input restarts the clip.
type Sampler struct {
	id     bus.ID
	pos    grid.Position
	player *sample.Player
	high   bool

	Gain  float32
	Left  bus.Handle
	Right bus.Handle

	inputs []bus.Handle
	gate   []float32
}

func newSampler(b *bus.Bus, clip *sample.Clip, style sample.Style, gain float32) (*Sampler, error) {
	id := b.NewID()
	left, err := b.Register(id, "left")
	if err != nil {
		return nil, fmt.Errorf("new sampler: %w", err)
	}
	right, err := b.Register(id, "right")
	if err != nil {
		return nil, fmt.Errorf("new sampler: %w", err)
	}
	return &Sampler{
		id:     id,
		player: sample.NewPlayer(clip, style),
		Gain:   gain,
		Left:   left,
		Right:  right,
	}, nil
}

func (s *Sampler) Player() *sample.Player { return s.player }

func (s *Sampler) ClearConnections() {
	s.inputs = s.inputs[:0]
}

func (s *Sampler) AddInput(h bus.Handle) {
	s.inputs = append(s.inputs, h)
}

func (s *Sampler) Inputs() []bus.Handle {
	return s.inputs
}

func (s *Sampler) Process(b *bus.Bus) error {
	n := b.Size()
	if len(s.gate) != n {
		s.gate = make([]float32, n)
	}
	clear(s.gate)
	for _, in := range s.inputs {
		buf, err := b.Buffer(in)
		if err != nil {
			return fmt.Errorf("sampler %v input: %w", s.pos, err)
		}
		vek32.Maximum_Inplace(s.gate, buf)
	}
	left, err := b.Buffer(s.Left)
	if err != nil {
		return fmt.Errorf("sampler %v left: %w", s.pos, err)
	}
	right, err := b.Buffer(s.Right)
	if err != nil {
		return fmt.Errorf("sampler %v right: %w", s.pos, err)
	}
	for i := range left {
		high := s.gate[i] >= GateThreshold
		if high && !s.high {
			s.player.Restart()
		}
		s.high = high
		l, r := s.player.Next()
		left[i] = l * s.Gain
		right[i] = r * s.Gain
	}
	return nil
}

func (s *Sampler) settings() []Setting {
	loop := 0
	if s.player.Style() == sample.Loop {
		loop = 1
	}
	return []Setting{
		FloatSetting("gain", float64(s.Gain)),
		IntegerSetting("loop", loop),
	}
}

func (s *Sampler) updateSetting(set Setting) error {
	switch set.Description {
	case "gain":
		if err := expectKind(set, SettingFloat); err != nil {
			return err
		}
		if set.Float < 0 {
			return settingError(set, "must not be negative")
		}
		s.Gain = float32(set.Float)
	case "loop":
		if err := expectKind(set, SettingInteger); err != nil {
			return err
		}
		switch set.Integer {
		case 0:
			s.player.SetStyle(sample.OneShot)
		case 1:
			s.player.SetStyle(sample.Loop)
		default:
			return settingError(set, "must be 0 or 1")
		}
	default:
		return fmt.Errorf("sampler: %q: %w", set.Description, ErrUnknownSetting)
	}
	return nil
}

func (s *Sampler) glyph() Glyph {
	if s.player.Clip().Len() > 0 && !s.player.Done() {
		return Glyph{Rune: 'o', Intensity: 1}
	}
	return Glyph{Rune: 'o', Intensity: 0.4}
}
