// Package sample decodes WAV files into clips and plays them back one frame
// at a time.
package sample

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
)

var ErrInvalidWAV = errors.New("not a valid wav file")

// Clip is decoded stereo audio. Mono files are duplicated to both channels;
// files with more than two channels keep the first two.
type Clip struct {
	Name       string
	SampleRate int
	Left       []float32
	Right      []float32
}

func (c *Clip) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Left)
}

// Load decodes the WAV file at path. The clip is named after the file.
func Load(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample: %w", err)
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Decode(f, name)
}

// Decode reads 8, 16 or 24-bit PCM from r.
func Decode(r io.ReadSeeker, name string) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if dec == nil || !dec.IsValidFile() {
		return nil, fmt.Errorf("decode %s: %w", name, ErrInvalidWAV)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	chans := int(dec.NumChans)
	if chans < 1 {
		return nil, fmt.Errorf("decode %s: no channels: %w", name, ErrInvalidWAV)
	}
	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24:
	default:
		return nil, fmt.Errorf("decode %s: unsupported bit depth %d: %w", name, depth, ErrInvalidWAV)
	}

	frames := len(buf.Data) / chans
	clip := &Clip{
		Name:       name,
		SampleRate: int(dec.SampleRate),
		Left:       make([]float32, frames),
		Right:      make([]float32, frames),
	}
	for i := 0; i < frames; i++ {
		l := toFloat(buf.Data[i*chans], depth)
		r := l
		if chans > 1 {
			r = toFloat(buf.Data[i*chans+1], depth)
		}
		clip.Left[i] = l
		clip.Right[i] = r
	}
	return clip, nil
}

// toFloat maps a PCM integer to [-1, 1). 8-bit PCM is unsigned.
func toFloat(v, depth int) float32 {
	if depth == 8 {
		return float32(v-128) / 128
	}
	return float32(v) / float32(int(1)<<(depth-1))
}
