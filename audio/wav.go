package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// WAVWriter streams stereo buffers into a 16-bit PCM WAV file.
type WAVWriter struct {
	enc *wav.Encoder
	buf *goaudio.IntBuffer
	n   int
}

func NewWAVWriter(w io.WriteSeeker, sampleRate int) *WAVWriter {
	return &WAVWriter{
		enc: wav.NewEncoder(w, sampleRate, wavBitDepth, 2, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
			SourceBitDepth: wavBitDepth,
		},
	}
}

// Frames returns how many stereo frames have been written.
func (w *WAVWriter) Frames() int { return w.n }

func (w *WAVWriter) Write(left, right []float32) error {
	if len(left) != len(right) {
		return fmt.Errorf("channel length mismatch: %d != %d", len(left), len(right))
	}
	data := w.buf.Data[:0]
	for i := range left {
		data = append(data, toInt16(left[i]), toInt16(right[i]))
	}
	w.buf.Data = data
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write wav frames: %w", err)
	}
	w.n += len(left)
	return nil
}

// Close finalizes the header. The underlying writer stays open.
func (w *WAVWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return nil
}

func toInt16(v float32) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(v * 32767)
}
