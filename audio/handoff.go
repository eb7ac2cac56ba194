// Package audio moves rendered buffers from the engine to the audio device.
//
// Exactly one buffer is in flight at a time: the producer renders only after
// taking the drained token, and the consumer returns the token once it has
// used up the buffer it was handed. A slow producer stalls playback; nothing
// is dropped or reordered.
package audio

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"sync/atomic"
	"time"

	"go-gridsynth/debug"
)

// Renderer produces one stereo buffer of size samples per call.
type Renderer interface {
	Sample(size int) (left, right []float32, err error)
}

// Handoff is the single-slot channel between producer and consumer.
type Handoff struct {
	buffers chan []float32
	drained chan struct{}
}

func NewHandoff() *Handoff {
	h := &Handoff{
		buffers: make(chan []float32, 1),
		drained: make(chan struct{}, 1),
	}
	h.drained <- struct{}{}
	return h
}

// Stream renders interleaved stereo buffers into a Handoff.
type Stream struct {
	renderer Renderer
	size     int
	handoff  *Handoff
	buf      []float32

	rendered atomic.Uint64
	failed   atomic.Uint64
}

func NewStream(r Renderer, size int, h *Handoff) *Stream {
	return &Stream{
		renderer: r,
		size:     size,
		handoff:  h,
		buf:      make([]float32, 2*size),
	}
}

// Rendered returns how many buffers have been handed off.
func (s *Stream) Rendered() uint64 { return s.rendered.Load() }

// Failed returns how many passes returned an error and were replaced by
// silence.
func (s *Stream) Failed() uint64 { return s.failed.Load() }

// Run renders until ctx is cancelled.
func (s *Stream) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.handoff.drained:
		}

		left, right, err := s.renderer.Sample(s.size)
		if err != nil {
			s.failed.Add(1)
			debug.LogEvery(100, "audio", "render failed, sending silence: %v", err)
			clear(s.buf)
		} else {
			Interleave(s.buf, left, right)
		}

		select {
		case <-ctx.Done():
			return nil
		case s.handoff.buffers <- s.buf:
			s.rendered.Add(1)
		}
	}
}

// Interleave writes left and right as LRLR... into dst.
func Interleave(dst, left, right []float32) {
	for i := range left {
		dst[2*i] = left[i]
		dst[2*i+1] = right[i]
	}
}

// Reader is the consumer side: an io.Reader of float32 little-endian stereo
// frames for the device. Read blocks while no buffer is ready.
type Reader struct {
	ctx      context.Context
	handoff  *Handoff
	patience time.Duration

	pending []byte
	scratch []byte
	owed    bool

	underruns atomic.Uint64
}

// NewReader creates a reader that counts an underrun whenever it waits longer
// than patience for the next buffer.
func NewReader(ctx context.Context, h *Handoff, patience time.Duration) *Reader {
	return &Reader{ctx: ctx, handoff: h, patience: patience}
}

// Underruns returns how many times the device had to wait for the engine.
func (r *Reader) Underruns() uint64 { return r.underruns.Load() }

func (r *Reader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		if r.owed {
			r.handoff.drained <- struct{}{}
			r.owed = false
		}
		buf, err := r.next()
		if err != nil {
			return 0, err
		}
		r.owed = true
		r.scratch = EncodeFloat32LE(r.scratch[:0], buf)
		r.pending = r.scratch
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *Reader) next() ([]float32, error) {
	select {
	case buf := <-r.handoff.buffers:
		return buf, nil
	case <-r.ctx.Done():
		return nil, io.EOF
	default:
	}

	timer := time.NewTimer(r.patience)
	defer timer.Stop()
	select {
	case buf := <-r.handoff.buffers:
		return buf, nil
	case <-r.ctx.Done():
		return nil, io.EOF
	case <-timer.C:
		n := r.underruns.Add(1)
		debug.LogEvery(10, "audio", "device underrun, total %d", n)
	}

	select {
	case buf := <-r.handoff.buffers:
		return buf, nil
	case <-r.ctx.Done():
		return nil, io.EOF
	}
}

// EncodeFloat32LE appends buf to dst as little-endian IEEE 754 floats.
func EncodeFloat32LE(dst []byte, buf []float32) []byte {
	for _, v := range buf {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// Pace consumes buffers from h once per period without playing them, so the
// engine keeps real time when no device is open.
func Pace(ctx context.Context, h *Handoff, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.buffers:
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		h.drained <- struct{}{}
	}
}
