package bus

import (
	"errors"
	"fmt"
)

// ErrUnregistered is returned when a handle was never issued by the bus, or
// its identifier has been released.
var ErrUnregistered = errors.New("unregistered signal handle")

// ID identifies one producing entity. IDs are assigned monotonically and are
// never reused within a Bus.
type ID uint64

// Handle names one (entity, slot) channel. It is a plain value and carries no
// ownership of the buffer it refers to.
type Handle struct {
	ID   ID
	Slot string
}

func (h Handle) String() string {
	return fmt.Sprintf("%d/%s", h.ID, h.Slot)
}

// Bus owns the per-pass sample buffers of every registered slot. Buffers
// persist between passes, so a slot read before its producer ran in the
// current pass returns what was written in the previous pass.
type Bus struct {
	size   int
	nextID ID
	arena  map[ID]map[string][]float32
}

// New creates a bus whose buffers hold size samples.
func New(size int) *Bus {
	return &Bus{
		size:  size,
		arena: make(map[ID]map[string][]float32),
	}
}

// Size returns the configured buffer size.
func (b *Bus) Size() int {
	return b.size
}

// Resize changes the buffer size of every registered slot. The leading
// samples of each buffer are kept so a consumer stored before its producer
// still reads the previous pass; growth is zero-filled.
func (b *Bus) Resize(size int) {
	if size == b.size {
		return
	}
	b.size = size
	for _, slots := range b.arena {
		for name, old := range slots {
			buf := make([]float32, size)
			copy(buf, old)
			slots[name] = buf
		}
	}
}

// NewID allocates a fresh identifier.
func (b *Bus) NewID() ID {
	b.nextID++
	id := b.nextID
	b.arena[id] = make(map[string][]float32)
	return id
}

// Register adds a named slot for id and returns its handle. Registering an
// existing slot returns the same handle and keeps its buffer.
func (b *Bus) Register(id ID, slot string) (Handle, error) {
	slots, ok := b.arena[id]
	if !ok {
		return Handle{}, fmt.Errorf("register %d/%s: %w", id, slot, ErrUnregistered)
	}
	if _, ok := slots[slot]; !ok {
		slots[slot] = make([]float32, b.size)
	}
	return Handle{ID: id, Slot: slot}, nil
}

// Release drops every buffer owned by id. The identifier itself is retired,
// never handed out again.
func (b *Bus) Release(id ID) {
	delete(b.arena, id)
}

// Has reports whether h refers to a live slot.
func (b *Bus) Has(h Handle) bool {
	slots, ok := b.arena[h.ID]
	if !ok {
		return false
	}
	_, ok = slots[h.Slot]
	return ok
}

// Len returns the number of live identifiers.
func (b *Bus) Len() int {
	return len(b.arena)
}

// Buffer returns the live buffer for h. Producers write into it in place;
// the slice is valid until the next Resize or Release.
func (b *Bus) Buffer(h Handle) ([]float32, error) {
	slots, ok := b.arena[h.ID]
	if !ok {
		return nil, fmt.Errorf("buffer %v: %w", h, ErrUnregistered)
	}
	buf, ok := slots[h.Slot]
	if !ok {
		return nil, fmt.Errorf("buffer %v: %w", h, ErrUnregistered)
	}
	return buf, nil
}

// Read copies the current buffer for h into dst, which must hold at least
// Size samples.
func (b *Bus) Read(h Handle, dst []float32) error {
	buf, err := b.Buffer(h)
	if err != nil {
		return err
	}
	copy(dst, buf)
	return nil
}

// Write replaces the buffer for h with samples. Samples beyond Size are
// ignored, missing ones are zeroed.
func (b *Bus) Write(h Handle, samples []float32) error {
	buf, err := b.Buffer(h)
	if err != nil {
		return err
	}
	n := copy(buf, samples)
	clear(buf[n:])
	return nil
}
