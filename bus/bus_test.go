package bus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gridsynth/bus"
)

func TestIDsAreMonotonic(t *testing.T) {
	b := bus.New(4)
	a := b.NewID()
	c := b.NewID()
	b.Release(a)
	d := b.NewID()
	assert.Less(t, a, c)
	assert.Less(t, c, d)
	assert.Equal(t, 2, b.Len())
}

func TestRegisterReadWrite(t *testing.T) {
	b := bus.New(4)
	id := b.NewID()
	h, err := b.Register(id, "output")
	require.NoError(t, err)
	assert.Equal(t, bus.Handle{ID: id, Slot: "output"}, h)

	require.NoError(t, b.Write(h, []float32{1, 2}))
	dst := make([]float32, b.Size())
	require.NoError(t, b.Read(h, dst))
	assert.Equal(t, []float32{1, 2, 0, 0}, dst)

	again, err := b.Register(id, "output")
	require.NoError(t, err)
	assert.Equal(t, h, again)
	require.NoError(t, b.Read(again, dst))
	assert.Equal(t, []float32{1, 2, 0, 0}, dst, "re-registering keeps the buffer")
}

func TestUnregisteredHandles(t *testing.T) {
	b := bus.New(4)
	id := b.NewID()
	h, err := b.Register(id, "output")
	require.NoError(t, err)

	_, err = b.Buffer(bus.Handle{ID: id, Slot: "missing"})
	assert.ErrorIs(t, err, bus.ErrUnregistered)

	_, err = b.Register(id+10, "output")
	assert.ErrorIs(t, err, bus.ErrUnregistered)

	b.Release(id)
	assert.False(t, b.Has(h))
	assert.ErrorIs(t, b.Write(h, []float32{1}), bus.ErrUnregistered)
}

func TestResize(t *testing.T) {
	b := bus.New(2)
	h, err := b.Register(b.NewID(), "output")
	require.NoError(t, err)
	require.NoError(t, b.Write(h, []float32{0.5, 1}))
	b.Resize(8)
	buf, err := b.Buffer(h)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 1, 0, 0, 0, 0, 0, 0}, buf)
	assert.Equal(t, 8, b.Size())

	b.Resize(1)
	buf, err = b.Buffer(h)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, buf, "shrinking keeps the leading samples")
}
