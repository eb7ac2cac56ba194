package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gridsynth/bus"
	"go-gridsynth/engine"
	"go-gridsynth/entity"
	"go-gridsynth/grid"
	"go-gridsynth/sample"
)

func newEngine(t *testing.T, size int) *engine.Engine {
	t.Helper()
	opts := engine.DefaultOptions()
	opts.BufferSize = size
	opts.Gain = 1
	e, err := engine.New(opts)
	require.NoError(t, err)
	return e
}

func TestSeededStepThroughEngine(t *testing.T) {
	e := newEngine(t, 4)
	s, err := e.PlaceStep(grid.Pos(0, 0))
	require.NoError(t, err)
	require.NoError(t, s.UpdateSetting(entity.FloatSetting("level", 0.8)))
	s.Step.Trigger(3)

	left, right, err := e.Sample(4)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.8, 0.8, 0.8, 0}, left)
	assert.Equal(t, left, right)
	assert.Equal(t, entity.Idle, s.Step.State())
}

func TestTwoStepChainMonitoredSum(t *testing.T) {
	e := newEngine(t, 4)
	first, err := e.PlaceStep(grid.Pos(0, 0))
	require.NoError(t, err)
	second, err := e.PlaceStep(grid.Pos(1, 0))
	require.NoError(t, err)
	first.Step.Level = 0.8
	second.Step.Level = 0.6
	first.Step.Trigger(3)

	left, _, err := e.Sample(4)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.8, 0.8, 0.8, 0.6}, left)

	left, _, err = e.Sample(4)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.6, 0, 0}, left)
	assert.Equal(t, uint64(2), e.Passes())
}

func TestOrderDependenceOneBufferDelay(t *testing.T) {
	e := newEngine(t, 4)
	// the downstream step is stored first, so it sees last pass's output
	second, err := e.PlaceStep(grid.Pos(1, 0))
	require.NoError(t, err)
	first, err := e.PlaceStep(grid.Pos(0, 0))
	require.NoError(t, err)
	require.Equal(t, []bus.Handle{first.Step.Output}, second.Step.Inputs())
	first.Step.Trigger(2)

	_, _, err = e.Sample(4)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Step.Charge())

	_, _, err = e.Sample(4)
	require.NoError(t, err)
	assert.Equal(t, entity.Discharging, second.Step.State())
}

func TestShorterPassKeepsOneBufferDelay(t *testing.T) {
	e := newEngine(t, 4)
	second, err := e.PlaceStep(grid.Pos(1, 0))
	require.NoError(t, err)
	first, err := e.PlaceStep(grid.Pos(0, 0))
	require.NoError(t, err)
	first.Step.Trigger(6)

	_, _, err = e.Sample(4)
	require.NoError(t, err)
	assert.Equal(t, entity.Idle, second.Step.State())

	// the downstream step reads the head of the previous, longer buffer
	_, _, err = e.Sample(2)
	require.NoError(t, err)
	assert.Equal(t, entity.Charging, second.Step.State())
	assert.Equal(t, 2, second.Step.Charge())
}

func TestFailedPlaceLeavesEngineUntouched(t *testing.T) {
	e := newEngine(t, 4)
	head, err := e.PlaceStep(grid.Pos(0, 0))
	require.NoError(t, err)
	_, err = e.PlaceStep(grid.Pos(5, 5))
	require.NoError(t, err)
	e.Bus().Release(head.ID())
	buffers := e.Bus().Len()

	_, err = e.PlaceStep(grid.Pos(1, 0))
	assert.ErrorIs(t, err, bus.ErrUnregistered)
	_, ok := e.Get(grid.Pos(1, 0))
	assert.False(t, ok)
	assert.Equal(t, 2, e.Grid().Len())
	assert.Len(t, e.Monitors(), 2)
	assert.Equal(t, buffers, e.Bus().Len())

	err = e.Move(grid.Pos(5, 5), grid.Pos(0, 1))
	assert.ErrorIs(t, err, bus.ErrUnregistered)
	_, ok = e.Get(grid.Pos(5, 5))
	assert.True(t, ok, "a move the wiring rejects is undone")
	_, ok = e.Get(grid.Pos(0, 1))
	assert.False(t, ok)
}

func TestPlaceRejectsOccupied(t *testing.T) {
	e := newEngine(t, 4)
	_, err := e.PlaceStep(grid.Pos(2, 2))
	require.NoError(t, err)
	ids := e.Bus().Len()

	_, err = e.PlaceTrigger(grid.Pos(2, 2))
	assert.ErrorIs(t, err, grid.ErrOccupied)
	assert.Equal(t, 1, e.Grid().Len())
	assert.Equal(t, ids, e.Bus().Len(), "a refused placement allocates nothing")

	_, err = e.PlaceStep(grid.Pos(-1, 0))
	assert.ErrorIs(t, err, grid.ErrOutOfBounds)
}

func TestTriggerDrivesChain(t *testing.T) {
	opts := engine.DefaultOptions()
	opts.SampleRate = 8
	opts.BufferSize = 8
	opts.BPM = 60
	opts.Subdivision = 0.25
	opts.Gain = 1
	e, err := engine.New(opts)
	require.NoError(t, err)

	_, err = e.PlaceTrigger(grid.Pos(0, 0))
	require.NoError(t, err)
	s, err := e.PlaceStep(grid.Pos(1, 0))
	require.NoError(t, err)

	// the trigger is high at sample 0 and again after the wrap at sample 7
	left, _, err := e.Sample(8)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0, 0, 0, 0, 0, 0}, left)
	assert.Equal(t, 1, s.Step.Charge())
	assert.Equal(t, entity.Charging, s.Step.State())
}

func TestDeleteDropsMonitorsAndRewires(t *testing.T) {
	e := newEngine(t, 4)
	for x := 0; x < 3; x++ {
		_, err := e.PlaceStep(grid.Pos(x, 0))
		require.NoError(t, err)
	}
	require.Len(t, e.Monitors(), 3)
	require.Len(t, e.Wiring().Chains, 1)

	require.NoError(t, e.Delete(grid.Pos(1, 0)))
	assert.Len(t, e.Monitors(), 2)
	assert.Len(t, e.Wiring().Chains, 2)
	last, ok := e.Get(grid.Pos(2, 0))
	require.True(t, ok)
	assert.Empty(t, last.Step.Inputs())

	assert.ErrorIs(t, e.Delete(grid.Pos(1, 0)), grid.ErrEmpty)
	_, _, err := e.Sample(4)
	require.NoError(t, err)
}

func TestMoveRewires(t *testing.T) {
	e := newEngine(t, 4)
	_, err := e.PlaceStep(grid.Pos(0, 0))
	require.NoError(t, err)
	_, err = e.PlaceStep(grid.Pos(5, 5))
	require.NoError(t, err)
	require.Len(t, e.Wiring().Chains, 2)

	require.NoError(t, e.Move(grid.Pos(5, 5), grid.Pos(0, 1)))
	assert.Len(t, e.Wiring().Chains, 1)
}

func TestUnregisteredMonitorIsConfigurationError(t *testing.T) {
	e := newEngine(t, 4)
	s, err := e.PlaceStep(grid.Pos(0, 0))
	require.NoError(t, err)
	s.Step.Trigger(10)

	assert.ErrorIs(t, e.AddMonitor(bus.Handle{ID: 999, Slot: "output"}, engine.Both), bus.ErrUnregistered)

	require.NoError(t, e.AddMonitor(s.Step.Output, engine.Left))
	e.Bus().Release(s.ID())
	_, _, err = e.Sample(4)
	assert.ErrorIs(t, err, bus.ErrUnregistered)
	assert.Equal(t, 10, s.Step.Charge(), "a failed call does not advance entities")
}

func TestSampleSizes(t *testing.T) {
	e := newEngine(t, 4)
	_, err := e.PlaceTrigger(grid.Pos(0, 0))
	require.NoError(t, err)

	_, _, err = e.Sample(0)
	assert.ErrorIs(t, err, engine.ErrBufferSize)

	for _, n := range []int{1, 7, 256} {
		left, right, err := e.Sample(n)
		require.NoError(t, err)
		assert.Len(t, left, n)
		assert.Len(t, right, n)
	}
}

func TestSamplerRoutesStereo(t *testing.T) {
	e := newEngine(t, 3)
	clip := &sample.Clip{Name: "pan", Left: []float32{0.5, 0.5, 0.5}, Right: []float32{0, 0, 0}}
	_, err := e.PlaceSampler(grid.Pos(3, 3), clip, sample.Loop, 1)
	require.NoError(t, err)

	left, right, err := e.Sample(3)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5, 0.5}, left)
	assert.Equal(t, []float32{0, 0, 0}, right)
}

func TestEditSetting(t *testing.T) {
	e := newEngine(t, 4)
	tr, err := e.PlaceTrigger(grid.Pos(0, 0))
	require.NoError(t, err)

	require.NoError(t, e.EditSetting(grid.Pos(0, 0), 0, "140"))
	assert.Equal(t, 140.0, tr.Trigger.BPM)
	assert.ErrorIs(t, e.EditSetting(grid.Pos(0, 0), 1, "abc"), entity.ErrInvalidSetting)
	assert.ErrorIs(t, e.EditSetting(grid.Pos(9, 9), 0, "1"), grid.ErrEmpty)
}

func TestGainScalesMix(t *testing.T) {
	e := newEngine(t, 2)
	s, err := e.PlaceStep(grid.Pos(0, 0))
	require.NoError(t, err)
	s.Step.Trigger(2)
	e.SetGain(0.5)

	left, _, err := e.Sample(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, left)
}
