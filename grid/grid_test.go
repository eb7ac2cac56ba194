package grid_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gridsynth/grid"
)

type cell struct {
	pos  grid.Position
	name string
}

func (c *cell) Position() grid.Position     { return c.pos }
func (c *cell) SetPosition(p grid.Position) { c.pos = p }

func TestAddRejectsOccupied(t *testing.T) {
	g := grid.New[*cell](grid.NewRect(4, 4))
	require.NoError(t, g.Add(grid.Pos(1, 1), &cell{name: "a"}))

	err := g.Add(grid.Pos(1, 1), &cell{name: "b"})
	assert.ErrorIs(t, err, grid.ErrOccupied)
	got, ok := g.Get(grid.Pos(1, 1))
	require.True(t, ok)
	assert.Equal(t, "a", got.name)
	assert.Equal(t, 1, g.Len())

	assert.ErrorIs(t, g.Add(grid.Pos(4, 0), &cell{}), grid.ErrOutOfBounds)
}

func TestStorageOrder(t *testing.T) {
	g := grid.New[*cell](grid.NewRect(8, 8))
	for i, p := range []grid.Position{{3, 3}, {0, 0}, {5, 1}, {2, 7}} {
		require.NoError(t, g.Add(p, &cell{name: string(rune('a' + i))}))
	}
	_, ok := g.Remove(grid.Pos(0, 0))
	require.True(t, ok)

	var names []string
	for _, c := range g.Items() {
		names = append(names, c.name)
	}
	assert.Equal(t, []string{"a", "c", "d"}, names)

	c, ok := g.Get(grid.Pos(2, 7))
	require.True(t, ok)
	assert.Equal(t, "d", c.name)
}

func TestMove(t *testing.T) {
	g := grid.New[*cell](grid.NewRect(4, 4))
	require.NoError(t, g.Add(grid.Pos(0, 0), &cell{name: "a"}))
	require.NoError(t, g.Add(grid.Pos(1, 0), &cell{name: "b"}))

	assert.ErrorIs(t, g.Move(grid.Pos(0, 0), grid.Pos(1, 0)), grid.ErrOccupied)
	assert.ErrorIs(t, g.Move(grid.Pos(2, 2), grid.Pos(3, 3)), grid.ErrEmpty)
	require.NoError(t, g.Move(grid.Pos(0, 0), grid.Pos(2, 2)))

	assert.True(t, g.IsEmpty(grid.Pos(0, 0)))
	c, ok := g.Get(grid.Pos(2, 2))
	require.True(t, ok)
	assert.Equal(t, grid.Pos(2, 2), c.Position())
}

func TestFindNearestEmpty(t *testing.T) {
	g := grid.New[*cell](grid.NewRect(3, 2))
	for _, p := range []grid.Position{{1, 0}, {2, 0}} {
		require.NoError(t, g.Add(p, &cell{}))
	}
	p, ok := g.FindNearestEmpty(grid.Pos(1, 0))
	require.True(t, ok)
	assert.Equal(t, grid.Pos(0, 1), p, "wraps to the next row")

	for _, p := range []grid.Position{{0, 1}, {1, 1}, {2, 1}} {
		require.NoError(t, g.Add(p, &cell{}))
	}
	p, ok = g.FindNearestEmpty(grid.Pos(2, 1))
	require.True(t, ok)
	assert.Equal(t, grid.Pos(0, 0), p, "wraps past the bottom")

	require.NoError(t, g.Add(grid.Pos(0, 0), &cell{}))
	_, ok = g.FindNearestEmpty(grid.Pos(0, 0))
	assert.False(t, ok)
}

func TestRandomEditsKeepPositionsUnique(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	g := grid.New[*cell](grid.NewRect(6, 5))
	for range 2000 {
		p := grid.Pos(rng.IntN(6), rng.IntN(5))
		if rng.IntN(3) == 0 {
			g.Remove(p)
		} else {
			_ = g.Add(p, &cell{})
		}

		seen := map[grid.Position]bool{}
		for _, c := range g.Items() {
			seen[c.Position()] = true
		}
		require.Equal(t, len(seen), g.Len())
	}
}

func TestPositionOrdering(t *testing.T) {
	ps := []grid.Position{{3, 2}, {2, 3}, {2, 2}, {0, 4}, {3, 3}}
	slices.SortFunc(ps, grid.Position.Compare)
	assert.Equal(t, []grid.Position{{2, 2}, {3, 2}, {2, 3}, {3, 3}, {0, 4}}, ps)
}

func TestRectClamp(t *testing.T) {
	r := grid.NewRect(4, 3)
	assert.Equal(t, grid.Pos(3, 0), r.Clamp(grid.Pos(10, -5)))
	assert.Equal(t, grid.Pos(3, 2), r.Max())
	assert.Equal(t, r.Max(), r.Clamp(grid.Pos(99, 99)))

	off := grid.Rect{Origin: grid.Pos(2, 1), Width: 2, Height: 2}
	assert.Equal(t, grid.Pos(2, 2), off.Clamp(grid.Pos(0, 5)))
}
