package grid

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrOccupied    = errors.New("position is occupied")
	ErrOutOfBounds = errors.New("position is outside the grid")
	ErrEmpty       = errors.New("position is empty")
)

// Placeable is anything the grid can hold.
type Placeable interface {
	Position() Position
	SetPosition(Position)
}

// Grid maps positions to items with at most one item per position. Items are
// kept in insertion order, which is the order Items returns them in.
type Grid[T Placeable] struct {
	Rect  Rect
	items []T
	index map[Position]int
}

func New[T Placeable](rect Rect) *Grid[T] {
	return &Grid[T]{
		Rect:  rect,
		index: make(map[Position]int),
	}
}

// Add places item at pos. It fails without mutating anything if pos is
// occupied or outside the grid.
func (g *Grid[T]) Add(pos Position, item T) error {
	if !g.Rect.Contains(pos) {
		return fmt.Errorf("add at %v: %w", pos, ErrOutOfBounds)
	}
	if _, ok := g.index[pos]; ok {
		return fmt.Errorf("add at %v: %w", pos, ErrOccupied)
	}
	item.SetPosition(pos)
	g.index[pos] = len(g.items)
	g.items = append(g.items, item)
	return nil
}

// Remove deletes and returns the item at pos.
func (g *Grid[T]) Remove(pos Position) (T, bool) {
	i, ok := g.index[pos]
	if !ok {
		var zero T
		return zero, false
	}
	item := g.items[i]
	g.items = slices.Delete(g.items, i, i+1)
	delete(g.index, pos)
	for j := i; j < len(g.items); j++ {
		g.index[g.items[j].Position()] = j
	}
	return item, true
}

// Move relocates the item at from to the empty cell to. Storage order is kept.
func (g *Grid[T]) Move(from, to Position) error {
	i, ok := g.index[from]
	if !ok {
		return fmt.Errorf("move from %v: %w", from, ErrEmpty)
	}
	if from == to {
		return nil
	}
	if !g.Rect.Contains(to) {
		return fmt.Errorf("move to %v: %w", to, ErrOutOfBounds)
	}
	if _, ok := g.index[to]; ok {
		return fmt.Errorf("move to %v: %w", to, ErrOccupied)
	}
	delete(g.index, from)
	g.index[to] = i
	g.items[i].SetPosition(to)
	return nil
}

func (g *Grid[T]) Get(pos Position) (T, bool) {
	i, ok := g.index[pos]
	if !ok {
		var zero T
		return zero, false
	}
	return g.items[i], true
}

func (g *Grid[T]) IsEmpty(pos Position) bool {
	_, ok := g.index[pos]
	return !ok
}

// Items returns the stored items in storage order. The slice must not be
// modified.
func (g *Grid[T]) Items() []T {
	return g.items
}

func (g *Grid[T]) Len() int {
	return len(g.items)
}

// FindNearestEmpty scans row-major from start, wrapping at the end of each
// row and at the bottom of the grid, and returns the first empty cell.
func (g *Grid[T]) FindNearestEmpty(start Position) (Position, bool) {
	start = g.Rect.Clamp(start)
	w, h := g.Rect.Width, g.Rect.Height
	if w <= 0 || h <= 0 {
		return Position{}, false
	}
	offset := (start.Y-g.Rect.Origin.Y)*w + (start.X - g.Rect.Origin.X)
	for n := 0; n < w*h; n++ {
		k := (offset + n) % (w * h)
		p := Position{X: g.Rect.Origin.X + k%w, Y: g.Rect.Origin.Y + k/w}
		if g.IsEmpty(p) {
			return p, true
		}
	}
	return Position{}, false
}
