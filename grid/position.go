package grid

import "fmt"

// Position is a grid cell. Positions are ordered row-major: by Y, then X.
type Position struct {
	X, Y int
}

func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func (p Position) Add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// Less reports whether p sorts before q in row-major order.
func (p Position) Less(q Position) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

// Compare is Less as a three-way comparison, for slices.SortFunc.
func (p Position) Compare(q Position) int {
	switch {
	case p.Less(q):
		return -1
	case q.Less(p):
		return 1
	}
	return 0
}

// Orthogonal neighbour offsets in discovery order: right, down, left, up.
var neighbourOffsets = [4]Position{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// Neighbours returns the four orthogonally adjacent cells of p.
func (p Position) Neighbours() [4]Position {
	var n [4]Position
	for i, o := range neighbourOffsets {
		n[i] = p.Add(o)
	}
	return n
}

// Rect is an axis-aligned block of cells with its top-left corner at Origin.
type Rect struct {
	Origin        Position
	Width, Height int
}

func NewRect(width, height int) Rect {
	return Rect{Width: width, Height: height}
}

func (r Rect) Contains(p Position) bool {
	return p.X >= r.Origin.X && p.X < r.Origin.X+r.Width &&
		p.Y >= r.Origin.Y && p.Y < r.Origin.Y+r.Height
}

// Clamp moves p to the nearest cell inside r.
func (r Rect) Clamp(p Position) Position {
	end := r.Max()
	p.X = min(max(p.X, r.Origin.X), end.X)
	p.Y = min(max(p.Y, r.Origin.Y), end.Y)
	return p
}

// Max returns the bottom-right cell.
func (r Rect) Max() Position {
	return Position{X: r.Origin.X + r.Width - 1, Y: r.Origin.Y + r.Height - 1}
}
