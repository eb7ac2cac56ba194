package sequencer

import (
	"go-gridsynth/entity"
	"go-gridsynth/grid"
	"go-gridsynth/widgets"
)

// Selection describes the entity under the cursor
type Selection struct {
	Kind     entity.Kind
	Prompt   string
	Settings []entity.Setting
}

// Snapshot is a consistent copy of everything the view draws
type Snapshot struct {
	Rect     grid.Rect
	Cells    [][]widgets.Cell
	Cursor   grid.Position
	Selected *Selection
	Pending  string
	Message  string
	Muted    bool
	Entities int
	Chains   int
	Passes   uint64
	PeakL    float32
	PeakR    float32
}

// Snapshot copies the current state under the lock
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.engine.Grid()
	rect := g.Rect
	cells := make([][]widgets.Cell, rect.Height)
	for y := range cells {
		cells[y] = make([]widgets.Cell, rect.Width)
	}
	for _, ent := range g.Items() {
		p := ent.Position().Sub(rect.Origin)
		cells[p.Y][p.X] = widgets.Cell{Occupied: true, Kind: ent.Kind, Glyph: ent.Glyph()}
	}
	c := m.cursor.Sub(rect.Origin)
	cells[c.Y][c.X].Cursor = true

	s := Snapshot{
		Rect:     rect,
		Cells:    cells,
		Cursor:   m.cursor,
		Pending:  m.parser.Pending(),
		Message:  m.message,
		Muted:    m.muted,
		Entities: g.Len(),
		Chains:   len(m.engine.Wiring().Chains),
		Passes:   m.engine.Passes(),
		PeakL:    m.peakL,
		PeakR:    m.peakR,
	}
	if ent, ok := g.Get(m.cursor); ok {
		s.Selected = &Selection{Kind: ent.Kind, Prompt: ent.Prompt(), Settings: ent.Settings()}
	}
	return s
}
