package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-gridsynth/entity"
	"go-gridsynth/theme"
)

// Cell is one grid position as the view sees it. Kind is only meaningful
// when Occupied is set.
type Cell struct {
	Occupied bool
	Kind     entity.Kind
	Glyph    entity.Glyph
	Cursor   bool
}

// Symbol maps an entity kind to its display rune
func Symbol(th *theme.Theme, k entity.Kind) rune {
	switch k {
	case entity.KindStep:
		return th.Symbols.Step
	case entity.KindTrigger:
		return th.Symbols.Trigger
	case entity.KindSampler:
		return th.Symbols.Sampler
	}
	panic(fmt.Sprintf("unknown entity kind %d", k))
}

// RenderCell renders a single cell with its glyph brightness
func RenderCell(th *theme.Theme, c Cell) string {
	style := lipgloss.NewStyle()
	var r rune
	switch {
	case c.Occupied:
		r = Symbol(th, c.Kind)
		style = style.Foreground(th.Intensity(c.Glyph.Intensity))
	case c.Cursor:
		r = th.Symbols.CursorEmpty
		style = style.Foreground(th.Cursor())
	default:
		r = th.Symbols.Empty
		style = style.Foreground(th.Muted())
	}
	if c.Cursor {
		style = style.Background(th.Surface()).Bold(true)
	}
	return style.Render(string(r))
}

// RenderGrid renders rows of cells, row 0 at the top
func RenderGrid(th *theme.Theme, rows [][]Cell) string {
	lines := make([]string, len(rows))
	for y, row := range rows {
		var line strings.Builder
		for x, c := range row {
			if x > 0 {
				line.WriteString(" ")
			}
			line.WriteString(RenderCell(th, c))
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

// RenderLegendItem renders a single legend item: "● Name - description"
func RenderLegendItem(th *theme.Theme, k entity.Kind, key, desc string) string {
	sym := lipgloss.NewStyle().Foreground(th.Accent()).Render(string(Symbol(th, k)))
	return fmt.Sprintf("  %s %-3s %s", sym, key, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
