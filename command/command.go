// Package command turns key strings, as bubbletea reports them, into edit
// commands. Multi-key sequences (gg, dd) and numeric counts are buffered
// until they complete.
package command

import (
	"strconv"
	"strings"

	"go-gridsynth/entity"
	"go-gridsynth/grid"
)

// far is larger than any grid; moves by it are clamped to the edge.
const far = 1 << 16

const maxCount = 9999

type Op int

const (
	OpMove   Op = iota // relative cursor move by Delta
	OpMoveTo           // absolute cursor move to Target
	OpAdd              // place an entity of Kind at the cursor
	OpDelete           // delete the entity under the cursor
	OpEdit             // open the settings of the entity under the cursor
	OpMute
	OpClear
	OpQuit
)

func (o Op) String() string {
	switch o {
	case OpMove:
		return "move"
	case OpMoveTo:
		return "move-to"
	case OpAdd:
		return "add"
	case OpDelete:
		return "delete"
	case OpEdit:
		return "edit"
	case OpMute:
		return "mute"
	case OpClear:
		return "clear"
	case OpQuit:
		return "quit"
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

type Command struct {
	Op     Op
	Delta  grid.Position
	Target grid.Position
	Kind   entity.Kind
	// Nearest places at the nearest empty cell when the cursor is occupied.
	Nearest bool
}

var moves = map[string]grid.Position{
	"h": {X: -1}, "left": {X: -1},
	"l": {X: 1}, "right": {X: 1},
	"k": {Y: -1}, "up": {Y: -1},
	"j": {Y: 1}, "down": {Y: 1},
	"ctrl+u": {Y: -8},
	"ctrl+d": {Y: 8},
	"{":      {Y: -4},
	"}":      {Y: 4},
	"b":      {X: -4},
	"w":      {X: 4},
	"e":      {X: 4},
}

var adds = map[string]Command{
	"s": {Op: OpAdd, Kind: entity.KindStep},
	"t": {Op: OpAdd, Kind: entity.KindTrigger},
	"o": {Op: OpAdd, Kind: entity.KindSampler},
	"S": {Op: OpAdd, Kind: entity.KindStep, Nearest: true},
	"T": {Op: OpAdd, Kind: entity.KindTrigger, Nearest: true},
	"O": {Op: OpAdd, Kind: entity.KindSampler, Nearest: true},
}

// Parser buffers a count and an operator prefix between keys.
type Parser struct {
	count  int
	prefix string
}

// Pending returns the buffered input for display, e.g. "12" or "d".
func (p *Parser) Pending() string {
	var b strings.Builder
	if p.count > 0 {
		b.WriteString(strconv.Itoa(p.count))
	}
	b.WriteString(p.prefix)
	return b.String()
}

func (p *Parser) Reset() {
	p.count = 0
	p.prefix = ""
}

// Feed consumes one key. It reports false while a sequence is incomplete or
// when the key means nothing.
func (p *Parser) Feed(key string) (Command, bool) {
	switch key {
	case "esc", "ctrl+[":
		p.Reset()
		return Command{Op: OpClear}, true
	case "ctrl+c":
		p.Reset()
		return Command{Op: OpQuit}, true
	}

	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' && (key != "0" || p.count > 0) && p.prefix == "" {
		p.count = min(p.count*10+int(key[0]-'0'), maxCount)
		return Command{}, false
	}

	n := max(p.count, 1)
	prefix := p.prefix
	p.Reset()

	switch prefix {
	case "g":
		if key == "g" {
			return Command{Op: OpMoveTo}, true
		}
		return Command{}, false
	case "d":
		if key == "d" {
			return Command{Op: OpDelete}, true
		}
		return Command{}, false
	}

	if d, ok := moves[key]; ok {
		return Command{Op: OpMove, Delta: grid.Position{X: d.X * n, Y: d.Y * n}}, true
	}
	if c, ok := adds[key]; ok {
		return c, true
	}

	switch key {
	case "g", "d":
		p.count = n
		if n == 1 {
			p.count = 0
		}
		p.prefix = key
		return Command{}, false
	case "G":
		return Command{Op: OpMoveTo, Target: grid.Pos(far, far)}, true
	case "0":
		return Command{Op: OpMove, Delta: grid.Pos(-far, 0)}, true
	case "$":
		return Command{Op: OpMove, Delta: grid.Pos(far, 0)}, true
	case "enter":
		return Command{Op: OpEdit}, true
	case " ", "space":
		return Command{Op: OpMute}, true
	case "q":
		return Command{Op: OpQuit}, true
	}
	return Command{}, false
}
