// Package resolver derives entity wiring from grid adjacency.
//
// Steps that touch orthogonally form chains: each chain is discovered by a
// depth-first flood fill from its smallest position (row-major), visiting
// neighbours right, down, left, up, and every member is fed by the member
// discovered before it. Branching clusters therefore collapse into a single
// chain. Triggers feed every adjacent Step, and Steps feed every adjacent
// Sampler's gate.
package resolver

import (
	"fmt"
	"slices"

	"go-gridsynth/bus"
	"go-gridsynth/entity"
	"go-gridsynth/grid"
)

// Grid is the grid shape the resolver reads.
type Grid = grid.Grid[*entity.Entity]

// Wiring is the computed input set of every Step and Sampler, by position.
// Entities with no inputs map to an empty slice.
type Wiring struct {
	Chains [][]grid.Position
	Inputs map[grid.Position][]bus.Handle
}

// Plan computes the wiring for g without touching any entity.
func Plan(g *Grid) Wiring {
	w := Wiring{Inputs: make(map[grid.Position][]bus.Handle)}

	var steps []grid.Position
	for _, e := range g.Items() {
		switch e.Kind {
		case entity.KindStep:
			steps = append(steps, e.Position())
			w.Inputs[e.Position()] = []bus.Handle{}
		case entity.KindSampler:
			w.Inputs[e.Position()] = []bus.Handle{}
		case entity.KindTrigger:
		default:
			panic(fmt.Sprintf("resolver: unhandled kind %v", e.Kind))
		}
	}
	slices.SortFunc(steps, grid.Position.Compare)

	isStep := func(p grid.Position) bool {
		e, ok := g.Get(p)
		return ok && e.Kind == entity.KindStep
	}

	visited := make(map[grid.Position]bool, len(steps))
	for _, head := range steps {
		if visited[head] {
			continue
		}
		chain := floodFill(head, isStep, visited)
		for i := 1; i < len(chain); i++ {
			prev, _ := g.Get(chain[i-1])
			w.Inputs[chain[i]] = append(w.Inputs[chain[i]], prev.Step.Output)
		}
		w.Chains = append(w.Chains, chain)
	}

	for _, e := range g.Items() {
		switch e.Kind {
		case entity.KindTrigger:
			for _, n := range e.Position().Neighbours() {
				if isStep(n) {
					w.Inputs[n] = append(w.Inputs[n], e.Trigger.Output)
				}
			}
		case entity.KindSampler:
			for _, n := range e.Position().Neighbours() {
				if s, ok := g.Get(n); ok && s.Kind == entity.KindStep {
					w.Inputs[e.Position()] = append(w.Inputs[e.Position()], s.Step.Output)
				}
			}
		case entity.KindStep:
		default:
			panic(fmt.Sprintf("resolver: unhandled kind %v", e.Kind))
		}
	}
	return w
}

// floodFill returns the Steps connected to head in depth-first preorder and
// marks them visited.
func floodFill(head grid.Position, isStep func(grid.Position) bool, visited map[grid.Position]bool) []grid.Position {
	var chain []grid.Position
	stack := []grid.Position{head}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[p] {
			continue
		}
		visited[p] = true
		chain = append(chain, p)

		n := p.Neighbours()
		for i := len(n) - 1; i >= 0; i-- {
			if !visited[n[i]] && isStep(n[i]) {
				stack = append(stack, n[i])
			}
		}
	}
	return chain
}

// Resolve computes the wiring for g and applies it. If any planned handle is
// not registered on b, nothing is changed and the error wraps
// bus.ErrUnregistered.
func Resolve(g *Grid, b *bus.Bus) (Wiring, error) {
	w := Plan(g)
	for pos, inputs := range w.Inputs {
		for _, h := range inputs {
			if !b.Has(h) {
				return Wiring{}, fmt.Errorf("resolve input %v of %v: %w", h, pos, bus.ErrUnregistered)
			}
		}
	}
	for _, e := range g.Items() {
		inputs := w.Inputs[e.Position()]
		switch e.Kind {
		case entity.KindStep:
			e.Step.ClearConnections()
			for _, h := range inputs {
				e.Step.AddInput(h)
			}
		case entity.KindSampler:
			e.Sampler.ClearConnections()
			for _, h := range inputs {
				e.Sampler.AddInput(h)
			}
		case entity.KindTrigger:
		default:
			panic(fmt.Sprintf("resolver: unhandled kind %v", e.Kind))
		}
	}
	return w, nil
}
