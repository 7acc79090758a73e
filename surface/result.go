/*
Copyright © 2024 the Wannier authors.
This file is part of Wannier.

Wannier is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Wannier is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Wannier.  If not, see <http://www.gnu.org/licenses/>.
*/

/*Package surface orchestrates Wannier-charge-center computations over
an ordered family of loops spanning one direction of the parameter
space, inserting additional loops by bisection until neighboring
results agree.*/
package surface

import (
	"errors"
	"fmt"
	"sort"

	"github.com/topomodel/wannier/wcc"
)

var (
	// ErrPositionsUnsorted indicates initial line positions that are
	// not strictly increasing.
	ErrPositionsUnsorted = errors.New("surface: line positions must be strictly increasing")

	// ErrNotComputed indicates a query on a result whose lines have
	// not all been computed.
	ErrNotComputed = errors.New("surface: result not yet computed")
)

// NeighborState is the convergence state of one pair of adjacent
// lines.
type NeighborState int

const (
	// Unchecked means the pair has not passed a gap check yet.
	Unchecked NeighborState = iota

	// Satisfied means the gap of the left line is far enough from
	// every charge center of the right line.
	Satisfied

	// MinSpacingReached means bisection hit the minimum spacing
	// without satisfying the gap criterion; refinement of this pair
	// was abandoned. The state is terminal but does not represent
	// convergence.
	MinSpacingReached
)

func (s NeighborState) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case Satisfied:
		return "satisfied"
	case MinSpacingReached:
		return "min-spacing-reached"
	}
	return fmt.Sprintf("NeighborState(%d)", int(s))
}

// Terminal reports whether the state ends refinement for its pair.
func (s NeighborState) Terminal() bool { return s != Unchecked }

// Line is one loop at a fixed position along the surface direction.
// Once solved, a Line is never mutated; refinement inserts new Lines
// next to it instead.
type Line struct {
	Position   float64
	WCC        []float64
	Gap        float64
	GapWidth   float64
	MinSV      float64
	Iterations int
	Steps      int
	Status     wcc.Status
	Solved     bool
}

// Result is the state of a surface computation: lines ordered by
// position and the convergence state of each adjacent pair. The
// neighbor sequence is always exactly one shorter than the line
// sequence, and the line sequence only ever grows.
type Result struct {
	Lines     []Line
	Neighbors []NeighborState

	// Version counts structural changes (insertions) to the result.
	Version int
}

// UniformPositions returns n evenly spaced positions covering
// [min, max], endpoints included.
func UniformPositions(min, max float64, n int) []float64 {
	ps := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range ps {
		ps[i] = min + float64(i)*step
	}
	ps[n-1] = max
	return ps
}

// NewResult creates an unsolved surface result with lines at the given
// positions, which must be strictly increasing and at least two.
func NewResult(positions []float64) (*Result, error) {
	if len(positions) < 2 {
		return nil, ErrTooFewLines
	}
	if !sort.Float64sAreSorted(positions) {
		return nil, ErrPositionsUnsorted
	}
	for i := 0; i < len(positions)-1; i++ {
		if positions[i] == positions[i+1] {
			return nil, ErrPositionsUnsorted
		}
	}
	lines := make([]Line, len(positions))
	for i, p := range positions {
		lines[i] = Line{Position: p}
	}
	return &Result{
		Lines:     lines,
		Neighbors: make([]NeighborState, len(positions)-1),
	}, nil
}

// insertAt inserts an unsolved line between pair (i, i+1) at the given
// position. Insertion builds new, longer sequences rather than
// mutating shared backing arrays, and bumps the version.
func (r *Result) insertAt(i int, position float64) {
	lines := make([]Line, 0, len(r.Lines)+1)
	lines = append(lines, r.Lines[:i+1]...)
	lines = append(lines, Line{Position: position})
	lines = append(lines, r.Lines[i+1:]...)

	neighbors := make([]NeighborState, 0, len(r.Neighbors)+1)
	neighbors = append(neighbors, r.Neighbors[:i+1]...)
	neighbors = append(neighbors, Unchecked)
	neighbors = append(neighbors, r.Neighbors[i+1:]...)

	r.Lines = lines
	r.Neighbors = neighbors
	r.Version++
}

// Done reports whether every neighbor pair has reached a terminal
// state.
func (r *Result) Done() bool {
	for _, s := range r.Neighbors {
		if !s.Terminal() {
			return false
		}
	}
	return true
}

// Converged reports whether every neighbor pair is Satisfied. A result
// can be Done without being Converged when bisection hit the minimum
// spacing somewhere.
func (r *Result) Converged() bool {
	for _, s := range r.Neighbors {
		if s != Satisfied {
			return false
		}
	}
	return true
}

// Solved reports whether every line has been computed.
func (r *Result) Solved() bool {
	for _, l := range r.Lines {
		if !l.Solved {
			return false
		}
	}
	return true
}

// Positions returns the line positions in order.
func (r *Result) Positions() []float64 {
	ps := make([]float64, len(r.Lines))
	for i, l := range r.Lines {
		ps[i] = l.Position
	}
	return ps
}

// Gaps returns the largest-gap position of each line. It is an error
// to query gaps before all lines are solved.
func (r *Result) Gaps() ([]float64, error) {
	if !r.Solved() {
		return nil, ErrNotComputed
	}
	gs := make([]float64, len(r.Lines))
	for i, l := range r.Lines {
		gs[i] = l.Gap
	}
	return gs, nil
}

// WCCs returns the charge-center set of each line. It is an error to
// query before all lines are solved.
func (r *Result) WCCs() ([][]float64, error) {
	if !r.Solved() {
		return nil, ErrNotComputed
	}
	ws := make([][]float64, len(r.Lines))
	for i, l := range r.Lines {
		ws[i] = l.WCC
	}
	return ws, nil
}

// validate checks the structural invariants, used when restoring a
// checkpoint.
func (r *Result) validate() error {
	if len(r.Lines) < 2 {
		return ErrTooFewLines
	}
	if len(r.Neighbors) != len(r.Lines)-1 {
		return fmt.Errorf("surface: %d neighbor states for %d lines", len(r.Neighbors), len(r.Lines))
	}
	for i := 0; i < len(r.Lines)-1; i++ {
		if r.Lines[i].Position >= r.Lines[i+1].Position {
			return ErrPositionsUnsorted
		}
	}
	return nil
}
