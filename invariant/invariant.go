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

/*Package invariant derives topological invariants from converged
surface results: the parity-valued Z2 index from sign counting of
charge centers against gap positions, and the cumulative polarization
used for Chern-number estimates and continuity plots.*/
package invariant

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/topomodel/wannier/surface"
)

var (
	// ErrBandMismatch indicates lines with unequal numbers of charge
	// centers; the invariant is undefined in that case and the
	// computation is never silently truncated.
	ErrBandMismatch = errors.New("invariant: lines have unequal numbers of charge centers")

	// ErrTooFewLines indicates a surface with fewer than two lines.
	ErrTooFewLines = errors.New("invariant: at least two lines are required")
)

// Z2 computes the Z2 topological invariant of a computed surface
// spanning half the parametrizing direction. For each consecutive pair
// of lines and each charge center x of the right line it accumulates
// the sign of
//
//	sin(2π(g₊−g)) + sin(2π(x−g₊)) + sin(2π(g−x))
//
// where g and g₊ are the gap positions of the left and right line. The
// result is 1 when the total product is negative, else 0.
func Z2(res *surface.Result) (int, error) {
	if !res.Solved() {
		return 0, surface.ErrNotComputed
	}
	if len(res.Lines) < 2 {
		return 0, ErrTooFewLines
	}
	d := len(res.Lines[0].WCC)
	for i, l := range res.Lines {
		if len(l.WCC) != d {
			return 0, fmt.Errorf("%w: line %d has %d, line 0 has %d",
				ErrBandMismatch, i, len(l.WCC), d)
		}
	}

	product := 1.0
	for i := 0; i < len(res.Lines)-1; i++ {
		g := res.Lines[i].Gap
		gNext := res.Lines[i+1].Gap
		for _, x := range res.Lines[i+1].WCC {
			product *= sgn(g, gNext, x)
		}
	}
	if product < 0 {
		return 1, nil
	}
	return 0, nil
}

func sgn(g, gNext, x float64) float64 {
	return math.Copysign(1,
		math.Sin(2*math.Pi*(gNext-g))+
			math.Sin(2*math.Pi*(x-gNext))+
			math.Sin(2*math.Pi*(g-x)))
}

// Polarization returns the polarization of one line: the sum of its
// charge centers modulo the periodic domain.
func Polarization(centers []float64) float64 {
	p := math.Mod(floats.Sum(centers), 1)
	if p < 0 {
		p++
	}
	return p
}

// PolarizationStep resolves the branch ambiguity of the polarization
// change between two lines, choosing the representative in
// (−0.5, 0.5].
func PolarizationStep(from, to float64) float64 {
	step := math.Mod(to-from, 1)
	if step > 0.5 {
		step--
	}
	if step <= -0.5 {
		step++
	}
	return step
}

// Cumulative returns the branch-resolved accumulated polarization
// along the surface, starting from the polarization of the first
// line. The total change across a surface spanning a full period is
// the Chern number estimate; the sequence itself is a derived quantity
// for continuity checks and plotting.
func Cumulative(res *surface.Result) ([]float64, error) {
	if !res.Solved() {
		return nil, surface.ErrNotComputed
	}
	out := make([]float64, len(res.Lines))
	out[0] = Polarization(res.Lines[0].WCC)
	for i := 1; i < len(res.Lines); i++ {
		prev := Polarization(res.Lines[i-1].WCC)
		cur := Polarization(res.Lines[i].WCC)
		out[i] = out[i-1] + PolarizationStep(prev, cur)
	}
	return out, nil
}
