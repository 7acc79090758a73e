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

// Package plot prepares computed surfaces for display. It produces
// plain X,Y series that satisfy the gonum.org/v1/plot/plotter.XYer
// interface, so callers can hand them to any plotting frontend without
// this package depending on one.
package plot

import (
	"math"

	"github.com/topomodel/wannier/surface"
)

// XYs implements the gonum.org/v1/plot/plotter.XYer interface.
type XYs []XY

// XY is an x and y value.
type XY struct{ X, Y float64 }

// Len returns the number of X,Y pairs.
func (xys XYs) Len() int {
	return len(xys)
}

// XY return the x and y values at index i, where i < Len()
func (xys XYs) XY(i int) (float64, float64) {
	return xys[i].X, xys[i].Y
}

// GapSeries returns the largest-gap position of each line, shifted by
// shift and folded into [0, 1).
func GapSeries(res *surface.Result, shift float64) XYs {
	out := make(XYs, 0, len(res.Lines))
	for _, l := range res.Lines {
		if !l.Solved {
			continue
		}
		out = append(out, XY{X: l.Position, Y: fold(l.Gap + shift)})
	}
	return out
}

// WCCSeries returns the charge centers of every solved line, shifted
// by shift and folded into [0, 1). Each center additionally appears
// displaced by ±1 so that lines drawn through the series continue
// across the periodic boundary.
func WCCSeries(res *surface.Result, shift float64) XYs {
	var out XYs
	for _, l := range res.Lines {
		if !l.Solved {
			continue
		}
		for _, w := range l.WCC {
			y := fold(w + shift)
			out = append(out, XY{X: l.Position, Y: y - 1})
			out = append(out, XY{X: l.Position, Y: y})
			out = append(out, XY{X: l.Position, Y: y + 1})
		}
	}
	return out
}

// PolarizationSeries returns the branch-resolved accumulated
// polarization of each line against its position.
func PolarizationSeries(res *surface.Result, cumulative []float64) XYs {
	out := make(XYs, 0, len(res.Lines))
	for i, l := range res.Lines {
		if i >= len(cumulative) {
			break
		}
		out = append(out, XY{X: l.Position, Y: cumulative[i]})
	}
	return out
}

func fold(x float64) float64 {
	x = math.Mod(x, 1)
	if x < 0 {
		x++
	}
	return x
}
