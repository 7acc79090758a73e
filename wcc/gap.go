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

package wcc

import (
	"math"
	"sort"
)

// GapFind locates the largest angular gap in a set of charge centers
// on the unit circle, including the wrap-around gap between the last
// and first element. It returns the midpoint of the widest gap and the
// gap width; when several gaps have equal width the first one in
// sorted order wins.
func GapFind(centers []float64) (position, width float64, err error) {
	if len(centers) == 0 {
		return 0, 0, ErrEmptySet
	}
	x := make([]float64, len(centers))
	copy(x, centers)
	sort.Float64s(x)

	gapSize := 0.0
	gapPos := 0
	for i := 0; i < len(x)-1; i++ {
		if d := x[i+1] - x[i]; d > gapSize {
			gapSize = d
			gapPos = i
		}
	}
	// Wrap-around gap across the 0/1 boundary.
	if d := x[0] - x[len(x)-1] + 1; d > gapSize {
		gapSize = d
		gapPos = len(x) - 1
	}
	return math.Mod(x[gapPos]+gapSize/2, 1), gapSize, nil
}

// CircularDistance returns the distance between two positions on the
// unit circle, accounting for the periodic boundary.
func CircularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 1)
	return math.Min(d, 1-d)
}
