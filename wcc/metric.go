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

	"gonum.org/v1/gonum/floats"
)

// DefaultOversample is the histogram oversampling factor used by
// Distance. It averages out rasterization noise; results should not be
// sensitive to its exact value.
const DefaultOversample = 7

// movementThreshold is the stability criterion for Distance values:
// the kernel half-width already carries the tolerance, so in units of
// total kernel mass the tolerated movement between two iterations is
// one.
const movementThreshold = 1.0

// Distance quantifies the difference between two charge-center sets as
// a density difference. Each value is the center of a triangular
// density kernel of half-width tol, rasterized onto a circular
// histogram; the result is the L1 distance between the two densities,
// normalized by the oversampling factor. It is zero for equal sets and
// does not require the sets to have equal cardinality.
func Distance(a, b []float64, tol float64) float64 {
	return DistanceOversampled(a, b, tol, DefaultOversample)
}

// DistanceOversampled is Distance with an explicit histogram
// oversampling factor.
func DistanceOversampled(a, b []float64, tol float64, oversample int) float64 {
	if oversample < 1 {
		oversample = 1
	}
	bins := int(1 / (2 * tol))
	if bins < 1 {
		bins = 1
	}
	n := oversample * bins
	val := make([]float64, n)
	rasterize(val, a, oversample, 1)
	rasterize(val, b, oversample, -1)
	for i := range val {
		val[i] = math.Abs(val[i])
	}
	return floats.Sum(val) / float64(oversample)
}

// rasterize adds (sign=+1) or subtracts (sign=-1) a triangular kernel
// of half-width oversample bins for each center in xs.
func rasterize(val []float64, xs []float64, oversample int, sign float64) {
	n := len(val)
	for _, x := range xs {
		center := int(float64(n) * x)
		for i := 0; i < oversample; i++ {
			w := sign * (1 - float64(i)/float64(oversample))
			val[mod(center-i, n)] += w
			if i > 0 {
				val[mod(center+i, n)] += w
			}
		}
	}
}

func mod(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
