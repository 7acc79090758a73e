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

/*Package wcc computes Wannier charge centers along a single
parametrized loop from externally supplied overlap matrices, using the
Wilson-loop method with adaptive discretization refinement.*/
package wcc

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoOverlaps indicates that the overlap provider returned an
	// empty matrix sequence.
	ErrNoOverlaps = errors.New("wcc: overlap provider returned no matrices")

	// ErrDimension indicates an overlap matrix that is not square or
	// has zero dimension.
	ErrDimension = errors.New("wcc: overlap matrix is not square or has zero dimension")

	// ErrShapeMismatch indicates overlap matrices of unequal
	// dimension within one sequence.
	ErrShapeMismatch = errors.New("wcc: overlap matrices have mismatched dimensions")

	// ErrEmptySet indicates an empty WCC set where at least one
	// charge center is required.
	ErrEmptySet = errors.New("wcc: empty charge center set")
)

// OverlapProvider produces the ordered sequence of n overlap matrices
// for the discretized loop at the given position. The matrices must be
// square, of equal dimension, and deterministic for fixed (position, n)
// within a run. Errors are propagated to the caller unchanged; the
// solver never retries a provider call.
type OverlapProvider func(ctx context.Context, position float64, n int) ([]*mat.CDense, error)

// validateOverlaps checks the provider output and returns the common
// matrix dimension.
func validateOverlaps(ms []*mat.CDense) (int, error) {
	if len(ms) == 0 {
		return 0, ErrNoOverlaps
	}
	r0, c0 := ms[0].Dims()
	if r0 != c0 || r0 == 0 {
		return 0, fmt.Errorf("%w: %d×%d", ErrDimension, r0, c0)
	}
	for i, m := range ms[1:] {
		r, c := m.Dims()
		if r != c || r == 0 {
			return 0, fmt.Errorf("%w: matrix %d is %d×%d", ErrDimension, i+1, r, c)
		}
		if r != r0 {
			return 0, fmt.Errorf("%w: %d != %d", ErrShapeMismatch, r, r0)
		}
	}
	return r0, nil
}
