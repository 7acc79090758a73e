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
	"context"
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"

	"github.com/topomodel/wannier/internal/linalg"
)

const (
	// initialSteps is the number of discretization steps used for
	// the first Wilson-loop evaluation of a line.
	initialSteps = 8

	// stepIncrement is the regular per-iteration growth of the
	// discretization.
	stepIncrement = 2

	// acceleratedIncrement replaces stepIncrement every second
	// iteration while the loop is poorly conditioned.
	acceleratedIncrement = 4

	// poorConditioning is the minimum-singular-value threshold below
	// which refinement is accelerated.
	poorConditioning = 0.5
)

// Status reports how a line computation terminated.
type Status int

const (
	// Converged means the charge centers stabilized within the
	// tolerance.
	Converged Status = iota

	// StepCapReached means the iteration cap was hit before the
	// charge centers stabilized; the result is best-effort.
	StepCapReached

	// SinglePass means refinement was disabled and only the initial
	// discretization was evaluated.
	SinglePass
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case StepCapReached:
		return "step-cap-reached"
	case SinglePass:
		return "single-pass"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// LineResult holds the converged (or best-effort) charge centers of
// one loop.
type LineResult struct {
	// Position of the loop along the surface direction.
	Position float64

	// WCC are the charge centers in [0,1), sorted ascending.
	WCC []float64

	// Gap is the midpoint of the largest gap between charge
	// centers, and GapWidth its width.
	Gap      float64
	GapWidth float64

	// MinSV is the minimum singular value seen in the final
	// iteration, a proxy for numerical conditioning.
	MinSV float64

	// Iterations is the number of refinement iterations performed.
	Iterations int

	// Steps is the final number of discretization steps.
	Steps int

	// Status reports whether the refinement converged.
	Status Status
}

// Solver computes the charge centers of a single loop by refining its
// discretization until the result stabilizes.
type Solver struct {
	// Tol is the movement tolerance between consecutive
	// discretizations. Zero means the default of 0.01.
	Tol float64

	// MaxIter caps the number of refinement iterations. Zero means
	// the default of 10. Reaching the cap is not an error; the
	// result carries StepCapReached.
	MaxIter int

	// NoIterate disables refinement: only the initial
	// discretization is evaluated.
	NoIterate bool

	// Observer receives progress events; nil disables reporting.
	Observer Observer
}

// Solve computes the charge centers of the loop at the given position.
// The returned set is sorted ascending. Non-convergence is reported
// through the result status, never as an error; provider errors are
// propagated unchanged.
func (s *Solver) Solve(ctx context.Context, position float64, provider OverlapProvider) (*LineResult, error) {
	tol := s.Tol
	if tol <= 0 {
		tol = 0.01
	}
	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = 10
	}
	obs := s.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	obs.LineStarted(position)
	n := initialSteps
	centers, minSV, err := wilsonCenters(ctx, position, n, provider)
	if err != nil {
		return nil, err
	}

	status := SinglePass
	iter := 0
	if !s.NoIterate {
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if iter%2 == 1 && minSV < poorConditioning {
				n += acceleratedIncrement
			} else {
				n += stepIncrement
			}
			prev := centers
			centers, minSV, err = wilsonCenters(ctx, position, n, provider)
			if err != nil {
				return nil, err
			}
			iter++
			obs.Iteration(Event{Position: position, Steps: n, Iteration: iter, MinSV: minSV})

			if len(centers) != len(prev) {
				obs.SizeMismatch(position, len(prev), len(centers))
			} else if Distance(centers, prev, tol) < movementThreshold {
				status = Converged
				break
			}
			if iter > maxIter {
				status = StepCapReached
				break
			}
		}
	}

	gap, width, err := GapFind(centers)
	if err != nil {
		return nil, err
	}
	res := &LineResult{
		Position:   position,
		WCC:        centers,
		Gap:        gap,
		GapWidth:   width,
		MinSV:      minSV,
		Iterations: iter,
		Steps:      n,
		Status:     status,
	}
	obs.LineFinished(*res)
	return res, nil
}

// wilsonCenters evaluates one Wilson loop: it unitarizes each overlap
// matrix via its singular value decomposition, accumulates the ordered
// product Γ ← (V·W*)† Γ, and extracts the charge centers from the
// eigenphases of Γ. The second return value is the minimum singular
// value across the sequence.
func wilsonCenters(ctx context.Context, position float64, n int, provider OverlapProvider) ([]float64, float64, error) {
	ms, err := provider(ctx, position, n)
	if err != nil {
		return nil, 0, err
	}
	d, err := validateOverlaps(ms)
	if err != nil {
		return nil, 0, fmt.Errorf("position %v: %w", position, err)
	}

	gamma := linalg.Identity(d)
	minSV := 1.0
	for i, m := range ms {
		u, sv, err := linalg.UnitaryPart(m)
		if err != nil {
			return nil, 0, fmt.Errorf("position %v, overlap %d: %w", position, i, err)
		}
		if sv < minSV {
			minSV = sv
		}
		next := mat.NewCDense(d, d, nil)
		cblas128.Gemm(blas.ConjTrans, blas.NoTrans, 1, u.RawCMatrix(), gamma.RawCMatrix(), 0, next.RawCMatrix())
		gamma = next
	}

	centers, err := linalg.UnitaryEigenphases(gamma)
	if err != nil {
		return nil, 0, fmt.Errorf("position %v: %w", position, err)
	}
	return centers, minSV, nil
}
