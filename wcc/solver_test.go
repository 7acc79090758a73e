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
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// fixedCentersProvider returns overlap sequences whose accumulated
// Wilson loop is diag(exp(2πi·w_j)) for any discretization, so the
// solver must recover exactly the given charge centers.
func fixedCentersProvider(w []float64) OverlapProvider {
	return func(_ context.Context, _ float64, n int) ([]*mat.CDense, error) {
		d := len(w)
		ms := make([]*mat.CDense, n)
		for k := range ms {
			m := mat.NewCDense(d, d, nil)
			for j, wj := range w {
				m.Set(j, j, cmplx.Exp(complex(0, -2*math.Pi*wj/float64(n))))
			}
			ms[k] = m
		}
		return ms, nil
	}
}

// identityProvider returns sequences of scaled identity matrices.
func identityProvider(d int, scale float64) OverlapProvider {
	return func(_ context.Context, _ float64, n int) ([]*mat.CDense, error) {
		ms := make([]*mat.CDense, n)
		for k := range ms {
			m := mat.NewCDense(d, d, nil)
			for j := 0; j < d; j++ {
				m.Set(j, j, complex(scale, 0))
			}
			ms[k] = m
		}
		return ms, nil
	}
}

func TestSolveFixedCenters(t *testing.T) {
	s := &Solver{Tol: 0.01, MaxIter: 10}
	res, err := s.Solve(context.Background(), 0.25, fixedCentersProvider([]float64{0.4, 0.1}))
	require.NoError(t, err)

	require.Len(t, res.WCC, 2)
	assert.InDelta(t, 0.1, res.WCC[0], 1e-8)
	assert.InDelta(t, 0.4, res.WCC[1], 1e-8)
	assert.Equal(t, Converged, res.Status)
	assert.Equal(t, 1, res.Iterations)
	// The widest gap wraps around the periodic boundary.
	assert.InDelta(t, 0.75, res.Gap, 1e-8)
	assert.InDelta(t, 0.7, res.GapWidth, 1e-8)
	assert.InDelta(t, 1, res.MinSV, 1e-10)
}

func TestSolveIdentityOverlaps(t *testing.T) {
	s := &Solver{Tol: 0.01, MaxIter: 10}
	res, err := s.Solve(context.Background(), 0, identityProvider(2, 1))
	require.NoError(t, err)

	require.Len(t, res.WCC, 2)
	assert.InDelta(t, 0, res.WCC[0], 1e-10)
	assert.InDelta(t, 0, res.WCC[1], 1e-10)
	assert.InDelta(t, 0.5, res.Gap, 1e-10)
	assert.Equal(t, Converged, res.Status)
}

func TestSolveNoIterate(t *testing.T) {
	calls := 0
	inner := fixedCentersProvider([]float64{0.3})
	provider := func(ctx context.Context, pos float64, n int) ([]*mat.CDense, error) {
		calls++
		return inner(ctx, pos, n)
	}
	s := &Solver{NoIterate: true}
	res, err := s.Solve(context.Background(), 0, provider)
	require.NoError(t, err)
	assert.Equal(t, SinglePass, res.Status)
	assert.Equal(t, initialSteps, res.Steps)
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, 1, calls)
}

func TestSolveStepCap(t *testing.T) {
	// The charge center jumps with the discretization parity, so the
	// refinement can never stabilize.
	provider := func(_ context.Context, _ float64, n int) ([]*mat.CDense, error) {
		w := 0.2
		if (n/2)%2 == 1 {
			w = 0.7
		}
		return fixedCentersProvider([]float64{w})(context.Background(), 0, n)
	}
	s := &Solver{Tol: 0.01, MaxIter: 3}
	res, err := s.Solve(context.Background(), 0, provider)
	require.NoError(t, err)
	assert.Equal(t, StepCapReached, res.Status)
	assert.Equal(t, 4, res.Iterations)
	require.Len(t, res.WCC, 1)
}

func TestSolveMinSingularValue(t *testing.T) {
	s := &Solver{Tol: 0.01, MaxIter: 10}
	res, err := s.Solve(context.Background(), 0, identityProvider(1, 0.3))
	require.NoError(t, err)
	assert.InDelta(t, 0.3, res.MinSV, 1e-10)
	assert.InDelta(t, 0, res.WCC[0], 1e-10)
}

func TestSolveProviderErrorPropagated(t *testing.T) {
	boom := errors.New("model backend unavailable")
	provider := func(context.Context, float64, int) ([]*mat.CDense, error) {
		return nil, boom
	}
	s := &Solver{}
	_, err := s.Solve(context.Background(), 0, provider)
	assert.ErrorIs(t, err, boom)
}

func TestSolveRejectsDegenerateOverlaps(t *testing.T) {
	t.Run("empty sequence", func(t *testing.T) {
		provider := func(context.Context, float64, int) ([]*mat.CDense, error) {
			return nil, nil
		}
		s := &Solver{}
		_, err := s.Solve(context.Background(), 0, provider)
		assert.ErrorIs(t, err, ErrNoOverlaps)
	})
	t.Run("mismatched dimensions", func(t *testing.T) {
		provider := func(context.Context, float64, int) ([]*mat.CDense, error) {
			return []*mat.CDense{
				mat.NewCDense(2, 2, nil),
				mat.NewCDense(3, 3, nil),
			}, nil
		}
		s := &Solver{}
		_, err := s.Solve(context.Background(), 0, provider)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	provider := func(_ context.Context, _ float64, n int) ([]*mat.CDense, error) {
		cancel() // cancel after the initial evaluation
		return fixedCentersProvider([]float64{0.3})(context.Background(), 0, n)
	}
	s := &Solver{}
	_, err := s.Solve(ctx, 0, provider)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolveObserverEvents(t *testing.T) {
	rec := &recordingObserver{}
	s := &Solver{Observer: rec}
	res, err := s.Solve(context.Background(), 0.125, fixedCentersProvider([]float64{0.2, 0.8}))
	require.NoError(t, err)

	assert.Equal(t, []float64{0.125}, rec.started)
	require.NotEmpty(t, rec.events)
	assert.Equal(t, 1, rec.events[0].Iteration)
	assert.Equal(t, initialSteps+stepIncrement, rec.events[0].Steps)
	require.Len(t, rec.finished, 1)
	assert.Equal(t, res.Status, rec.finished[0].Status)
}

type recordingObserver struct {
	started  []float64
	events   []Event
	finished []LineResult
}

func (r *recordingObserver) LineStarted(pos float64) { r.started = append(r.started, pos) }
func (r *recordingObserver) Iteration(ev Event)      { r.events = append(r.events, ev) }

func (r *recordingObserver) SizeMismatch(float64, int, int) {}

func (r *recordingObserver) LineFinished(res LineResult) { r.finished = append(r.finished, res) }
