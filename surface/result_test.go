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

package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformPositions(t *testing.T) {
	ps := UniformPositions(0, 0.5, 5)
	want := []float64{0, 0.125, 0.25, 0.375, 0.5}
	require.Len(t, ps, 5)
	for i := range want {
		assert.InDelta(t, want[i], ps[i], 1e-12)
	}
}

func TestNewResultValidation(t *testing.T) {
	_, err := NewResult([]float64{0.5})
	assert.ErrorIs(t, err, ErrTooFewLines)

	_, err = NewResult([]float64{0.5, 0})
	assert.ErrorIs(t, err, ErrPositionsUnsorted)

	_, err = NewResult([]float64{0.25, 0.25})
	assert.ErrorIs(t, err, ErrPositionsUnsorted)
}

func TestResultInsertAt(t *testing.T) {
	res, err := NewResult([]float64{0, 0.25, 0.5})
	require.NoError(t, err)
	res.Neighbors[0] = Satisfied

	res.insertAt(1, 0.375)

	require.Len(t, res.Lines, 4)
	require.Len(t, res.Neighbors, 3)
	assert.Equal(t, 1, res.Version)
	assert.InDelta(t, 0.375, res.Lines[2].Position, 1e-12)
	assert.False(t, res.Lines[2].Solved)
	// The state of the split pair stays unchecked; earlier pairs keep
	// their state.
	assert.Equal(t, Satisfied, res.Neighbors[0])
	assert.Equal(t, Unchecked, res.Neighbors[1])
	assert.Equal(t, Unchecked, res.Neighbors[2])
	require.NoError(t, res.validate())
}

func TestResultQueriesBeforeComputation(t *testing.T) {
	res, err := NewResult([]float64{0, 0.5})
	require.NoError(t, err)

	_, err = res.Gaps()
	assert.ErrorIs(t, err, ErrNotComputed)
	_, err = res.WCCs()
	assert.ErrorIs(t, err, ErrNotComputed)
	assert.False(t, res.Solved())
	assert.False(t, res.Done())
	assert.False(t, res.Converged())
}

func TestNeighborStateTerminal(t *testing.T) {
	assert.False(t, Unchecked.Terminal())
	assert.True(t, Satisfied.Terminal())
	assert.True(t, MinSpacingReached.Terminal())
	// Terminal does not imply convergence.
	res := &Result{
		Lines:     []Line{{Position: 0}, {Position: 0.5}},
		Neighbors: []NeighborState{MinSpacingReached},
	}
	assert.True(t, res.Done())
	assert.False(t, res.Converged())
}
