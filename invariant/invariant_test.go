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

package invariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topomodel/wannier/surface"
)

// solvedSurface builds a computed two-line surface from gap positions
// and charge-center sets.
func solvedSurface(gaps []float64, centers [][]float64) *surface.Result {
	lines := make([]surface.Line, len(gaps))
	for i := range gaps {
		lines[i] = surface.Line{
			Position: float64(i) * 0.5 / float64(len(gaps)-1),
			WCC:      centers[i],
			Gap:      gaps[i],
			Solved:   true,
		}
	}
	return &surface.Result{
		Lines:     lines,
		Neighbors: make([]surface.NeighborState, len(gaps)-1),
	}
}

func TestZ2Nontrivial(t *testing.T) {
	// Minimal two-band toy surface: the charge center crosses the
	// gap between the two lines, giving a single negative sign.
	res := solvedSurface(
		[]float64{0.25, 0.75},
		[][]float64{{0.1}, {0.6}},
	)
	z2, err := Z2(res)
	require.NoError(t, err)
	assert.Equal(t, 1, z2)
}

func TestZ2Trivial(t *testing.T) {
	res := solvedSurface(
		[]float64{0.25, 0.75},
		[][]float64{{0.1}, {0.9}},
	)
	z2, err := Z2(res)
	require.NoError(t, err)
	assert.Equal(t, 0, z2)
}

func TestZ2PairedCentersAreTrivial(t *testing.T) {
	// Kramers-like pairs contribute squared signs, so the product
	// stays positive.
	res := solvedSurface(
		[]float64{0.25, 0.75},
		[][]float64{{0.1, 0.1}, {0.6, 0.6}},
	)
	z2, err := Z2(res)
	require.NoError(t, err)
	assert.Equal(t, 0, z2)
}

func TestZ2BandMismatch(t *testing.T) {
	res := solvedSurface(
		[]float64{0.25, 0.75},
		[][]float64{{0.1}, {0.6, 0.7}},
	)
	_, err := Z2(res)
	assert.ErrorIs(t, err, ErrBandMismatch)
}

func TestZ2BeforeComputation(t *testing.T) {
	res, err := surface.NewResult([]float64{0, 0.5})
	require.NoError(t, err)
	_, err = Z2(res)
	assert.ErrorIs(t, err, surface.ErrNotComputed)
}

func TestPolarization(t *testing.T) {
	assert.InDelta(t, 0.5, Polarization([]float64{0.2, 0.3}), 1e-12)
	assert.InDelta(t, 0.1, Polarization([]float64{0.4, 0.7}), 1e-12)
	assert.InDelta(t, 0, Polarization(nil), 1e-12)
}

func TestPolarizationStep(t *testing.T) {
	tests := []struct {
		from, to, want float64
	}{
		{0.1, 0.2, 0.1},
		{0.2, 0.1, -0.1},
		// Crossing the periodic boundary picks the short branch.
		{0.9, 0.1, 0.2},
		{0.1, 0.9, -0.2},
		// A half-period jump resolves to +0.5.
		{0.25, 0.75, 0.5},
	}
	for _, test := range tests {
		got := PolarizationStep(test.from, test.to)
		assert.InDelta(t, test.want, got, 1e-12)
		assert.Greater(t, got, -0.5-1e-12)
		assert.LessOrEqual(t, got, 0.5+1e-12)
	}
}

func TestCumulative(t *testing.T) {
	res := solvedSurface(
		[]float64{0.5, 0.5, 0.5},
		[][]float64{{0.8}, {0.95}, {0.1}},
	)
	got, err := Cumulative(res)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// The accumulated polarization continues smoothly through the
	// 1→0 wrap instead of jumping back.
	assert.InDelta(t, 0.8, got[0], 1e-12)
	assert.InDelta(t, 0.95, got[1], 1e-12)
	assert.InDelta(t, 1.1, got[2], 1e-12)
}

func TestCumulativeBeforeComputation(t *testing.T) {
	res, err := surface.NewResult([]float64{0, 0.5})
	require.NoError(t, err)
	_, err = Cumulative(res)
	assert.ErrorIs(t, err, surface.ErrNotComputed)
}
