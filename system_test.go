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

package wannier

import (
	"context"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/topomodel/wannier/surface"
	"github.com/topomodel/wannier/wcc"
)

// diagonalBuilder models a system whose charge center depends only on
// the line position, with loops accumulating to diag(exp(2πi·w)).
func diagonalBuilder(center func(position float64) float64) ProviderBuilder {
	return func(loopDir, fixedDir int, offset float64) wcc.OverlapProvider {
		return func(_ context.Context, position float64, n int) ([]*mat.CDense, error) {
			w := center(position)
			ms := make([]*mat.CDense, n)
			for k := range ms {
				m := mat.NewCDense(1, 1, nil)
				m.Set(0, 0, cmplx.Exp(complex(0, -2*math.Pi*w/float64(n))))
				ms[k] = m
			}
			return ms, nil
		}
	}
}

func TestSystemSurface(t *testing.T) {
	sys := System{Build: diagonalBuilder(func(pos float64) float64 {
		return math.Mod(0.2+0.1*pos, 1)
	})}
	opts := surface.DefaultOptions()
	opts.Verbose = false
	opts.UseCheckpoint = false
	opts.NumLines = 4

	eng, err := sys.Surface(0, 2, 0, opts)
	require.NoError(t, err)

	res, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Converged())
	assert.InDelta(t, 0.2, res.Lines[0].WCC[0], 1e-8)
}

func TestSystemSurfaceRejectsParallelDirections(t *testing.T) {
	sys := System{Build: diagonalBuilder(func(float64) float64 { return 0.3 })}
	_, err := sys.Surface(1, 1, 0, surface.DefaultOptions())
	assert.ErrorIs(t, err, ErrParallelDirections)
}

func TestSystemSurfaceRejectsBadDirections(t *testing.T) {
	sys := System{Build: diagonalBuilder(func(float64) float64 { return 0.3 })}
	_, err := sys.Surface(3, 0, 0, surface.DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidDirection)
	_, err = sys.Surface(0, -1, 0, surface.DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestSystemSurfaceRequiresBuilder(t *testing.T) {
	var sys System
	_, err := sys.Surface(0, 2, 0, surface.DefaultOptions())
	assert.ErrorIs(t, err, ErrNoBuilder)
}
