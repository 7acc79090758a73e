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
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/topomodel/wannier/surface"
	"github.com/topomodel/wannier/wcc"
)

var (
	// ErrInvalidDirection indicates a reciprocal-lattice direction
	// outside 0..2.
	ErrInvalidDirection = errors.New("wannier: direction must be 0, 1 or 2")

	// ErrParallelDirections indicates a surface whose loop direction
	// coincides with its fixed direction; the loops of such a surface
	// would not sweep a plane.
	ErrParallelDirections = errors.New("wannier: loop direction coincides with the fixed direction")

	// ErrNoBuilder indicates a System without a provider factory.
	ErrNoBuilder = errors.New("wannier: no provider builder configured")
)

// ProviderBuilder constructs the overlap provider for one line of a
// surface: the closed loop runs along the reciprocal-lattice direction
// loopDir, the coordinate along fixedDir is pinned to offset, and the
// line position along the remaining direction is supplied per call by
// the returned provider's position argument.
type ProviderBuilder func(loopDir, fixedDir int, offset float64) wcc.OverlapProvider

// System binds a provider factory to surface computations. The zero
// value is not usable; at least Build must be set.
type System struct {
	// Build constructs the per-surface overlap provider.
	Build ProviderBuilder

	// Checkpoint, if set, is handed to every engine the system
	// creates.
	Checkpoint surface.Checkpointer

	// Observer receives line solver progress events.
	Observer wcc.Observer

	// Log is shared by all engines; nil lets each engine construct
	// its own.
	Log logrus.FieldLogger
}

// Surface returns an engine computing the surface with loops along
// loopDir, the fixedDir coordinate pinned to offset, and lines swept
// along the remaining direction over [opts.RangeMin, opts.RangeMax].
func (s *System) Surface(loopDir, fixedDir int, offset float64, opts surface.Options) (*surface.Engine, error) {
	if s.Build == nil {
		return nil, ErrNoBuilder
	}
	if loopDir < 0 || loopDir > 2 {
		return nil, fmt.Errorf("%w: loop direction %d", ErrInvalidDirection, loopDir)
	}
	if fixedDir < 0 || fixedDir > 2 {
		return nil, fmt.Errorf("%w: fixed direction %d", ErrInvalidDirection, fixedDir)
	}
	if loopDir == fixedDir {
		return nil, fmt.Errorf("%w: direction %d", ErrParallelDirections, loopDir)
	}
	return &surface.Engine{
		Provider:   s.Build(loopDir, fixedDir, offset),
		Options:    opts,
		Checkpoint: s.Checkpoint,
		Observer:   s.Observer,
		Log:        s.Log,
	}, nil
}
