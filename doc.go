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

/*
Package wannier computes hybrid Wannier charge centers and the
topological invariants derived from them.

The computation is organized in layers. An overlap provider
(wcc.OverlapProvider) supplies the sequence of overlap matrices along a
closed loop in reciprocal space; wcc.Solver turns one loop into a set
of charge centers with adaptive step refinement; surface.Engine covers
a one-parameter family of loops, bisecting between neighboring loops
until the largest-gap criterion is met; invariant.Z2 and
invariant.Cumulative reduce a computed surface to the Z2 index or the
accumulated polarization.

The System type in this package binds a provider factory to a concrete
surface geometry, so a caller only chooses the loop direction, the
fixed direction and the surface offset:

	sys := wannier.System{Build: builder}
	eng, err := sys.Surface(0, 2, 0, surface.DefaultOptions())
	if err != nil {
		...
	}
	res, err := eng.Run(ctx)
*/
package wannier
