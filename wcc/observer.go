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
	"github.com/sirupsen/logrus"
)

// Event describes one refinement iteration of the line solver.
type Event struct {
	// Position is the loop position being solved.
	Position float64

	// Steps is the number of discretization steps used in this
	// iteration.
	Steps int

	// Iteration counts completed refinement iterations, starting
	// at one.
	Iteration int

	// MinSV is the minimum singular value seen across the overlap
	// matrices of this iteration.
	MinSV float64
}

// Observer receives structured progress events from the line solver.
// All methods are called synchronously from the solving goroutine.
type Observer interface {
	// LineStarted is called once before the initial computation.
	LineStarted(position float64)

	// Iteration is called after each refinement iteration.
	Iteration(Event)

	// SizeMismatch is called when two consecutive iterations
	// produce charge-center sets of different cardinality. This is
	// a warning signal, not an error.
	SizeMismatch(position float64, previous, current int)

	// LineFinished is called once with the final result.
	LineFinished(LineResult)
}

// NopObserver is an Observer that ignores all events.
type NopObserver struct{}

func (NopObserver) LineStarted(float64)            {}
func (NopObserver) Iteration(Event)                {}
func (NopObserver) SizeMismatch(float64, int, int) {}
func (NopObserver) LineFinished(LineResult)        {}

// LogObserver logs progress events with structured fields.
type LogObserver struct {
	Log logrus.FieldLogger
}

func (o LogObserver) LineStarted(position float64) {
	o.Log.WithField("position", position).Info("calculating line")
}

func (o LogObserver) Iteration(ev Event) {
	o.Log.WithFields(logrus.Fields{
		"position":  ev.Position,
		"steps":     ev.Steps,
		"iteration": ev.Iteration,
		"min_sv":    ev.MinSV,
	}).Debug("refined line discretization")
}

func (o LogObserver) SizeMismatch(position float64, previous, current int) {
	o.Log.WithFields(logrus.Fields{
		"position": position,
		"previous": previous,
		"current":  current,
	}).Warn("consecutive iterations produced different numbers of charge centers")
}

func (o LogObserver) LineFinished(res LineResult) {
	o.Log.WithFields(logrus.Fields{
		"position":   res.Position,
		"iterations": res.Iterations,
		"steps":      res.Steps,
		"min_sv":     res.MinSV,
		"status":     res.Status.String(),
	}).Info("finished line")
}
