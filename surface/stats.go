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
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"

	"github.com/topomodel/wannier/wcc"
)

// RunStats aggregates per-line solver statistics over one surface
// computation.
type RunStats struct {
	// Iterations tracks the refinement iteration counts of the
	// solved lines.
	Iterations stats.Stats

	// MinSV tracks the minimum singular values of the solved lines.
	MinSV stats.Stats

	// LinesSolved is the number of lines computed in this run,
	// excluding lines restored from a checkpoint.
	LinesSolved int

	// Capped is the number of lines that hit the iteration cap.
	Capped int

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

func (s *RunStats) observe(res *wcc.LineResult) {
	s.LinesSolved++
	s.Iterations.Update(float64(res.Iterations))
	s.MinSV.Update(res.MinSV)
	if res.Status == wcc.StepCapReached {
		s.Capped++
	}
}

// Fields returns the statistics as structured log fields.
func (s *RunStats) Fields() logrus.Fields {
	f := logrus.Fields{
		"lines_solved": s.LinesSolved,
		"capped_lines": s.Capped,
		"duration":     s.Duration.Round(time.Millisecond).String(),
	}
	if s.LinesSolved > 0 {
		f["mean_iterations"] = s.Iterations.Mean()
		f["max_iterations"] = s.Iterations.Max()
		f["min_sv"] = s.MinSV.Min()
	}
	return f
}
