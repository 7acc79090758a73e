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
	"context"
	"errors"
	"io/fs"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/topomodel/wannier/wcc"
)

// ErrNoCheckpointer indicates a Resume call on an engine without a
// configured Checkpointer.
var ErrNoCheckpointer = errors.New("surface: no checkpointer configured")

// Engine drives line computations across an ordered family of loops,
// inserting new loops by bisection where neighboring results are not
// sufficiently close.
//
// The engine owns the Result exclusively for the duration of a run.
// With Options.Workers > 1, lines within one outer iteration are
// solved concurrently and the Observer must be safe for concurrent
// use; the neighbor-check phase is always sequential and left to
// right, which is what makes insertion order deterministic.
type Engine struct {
	// Provider supplies the overlap matrices. Provider errors abort
	// the run and are propagated unchanged.
	Provider wcc.OverlapProvider

	// Options is the engine configuration.
	Options Options

	// Checkpoint, if non-nil and enabled in the options, persists
	// the result after every line computation.
	Checkpoint Checkpointer

	// Observer receives line solver progress events.
	Observer wcc.Observer

	// Log receives progress reporting; nil uses a standard logger
	// honoring Options.Verbose.
	Log logrus.FieldLogger

	stats RunStats
}

// Run computes a fresh surface result.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	log := e.logger()
	if err := e.Options.Validate(log); err != nil {
		return nil, err
	}
	res, err := NewResult(UniformPositions(e.Options.RangeMin, e.Options.RangeMax, e.Options.NumLines))
	if err != nil {
		return nil, err
	}
	return e.run(ctx, res, log)
}

// Resume restores the checkpoint and continues the computation,
// recomputing nothing that was already solved. A missing checkpoint
// file falls back to a fresh run.
func (e *Engine) Resume(ctx context.Context) (*Result, error) {
	log := e.logger()
	if err := e.Options.Validate(log); err != nil {
		return nil, err
	}
	if e.Checkpoint == nil {
		return nil, ErrNoCheckpointer
	}
	res, err := e.Checkpoint.Load()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info("no checkpoint found, starting fresh")
		res, err = NewResult(UniformPositions(e.Options.RangeMin, e.Options.RangeMax, e.Options.NumLines))
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		log.WithFields(logrus.Fields{
			"lines":   len(res.Lines),
			"version": res.Version,
		}).Info("resuming from checkpoint")
	}
	return e.run(ctx, res, log)
}

// Stats returns the statistics of the most recent run.
func (e *Engine) Stats() RunStats { return e.stats }

func (e *Engine) run(ctx context.Context, res *Result, log logrus.FieldLogger) (*Result, error) {
	o := e.Options
	log.WithFields(logrus.Fields{
		"num_strings":        o.NumLines,
		"wcc_tol":            o.WCCTol,
		"gap_tol":            o.GapTol,
		"max_iter":           o.MaxIter,
		"min_neighbour_dist": o.MinNeighborDist,
		"no_iter":            o.NoIterate,
		"no_neighbour_check": o.NoNeighborCheck,
		"workers":            o.Workers,
	}).Info("starting wcc calculation")

	start := time.Now()
	e.stats = RunStats{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.solveUnsolved(ctx, res); err != nil {
			return nil, err
		}
		if o.NoNeighborCheck {
			log.Info("skipping neighbour checks")
			break
		}
		if e.checkNeighbors(res, log) {
			break
		}
	}
	if err := e.save(res); err != nil {
		return nil, err
	}
	e.stats.Duration = time.Since(start)
	log.WithFields(e.stats.Fields()).Info("finished wcc calculation")
	return res, nil
}

// solveUnsolved computes every line that has no result yet,
// checkpointing after each one so a failure mid-run does not lose
// prior progress.
func (e *Engine) solveUnsolved(ctx context.Context, res *Result) error {
	solver := &wcc.Solver{
		Tol:       e.Options.WCCTol,
		MaxIter:   e.Options.MaxIter,
		NoIterate: e.Options.NoIterate,
		Observer:  e.Observer,
	}
	var unsolved []int
	for i, l := range res.Lines {
		if !l.Solved {
			unsolved = append(unsolved, i)
		}
	}
	if len(unsolved) == 0 {
		return nil
	}

	if e.Options.Workers <= 1 {
		for _, i := range unsolved {
			lr, err := solver.Solve(ctx, res.Lines[i].Position, e.Provider)
			if err != nil {
				return err
			}
			e.record(res, i, lr)
			if err := e.save(res); err != nil {
				return err
			}
		}
		return nil
	}

	// Line solves within one outer iteration are independent; only
	// the shared result and checkpoint need serializing.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Options.Workers)
	for _, i := range unsolved {
		i := i
		g.Go(func() error {
			lr, err := solver.Solve(gctx, res.Lines[i].Position, e.Provider)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			e.record(res, i, lr)
			return e.save(res)
		})
	}
	return g.Wait()
}

func (e *Engine) record(res *Result, i int, lr *wcc.LineResult) {
	res.Lines[i] = Line{
		Position:   lr.Position,
		WCC:        lr.WCC,
		Gap:        lr.Gap,
		GapWidth:   lr.GapWidth,
		MinSV:      lr.MinSV,
		Iterations: lr.Iterations,
		Steps:      lr.Steps,
		Status:     lr.Status,
		Solved:     true,
	}
	e.stats.observe(lr)
}

// checkNeighbors scans the neighbor pairs left to right and resolves
// the first unchecked pair: it is marked satisfied, abandoned at the
// minimum spacing, or bisected. At most one line is inserted per call;
// an insertion restarts the scan. It returns true once every pair is
// terminal.
func (e *Engine) checkNeighbors(res *Result, log logrus.FieldLogger) bool {
	for i, state := range res.Neighbors {
		if state.Terminal() {
			continue
		}
		left, right := &res.Lines[i], &res.Lines[i+1]
		if !left.Solved || !right.Solved {
			return false
		}
		plog := log.WithFields(logrus.Fields{
			"left":  left.Position,
			"right": right.Position,
		})
		plog.Info("checking neighbouring lines")
		if gapDistanceOK(left, right, e.Options.GapTol) {
			plog.Info("condition fulfilled")
			res.Neighbors[i] = Satisfied
			continue
		}
		if right.Position-left.Position < e.Options.MinNeighborDist {
			plog.Warn("reached minimum distance between neighbours, did not converge")
			res.Neighbors[i] = MinSpacingReached
			continue
		}
		mid := 0.5 * (left.Position + right.Position)
		plog.WithField("position", mid).Info("condition not fulfilled, inserting line")
		res.insertAt(i, mid)
		return false
	}
	return res.Done()
}

// gapDistanceOK reports whether the largest gap of the left line is
// farther than the tolerance from every charge center of the right
// line. The check is deliberately asymmetric: the gap must track the
// neighboring cell, not the other way around.
func gapDistanceOK(left, right *Line, gapTol float64) bool {
	for _, w := range right.WCC {
		if wcc.CircularDistance(left.Gap, w) < gapTol {
			return false
		}
	}
	return true
}

func (e *Engine) save(res *Result) error {
	if e.Checkpoint == nil || !e.Options.UseCheckpoint {
		return nil
	}
	return e.Checkpoint.Save(res)
}

func (e *Engine) logger() logrus.FieldLogger {
	if e.Log != nil {
		return e.Log
	}
	l := logrus.New()
	if !e.Options.Verbose {
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}
