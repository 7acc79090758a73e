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
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

var (
	// ErrTooFewLines indicates a configuration with fewer than two
	// initial lines.
	ErrTooFewLines = errors.New("surface: at least two lines are required")

	// ErrInvalidOption indicates an out-of-range option value.
	ErrInvalidOption = errors.New("surface: invalid option value")

	// ErrUnknownOption indicates an unrecognized option key in a
	// map override.
	ErrUnknownOption = errors.New("surface: unknown option")
)

// Options is the configuration surface of the convergence engine. The
// toml keys follow the historically recognized option names.
type Options struct {
	// NumLines is the initial number of lines (k-point strings).
	// At least 2 is required; at least 8 is recommended for good
	// results.
	NumLines int `toml:"num_strings"`

	// WCCTol is the tolerated movement of charge centers between
	// two discretization steps of one line.
	WCCTol float64 `toml:"wcc_tol"`

	// GapTol is the minimum circular distance between the largest
	// gap of a line and the charge centers of its right neighbor.
	GapTol float64 `toml:"gap_tol"`

	// MaxIter caps the refinement iterations of a single line.
	MaxIter int `toml:"max_iter"`

	// MinNeighborDist is the bisection floor: pairs closer than
	// this are no longer refined.
	MinNeighborDist float64 `toml:"min_neighbour_dist"`

	// NoIterate disables per-line refinement.
	NoIterate bool `toml:"no_iter"`

	// NoNeighborCheck disables neighbor refinement; the engine
	// performs a single pass.
	NoNeighborCheck bool `toml:"no_neighbour_check"`

	// UseCheckpoint toggles checkpoint persistence.
	UseCheckpoint bool `toml:"use_checkpoint"`

	// RangeMin and RangeMax bound the surface direction; lines are
	// initially spread evenly over [RangeMin, RangeMax].
	RangeMin float64 `toml:"range_min"`
	RangeMax float64 `toml:"range_max"`

	// Workers bounds the number of lines solved concurrently within
	// one outer iteration. One worker keeps the computation strictly
	// sequential.
	Workers int `toml:"workers"`

	// Verbose toggles progress reporting. It has no effect on
	// results.
	Verbose bool `toml:"verbose"`
}

// DefaultOptions returns the default engine configuration.
func DefaultOptions() Options {
	return Options{
		NumLines:        11,
		WCCTol:          1e-2,
		GapTol:          2e-2,
		MaxIter:         10,
		MinNeighborDist: 0.01,
		UseCheckpoint:   true,
		RangeMin:        0,
		RangeMax:        0.5,
		Workers:         1,
		Verbose:         true,
	}
}

// ReadOptions decodes toml-formatted options from r, starting from the
// defaults.
func ReadOptions(r io.Reader) (Options, error) {
	o := DefaultOptions()
	if _, err := toml.NewDecoder(r).Decode(&o); err != nil {
		return Options{}, fmt.Errorf("surface: decoding options: %w", err)
	}
	return o, nil
}

// Merge applies map-based overrides, coercing values to the target
// types. Keys use the same names as the toml representation.
func (o *Options) Merge(overrides map[string]interface{}) error {
	for key, v := range overrides {
		var err error
		switch key {
		case "num_strings":
			o.NumLines, err = cast.ToIntE(v)
		case "wcc_tol":
			o.WCCTol, err = cast.ToFloat64E(v)
		case "gap_tol":
			o.GapTol, err = cast.ToFloat64E(v)
		case "max_iter":
			o.MaxIter, err = cast.ToIntE(v)
		case "min_neighbour_dist":
			o.MinNeighborDist, err = cast.ToFloat64E(v)
		case "no_iter":
			o.NoIterate, err = cast.ToBoolE(v)
		case "no_neighbour_check":
			o.NoNeighborCheck, err = cast.ToBoolE(v)
		case "use_checkpoint":
			o.UseCheckpoint, err = cast.ToBoolE(v)
		case "range_min":
			o.RangeMin, err = cast.ToFloat64E(v)
		case "range_max":
			o.RangeMax, err = cast.ToFloat64E(v)
		case "workers":
			o.Workers, err = cast.ToIntE(v)
		case "verbose":
			o.Verbose, err = cast.ToBoolE(v)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownOption, key)
		}
		if err != nil {
			return fmt.Errorf("surface: option %q: %w", key, err)
		}
	}
	return nil
}

// Validate checks the configuration. It is fatal to the calculation;
// no partial state is produced for an invalid configuration.
func (o Options) Validate(log logrus.FieldLogger) error {
	if o.NumLines < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewLines, o.NumLines)
	}
	if o.NumLines < 8 && log != nil {
		log.WithField("num_strings", o.NumLines).
			Warn("num_strings should usually be >= 8 for good results")
	}
	if o.WCCTol <= 0 {
		return fmt.Errorf("%w: wcc_tol must be positive", ErrInvalidOption)
	}
	if o.GapTol <= 0 {
		return fmt.Errorf("%w: gap_tol must be positive", ErrInvalidOption)
	}
	if o.MaxIter < 1 {
		return fmt.Errorf("%w: max_iter must be at least 1", ErrInvalidOption)
	}
	if o.MinNeighborDist <= 0 {
		return fmt.Errorf("%w: min_neighbour_dist must be positive", ErrInvalidOption)
	}
	if o.RangeMax <= o.RangeMin {
		return fmt.Errorf("%w: range_max must exceed range_min", ErrInvalidOption)
	}
	return nil
}
