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
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// Checkpointer persists the state of a surface computation so an
// interrupted run can be resumed without recomputing solved lines.
type Checkpointer interface {
	// Save persists the result. It is called after every individual
	// line computation and at the end of the run.
	Save(*Result) error

	// Load restores a previously saved result. A missing checkpoint
	// is reported with an error satisfying errors.Is(err,
	// fs.ErrNotExist).
	Load() (*Result, error)
}

// FileCheckpoint stores results in a gob-encoded file. Saves are
// atomic: the data is written to a temporary file in the same
// directory and then renamed into place.
type FileCheckpoint struct {
	Path string
}

// Save writes the result to the checkpoint file.
func (c FileCheckpoint) Save(res *Result) error {
	tmp, err := os.CreateTemp(filepath.Dir(c.Path), filepath.Base(c.Path)+".tmp*")
	if err != nil {
		return fmt.Errorf("surface: creating checkpoint: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(res); err != nil {
		tmp.Close()
		return fmt.Errorf("surface: encoding checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("surface: writing checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.Path); err != nil {
		return fmt.Errorf("surface: replacing checkpoint: %w", err)
	}
	return nil
}

// Load reads the result back from the checkpoint file and verifies its
// structural invariants.
func (c FileCheckpoint) Load() (*Result, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("surface: opening checkpoint: %w", err)
	}
	defer f.Close()

	res := new(Result)
	if err := gob.NewDecoder(f).Decode(res); err != nil {
		return nil, fmt.Errorf("surface: decoding checkpoint %s: %w", c.Path, err)
	}
	if err := res.validate(); err != nil {
		return nil, fmt.Errorf("surface: checkpoint %s: %w", c.Path, err)
	}
	return res, nil
}
