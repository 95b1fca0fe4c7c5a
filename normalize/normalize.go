// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package normalize maps matrices into bounded non-negative ranges.
//
// Every operation comes in two flavors: a mutating one that works on a
// *mat.Dense owned by the caller, and a copy-returning one that only reads
// its input.
package normalize

import (
	"strings"

	"github.com/gorse-io/nmfdata/base"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// Mode selects how a matrix is scaled after optional clipping.
type Mode string

const (
	// None leaves values unscaled.
	None Mode = "none"
	// GlobalMax divides the whole matrix by its maximum.
	GlobalMax Mode = "global_max"
	// ColumnMax divides each column by its own maximum.
	ColumnMax Mode = "column_max"
)

// Modes lists every supported Mode.
var Modes = []Mode{None, GlobalMax, ColumnMax}

// ParseMode converts a string to a Mode. Matching ignores case and
// surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	if err := mode.Validate(); err != nil {
		return "", err
	}
	return mode, nil
}

// Validate returns errors.NotValid for an unknown mode.
func (mode Mode) Validate() error {
	switch mode {
	case None, GlobalMax, ColumnMax:
		return nil
	}
	return errors.NotValidf("normalization mode %q", string(mode))
}

// Normalize returns a normalized copy of x. x is not modified.
func Normalize(x mat.Matrix, clipAtZero bool, mode Mode) (*mat.Dense, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	y := base.Clone(x)
	if err := InPlace(y, clipAtZero, mode); err != nil {
		return nil, errors.Trace(err)
	}
	return y, nil
}

// InPlace normalizes x. Negative entries are replaced by zero first when
// clipAtZero is set. A maximum that is not positive leaves the matrix (or the
// column, for ColumnMax) unchanged.
func InPlace(x *mat.Dense, clipAtZero bool, mode Mode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	if clipAtZero {
		base.ClipAtZero(x)
	}
	switch mode {
	case GlobalMax:
		divide(x, mat.Max(x))
	case ColumnMax:
		rows, cols := x.Dims()
		for j := 0; j < cols; j++ {
			m := base.ColumnMax(x, j)
			if m <= 0 {
				continue
			}
			for i := 0; i < rows; i++ {
				x.Set(i, j, x.At(i, j)/m)
			}
		}
	}
	return nil
}

// Nonnegative shifts x so that its minimum is zero when the minimum is
// negative, and then, if rescale is set, divides by the new maximum when it
// is positive. Unlike InPlace with clipping, negative entries keep their
// relative order and spacing.
func Nonnegative(x *mat.Dense, rescale bool) {
	if m := mat.Min(x); m < 0 {
		x.Apply(func(_, _ int, v float64) float64 {
			return v - m
		}, x)
	}
	if !rescale {
		return
	}
	divide(x, mat.Max(x))
}

func divide(x *mat.Dense, m float64) {
	if m <= 0 {
		return
	}
	x.Apply(func(_, _ int, v float64) float64 {
		return v / m
	}, x)
}

// NonnegativeCopy is Nonnegative on a copy of x.
func NonnegativeCopy(x mat.Matrix, rescale bool) *mat.Dense {
	y := base.Clone(x)
	Nonnegative(y, rescale)
	return y
}

// InUnitRange reports whether every entry lies in [0, 1].
func InUnitRange(x mat.Matrix) bool {
	return mat.Min(x) >= 0 && mat.Max(x) <= 1
}
