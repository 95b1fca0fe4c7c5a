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

// Package corrupt perturbs matrices with Gaussian noise and sparse outliers.
//
// Functions named Add* and ReplaceWith* mutate their argument and return it
// for chaining. GaussianNoise, SparseOutliers and ReplacedOutliers leave the
// input untouched and return a new matrix.
package corrupt

import (
	"math"

	"github.com/gorse-io/nmfdata/base"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// AddGaussianNoise adds sigma-scaled standard normal noise to x. A full
// matrix of draws is consumed even when sigma is zero, in which case the
// values of x are unchanged. Negative results are replaced by zero when
// clipAtZero is set.
func AddGaussianNoise(x *mat.Dense, rng base.RandomGenerator, sigma float64, clipAtZero bool) (*mat.Dense, error) {
	if sigma < 0 || math.IsNaN(sigma) {
		return nil, errors.NotValidf("noise sigma %v", sigma)
	}
	rows, cols := x.Dims()
	noise := rng.NormalMatrix(rows, cols, 0, 1)
	noise.Scale(sigma, noise)
	x.Add(x, noise)
	if clipAtZero {
		base.ClipAtZero(x)
	}
	return x, nil
}

// GaussianNoise is AddGaussianNoise on a copy of x.
func GaussianNoise(x mat.Matrix, rng base.RandomGenerator, sigma float64, clipAtZero bool) (*mat.Dense, error) {
	return AddGaussianNoise(base.Clone(x), rng, sigma, clipAtZero)
}

// AddSparseOutliers increments randomly chosen entries of x by draws from
// Uniform(0, magnitude). With T entries, k = max(1, round(fraction*T))
// linear positions (row-major) are drawn with replacement, so an entry may be
// hit more than once and then accumulates every increment. A zero fraction
// corrupts nothing. No clipping happens: outliers are strictly additive.
func AddSparseOutliers(x *mat.Dense, rng base.RandomGenerator, fraction, magnitude float64) (*mat.Dense, error) {
	if err := validateFraction(fraction); err != nil {
		return nil, err
	}
	if !(magnitude > 0) {
		return nil, errors.NotValidf("outlier magnitude %v", magnitude)
	}
	if fraction == 0 {
		return x, nil
	}
	rows, cols := x.Dims()
	total := rows * cols
	k := max(1, int(math.Round(fraction*float64(total))))
	positions := make([]int, k)
	for i := range positions {
		positions[i] = rng.Intn(total)
	}
	increments := rng.UniformVector(k, 0, magnitude)
	for i, p := range positions {
		r, c := p/cols, p%cols
		x.Set(r, c, x.At(r, c)+increments[i])
	}
	return x, nil
}

// SparseOutliers is AddSparseOutliers on a copy of x.
func SparseOutliers(x mat.Matrix, rng base.RandomGenerator, fraction, magnitude float64) (*mat.Dense, error) {
	return AddSparseOutliers(base.Clone(x), rng, fraction, magnitude)
}

// ReplaceWithOutliers overwrites k = round(fraction*T) distinct entries of x
// with max(x)*scale. Unlike AddSparseOutliers there is no floor of one: when
// k rounds to zero nothing is changed and no random numbers are drawn.
func ReplaceWithOutliers(x *mat.Dense, rng base.RandomGenerator, fraction, scale float64) (*mat.Dense, error) {
	if err := validateFraction(fraction); err != nil {
		return nil, err
	}
	if !(scale > 0) {
		return nil, errors.NotValidf("outlier scale %v", scale)
	}
	rows, cols := x.Dims()
	total := rows * cols
	k := int(math.Round(fraction * float64(total)))
	if k > 0 {
		value := mat.Max(x) * scale
		for _, p := range rng.Sample(0, total, k) {
			x.Set(p/cols, p%cols, value)
		}
	}
	return x, nil
}

// ReplacedOutliers is ReplaceWithOutliers on a copy of x.
func ReplacedOutliers(x mat.Matrix, rng base.RandomGenerator, fraction, scale float64) (*mat.Dense, error) {
	return ReplaceWithOutliers(base.Clone(x), rng, fraction, scale)
}

func validateFraction(fraction float64) error {
	if !(fraction >= 0 && fraction <= 1) {
		return errors.NotValidf("outlier fraction %v (must be in [0, 1])", fraction)
	}
	return nil
}
