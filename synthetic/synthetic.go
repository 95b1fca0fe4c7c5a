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

// Package synthetic generates ground-truth low-rank non-negative matrices.
package synthetic

import (
	"github.com/gorse-io/nmfdata/base"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// Generate returns X = W·H where W (rows × rank) and H (rank × cols) are drawn
// from Uniform(0, 1). W is drawn before H. X, W and H are independent
// allocations owned by the caller.
func Generate(rng base.RandomGenerator, rows, cols, rank int) (x, w, h *mat.Dense, err error) {
	return GenerateWithNoise(rng, rows, cols, rank, 0)
}

// GenerateWithNoise is Generate followed by additive Gaussian noise with
// standard deviation noiseStd and clipping at zero. No random numbers are
// drawn for the noise when noiseStd is zero, so X equals W·H exactly.
func GenerateWithNoise(rng base.RandomGenerator, rows, cols, rank int, noiseStd float64) (x, w, h *mat.Dense, err error) {
	if err = base.ValidateDims([]string{"rows", "cols", "rank"}, rows, cols, rank); err != nil {
		return nil, nil, nil, errors.Trace(err)
	}
	if noiseStd < 0 {
		return nil, nil, nil, errors.NotValidf("noise std %v (must be non-negative)", noiseStd)
	}
	w = rng.UniformMatrix(rows, rank, 0, 1)
	h = rng.UniformMatrix(rank, cols, 0, 1)
	x = mat.NewDense(rows, cols, nil)
	x.Mul(w, h)
	if noiseStd > 0 {
		noise := rng.NormalMatrix(rows, cols, 0, 1)
		noise.Scale(noiseStd, noise)
		x.Add(x, noise)
		base.ClipAtZero(x)
	}
	return x, w, h, nil
}
