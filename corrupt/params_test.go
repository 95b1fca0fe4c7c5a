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

package corrupt

import (
	"testing"

	"github.com/gorse-io/nmfdata/base"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestParseOutlierMode(t *testing.T) {
	mode, err := ParseOutlierMode("ADD")
	assert.NoError(t, err)
	assert.Equal(t, AddOutliers, mode)
	mode, err = ParseOutlierMode("replace")
	assert.NoError(t, err)
	assert.Equal(t, ReplaceOutliers, mode)
	_, err = ParseOutlierMode("overwrite")
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestApply_Identity(t *testing.T) {
	x := mat.NewDense(3, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	before := mat.DenseCopyOf(x)
	_, err := Apply(x, base.NewRandomGenerator(0), NewParams())
	assert.NoError(t, err)
	assert.True(t, mat.Equal(before, x))
}

func TestApply(t *testing.T) {
	params := NewParams().SetNoise(0.1, true).SetOutliers(AddOutliers, 0.05)
	x := mat.NewDense(10, 10, nil)
	_, err := Apply(x, base.NewRandomGenerator(11), params)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, mat.Min(x), 0.0)

	// same as running both steps by hand
	expected := mat.NewDense(10, 10, nil)
	rng := base.NewRandomGenerator(11)
	_, err = AddGaussianNoise(expected, rng, 0.1, true)
	assert.NoError(t, err)
	_, err = AddSparseOutliers(expected, rng, 0.05, 10)
	assert.NoError(t, err)
	assert.True(t, mat.Equal(expected, x))
}

func TestApply_Replace(t *testing.T) {
	params := NewParams().SetOutliers(ReplaceOutliers, 0.1)
	x := mat.NewDense(10, 10, nil)
	x.Set(0, 0, 1)
	_, err := Apply(x, base.NewRandomGenerator(11), params)
	assert.NoError(t, err)
	assert.Equal(t, 5.0, mat.Max(x))
}

func TestApply_InvalidMode(t *testing.T) {
	params := NewParams().SetOutliers(OutlierMode("swap"), 0.1)
	_, err := Apply(mat.NewDense(2, 2, nil), base.NewRandomGenerator(0), params)
	assert.True(t, errors.Is(err, errors.NotValid))
}
