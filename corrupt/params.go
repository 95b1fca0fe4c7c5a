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
	"strings"

	"github.com/gorse-io/nmfdata/base"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// OutlierMode selects between the two outlier semantics.
type OutlierMode string

const (
	// AddOutliers increments entries, see AddSparseOutliers.
	AddOutliers OutlierMode = "add"
	// ReplaceOutliers overwrites entries, see ReplaceWithOutliers.
	ReplaceOutliers OutlierMode = "replace"
)

// ParseOutlierMode converts a string to an OutlierMode.
func ParseOutlierMode(s string) (OutlierMode, error) {
	mode := OutlierMode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case AddOutliers, ReplaceOutliers:
		return mode, nil
	}
	return "", errors.NotValidf("outlier mode %q", s)
}

// Params bundles the corruption applied by Apply.
type Params struct {
	NoiseStd   float64
	ClipAtZero bool

	OutlierFraction float64
	OutlierMode     OutlierMode
	// OutlierMagnitude bounds the increments of AddOutliers.
	OutlierMagnitude float64
	// OutlierScale multiplies max(X) for ReplaceOutliers.
	OutlierScale float64
}

// NewParams returns parameters that leave a matrix untouched.
func NewParams() *Params {
	return &Params{
		ClipAtZero:       true,
		OutlierMode:      AddOutliers,
		OutlierMagnitude: 10,
		OutlierScale:     5,
	}
}

func (p *Params) SetNoise(std float64, clipAtZero bool) *Params {
	p.NoiseStd = std
	p.ClipAtZero = clipAtZero
	return p
}

func (p *Params) SetOutliers(mode OutlierMode, fraction float64) *Params {
	p.OutlierMode = mode
	p.OutlierFraction = fraction
	return p
}

// Apply corrupts x in place: noise first, then outliers. A zero noise std
// skips the noise step and a zero fraction skips the outlier step, so neither
// consumes random numbers.
func Apply(x *mat.Dense, rng base.RandomGenerator, p *Params) (*mat.Dense, error) {
	var err error
	if p.NoiseStd != 0 {
		if x, err = AddGaussianNoise(x, rng, p.NoiseStd, p.ClipAtZero); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if p.OutlierFraction == 0 {
		return x, nil
	}
	switch p.OutlierMode {
	case AddOutliers:
		x, err = AddSparseOutliers(x, rng, p.OutlierFraction, p.OutlierMagnitude)
	case ReplaceOutliers:
		x, err = ReplaceWithOutliers(x, rng, p.OutlierFraction, p.OutlierScale)
	default:
		return nil, errors.NotValidf("outlier mode %q", string(p.OutlierMode))
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return x, nil
}
