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

// Package pipeline runs a configured data preparation: build a base matrix,
// corrupt it and normalize it.
package pipeline

import (
	"os"

	"github.com/gorse-io/nmfdata/base"
	"github.com/gorse-io/nmfdata/base/log"
	"github.com/gorse-io/nmfdata/config"
	"github.com/gorse-io/nmfdata/corrupt"
	"github.com/gorse-io/nmfdata/dataset"
	"github.com/gorse-io/nmfdata/normalize"
	"github.com/gorse-io/nmfdata/synthetic"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Result holds the prepared matrix and whatever the source produced with it.
type Result struct {
	X *mat.Dense
	// Clean is X before corruption and normalization.
	Clean *mat.Dense
	// W and H are set for the synthetic source.
	W *mat.Dense
	H *mat.Dense
	// Height, Width and Names are set for the images source.
	Height int
	Width  int
	Names  []string
}

// Run builds the base matrix from cfg.Source, then corrupts and normalizes it
// in place. One random generator, seeded from cfg.Seed, feeds both the
// generator and the corruption, so a seeded run is reproducible.
func Run(cfg *config.Config, opts ...dataset.Option) (*Result, error) {
	rng := cfg.RandomGenerator()
	result, err := load(cfg, rng, opts...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result.Clean = base.Clone(result.X)
	rows, cols := result.X.Dims()
	log.Logger().Debug("base matrix ready",
		zap.String("source", cfg.Source),
		log.ShapeField("shape", rows, cols))

	if _, err = corrupt.Apply(result.X, rng, cfg.Corruption.Params()); err != nil {
		return nil, errors.Trace(err)
	}
	if err = normalize.InPlace(result.X, cfg.Normalization.ClipAtZero, cfg.Normalization.Mode); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Debug("matrix prepared",
		zap.Float64("noise_std", cfg.Corruption.NoiseStd),
		zap.Float64("outlier_fraction", cfg.Corruption.OutlierFraction),
		zap.String("outlier_mode", string(cfg.Corruption.OutlierMode)),
		zap.String("normalization", string(cfg.Normalization.Mode)))
	return result, nil
}

func load(cfg *config.Config, rng base.RandomGenerator, opts ...dataset.Option) (*Result, error) {
	switch cfg.Source {
	case config.SourceSynthetic:
		x, w, h, err := synthetic.GenerateWithNoise(rng,
			cfg.Synthetic.Rows, cfg.Synthetic.Cols, cfg.Synthetic.Rank, cfg.Synthetic.NoiseStd)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return &Result{X: x, W: w, H: h}, nil
	case config.SourceImages:
		opts = append([]dataset.Option{
			dataset.WithDecoder(dataset.ImageDecoder{
				Width:  cfg.Images.Width,
				Height: cfg.Images.Height,
			}),
			dataset.WithJobs(cfg.Images.Jobs),
		}, opts...)
		folder, err := dataset.LoadFolder(cfg.Images.Dir, cfg.Images.Pattern, cfg.Images.Normalize, opts...)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return &Result{X: folder.X, Height: folder.Height, Width: folder.Width, Names: folder.Names}, nil
	case config.SourceCSV:
		f, err := os.Open(cfg.CSV.Path)
		if err != nil {
			return nil, errors.Trace(err)
		}
		defer f.Close()
		x, err := dataset.ReadCSV(f)
		if err != nil {
			return nil, errors.Annotatef(err, "failed to read %s", cfg.CSV.Path)
		}
		return &Result{X: x}, nil
	}
	return nil, errors.NotValidf("source %q", cfg.Source)
}

// Summary describes the value range of a matrix.
type Summary struct {
	Rows      int
	Cols      int
	Min       float64
	Max       float64
	Mean      float64
	Negatives int
}

func Summarize(x mat.Matrix) Summary {
	rows, cols := x.Dims()
	data := base.Clone(x).RawMatrix().Data
	return Summary{
		Rows:      rows,
		Cols:      cols,
		Min:       floats.Min(data),
		Max:       floats.Max(data),
		Mean:      stat.Mean(data, nil),
		Negatives: base.CountNegative(x),
	}
}
