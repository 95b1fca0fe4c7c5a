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

package dataset

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/gorse-io/nmfdata/base"
	"github.com/gorse-io/nmfdata/base/log"
	"github.com/gorse-io/nmfdata/base/parallel"
	"github.com/gorse-io/nmfdata/normalize"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Folder is a stack of same-sized grayscale images. Image j occupies column j
// of X, flattened row by row: pixel (y, x) is stored at row y*Width+x.
type Folder struct {
	X      *mat.Dense
	Height int
	Width  int
	Names  []string
}

// Image reshapes column j of X back into a Height × Width matrix.
func (f *Folder) Image(j int) *mat.Dense {
	return mat.NewDense(f.Height, f.Width, mat.Col(nil, j, f.X))
}

type options struct {
	fs       afero.Fs
	decoder  Decoder
	progress func(done, total int)
	jobs     int
}

// Option configures LoadFolder.
type Option func(*options)

// WithFs reads images from fs instead of the operating system.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithDecoder replaces the default ImageDecoder.
func WithDecoder(decoder Decoder) Option {
	return func(o *options) {
		o.decoder = decoder
	}
}

// WithProgress calls fn after each decoded image.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithJobs decodes images on n goroutines.
func WithJobs(n int) Option {
	return func(o *options) {
		o.jobs = n
	}
}

// Match reports whether a file name is selected by pattern. An empty pattern
// selects everything, a pattern with glob metacharacters is matched with
// filepath.Match and anything else is a substring test, so ".png" selects
// PNG files.
func Match(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	if strings.ContainsAny(pattern, "*?[") {
		matched, err := filepath.Match(pattern, name)
		return err == nil && matched
	}
	return strings.Contains(name, pattern)
}

// MatchFiles lists the regular files of dir selected by pattern, sorted by name.
func MatchFiles(fs afero.Fs, dir, pattern string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("directory %s", dir)
		}
		return nil, errors.Trace(err)
	}
	names := lo.FilterMap(entries, func(entry os.FileInfo, _ int) (string, bool) {
		return entry.Name(), !entry.IsDir() && Match(pattern, entry.Name())
	})
	slices.Sort(names)
	return names, nil
}

// LoadFolder decodes every file in dir matching pattern and stacks the images
// as columns of a (height*width) × n matrix. All images must share the shape
// of the first one, otherwise base.ErrShapeMismatch is returned. When
// normalized is set the whole matrix is shifted and rescaled into [0, 1] with
// normalize.Nonnegative. Either every image loads or no data is returned.
func LoadFolder(dir, pattern string, normalized bool, opts ...Option) (*Folder, error) {
	o := options{
		fs:      afero.NewOsFs(),
		decoder: ImageDecoder{},
		jobs:    1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	names, err := MatchFiles(o.fs, dir, pattern)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(names) == 0 {
		return nil, errors.NotFoundf("files matching %q in %s", pattern, dir)
	}

	var (
		mu   sync.Mutex
		done int
	)
	images := make([]*mat.Dense, len(names))
	err = parallel.Parallel(len(names), o.jobs, func(_, i int) error {
		img, err := decodeFile(o.fs, o.decoder, filepath.Join(dir, names[i]))
		if err != nil {
			return errors.Annotatef(err, "failed to decode %s", names[i])
		}
		images[i] = img
		if o.progress != nil {
			mu.Lock()
			done++
			o.progress(done, len(names))
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	height, width := images[0].Dims()
	for i, img := range images[1:] {
		if rows, cols := img.Dims(); rows != height || cols != width {
			return nil, errors.Annotatef(base.ErrShapeMismatch,
				"image %s is %dx%d, expected %dx%d", names[i+1], rows, cols, height, width)
		}
	}

	x := mat.NewDense(height*width, len(images), nil)
	for j, img := range images {
		x.SetCol(j, flatten(img))
	}
	if normalized {
		normalize.Nonnegative(x, true)
	}
	log.Logger().Debug("load image folder",
		zap.String("dir", dir),
		zap.String("pattern", pattern),
		zap.Int("images", len(names)),
		log.ShapeField("image_shape", height, width))
	return &Folder{X: x, Height: height, Width: width, Names: names}, nil
}

func decodeFile(fs afero.Fs, decoder Decoder, path string) (*mat.Dense, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	return decoder.Decode(f)
}

// flatten copies m row by row into a new slice.
func flatten(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return data
}
