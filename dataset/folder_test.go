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
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gorse-io/nmfdata/base"
	"github.com/juju/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func encodeGray(t *testing.T, height, width int, pixel func(y, x int) uint8) []byte {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: pixel(y, x)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, fs afero.Fs, path string, data []byte) {
	require.NoError(t, afero.WriteFile(fs, path, data, 0644))
}

func newImageFs(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("images/c.png", 0755))
	writeFile(t, fs, "images/b.png", encodeGray(t, 4, 4, func(y, x int) uint8 { return 255 - uint8(y*4+x) }))
	writeFile(t, fs, "images/a.png", encodeGray(t, 4, 4, func(y, x int) uint8 { return uint8(16 * (y*4 + x)) }))
	writeFile(t, fs, "images/notes.txt", []byte("not an image"))
	return fs
}

func TestMatch(t *testing.T) {
	assert.True(t, Match("", "a.png"))
	assert.True(t, Match(".png", "a.png"))
	assert.False(t, Match(".png", "a.jpg"))
	assert.True(t, Match("face", "face_01.pgm"))
	assert.True(t, Match("a*.png", "a1.png"))
	assert.False(t, Match("a*.png", "b1.png"))
	assert.False(t, Match("[", "["))
}

func TestLoadFolder(t *testing.T) {
	fs := newImageFs(t)
	folder, err := LoadFolder("images", ".png", false, WithFs(fs))
	require.NoError(t, err)
	rows, cols := folder.X.Dims()
	assert.Equal(t, 16, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 4, folder.Height)
	assert.Equal(t, 4, folder.Width)
	assert.Equal(t, []string{"a.png", "b.png"}, folder.Names)

	// row-major flattening: pixel (y, x) is row y*4+x
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.InDelta(t, float64(16*(y*4+x))/255, folder.X.At(y*4+x, 0), 1e-9)
			assert.InDelta(t, float64(255-(y*4+x))/255, folder.X.At(y*4+x, 1), 1e-9)
		}
	}

	// reshaping recovers the decoded image
	f, err := fs.Open("images/b.png")
	require.NoError(t, err)
	defer f.Close()
	decoded, err := ImageDecoder{}.Decode(f)
	require.NoError(t, err)
	assert.True(t, mat.Equal(decoded, folder.Image(1)))
}

func TestLoadFolder_Normalize(t *testing.T) {
	folder, err := LoadFolder("images", ".png", true, WithFs(newImageFs(t)))
	require.NoError(t, err)
	assert.Equal(t, 0.0, mat.Min(folder.X))
	assert.Equal(t, 1.0, mat.Max(folder.X))
}

func TestLoadFolder_Glob(t *testing.T) {
	folder, err := LoadFolder("images", "b*", false, WithFs(newImageFs(t)))
	require.NoError(t, err)
	assert.Equal(t, []string{"b.png"}, folder.Names)
	_, cols := folder.X.Dims()
	assert.Equal(t, 1, cols)
}

func TestLoadFolder_NotFound(t *testing.T) {
	fs := newImageFs(t)
	_, err := LoadFolder("images", ".jpg", false, WithFs(fs))
	assert.True(t, errors.Is(err, errors.NotFound))

	require.NoError(t, fs.MkdirAll("empty", 0755))
	_, err = LoadFolder("empty", "", false, WithFs(fs))
	assert.True(t, errors.Is(err, errors.NotFound))

	_, err = LoadFolder("missing", ".png", false, WithFs(fs))
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestLoadFolder_ShapeMismatch(t *testing.T) {
	fs := newImageFs(t)
	writeFile(t, fs, "images/d.png", encodeGray(t, 4, 5, func(y, x int) uint8 { return 0 }))
	folder, err := LoadFolder("images", ".png", false, WithFs(fs))
	assert.True(t, errors.Is(err, base.ErrShapeMismatch))
	assert.Contains(t, err.Error(), "d.png")
	assert.Nil(t, folder)
}

func TestLoadFolder_Resize(t *testing.T) {
	fs := newImageFs(t)
	writeFile(t, fs, "images/d.png", encodeGray(t, 8, 6, func(y, x int) uint8 { return 128 }))
	folder, err := LoadFolder("images", ".png", false, WithFs(fs),
		WithDecoder(ImageDecoder{Width: 3, Height: 2}))
	require.NoError(t, err)
	rows, cols := folder.X.Dims()
	assert.Equal(t, 6, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 2, folder.Height)
	assert.Equal(t, 3, folder.Width)
}

func TestLoadFolder_DecodeError(t *testing.T) {
	_, err := LoadFolder("images", "", false, WithFs(newImageFs(t)))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "notes.txt")
}

type failingDecoder struct{}

func (failingDecoder) Decode(io.Reader) (*mat.Dense, error) {
	return nil, errors.New("codec unavailable")
}

func TestLoadFolder_Options(t *testing.T) {
	var calls [][2]int
	_, err := LoadFolder("images", ".png", false, WithFs(newImageFs(t)),
		WithProgress(func(done, total int) {
			calls = append(calls, [2]int{done, total})
		}))
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)

	_, err = LoadFolder("images", ".png", false, WithFs(newImageFs(t)), WithDecoder(failingDecoder{}))
	assert.ErrorContains(t, err, "codec unavailable")
}

func TestLoadFolder_Jobs(t *testing.T) {
	fs := afero.NewMemMapFs()
	for i := 0; i < 20; i++ {
		writeFile(t, fs, fmt.Sprintf("images/%02d.png", i),
			encodeGray(t, 3, 2, func(y, x int) uint8 { return uint8(i*6 + y*2 + x) }))
	}
	sequential, err := LoadFolder("images", ".png", false, WithFs(fs))
	require.NoError(t, err)
	var mu sync.Mutex
	var last int
	concurrent, err := LoadFolder("images", ".png", false, WithFs(fs), WithJobs(4),
		WithProgress(func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, last+1, done)
			assert.Equal(t, 20, total)
			last = done
		}))
	require.NoError(t, err)
	assert.Equal(t, 20, last)
	assert.True(t, mat.Equal(sequential.X, concurrent.X))
	assert.Equal(t, sequential.Names, concurrent.Names)
}

func TestLoadFolder_OsFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"x.png", "y.png"} {
		data := encodeGray(t, 4, 4, func(y, x int) uint8 { return uint8(y + x) })
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	}
	folder, err := LoadFolder(dir, ".png", false)
	require.NoError(t, err)
	rows, cols := folder.X.Dims()
	assert.Equal(t, 16, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []string{"x.png", "y.png"}, folder.Names)
}

func TestGrayscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(2, 3, 4, 4))
	img.Set(2, 3, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(3, 3, color.RGBA{A: 255})
	x, err := Grayscale(img)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, x.RawMatrix().Data)

	_, err = Grayscale(image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.True(t, errors.Is(err, errors.NotValid))
}
