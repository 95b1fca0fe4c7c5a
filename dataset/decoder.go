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
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/juju/errors"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/mat"
)

// Decoder turns an encoded image into a grayscale intensity matrix of shape
// (height, width) with values in [0, 1].
type Decoder interface {
	Decode(r io.Reader) (*mat.Dense, error)
}

// ImageDecoder decodes every format registered with the image package: PNG,
// JPEG, GIF, BMP, TIFF and WebP. When both Width and Height are positive the
// image is resized before conversion.
type ImageDecoder struct {
	Width  int
	Height int
}

func (d ImageDecoder) Decode(r io.Reader) (*mat.Dense, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if d.Width > 0 && d.Height > 0 {
		img = resize.Resize(uint(d.Width), uint(d.Height), img, resize.Bilinear)
	}
	return Grayscale(img)
}

// Grayscale converts img to luminance in [0, 1] using the 16-bit gray model.
func Grayscale(img image.Image) (*mat.Dense, error) {
	bounds := img.Bounds()
	height, width := bounds.Dy(), bounds.Dx()
	if height < 1 || width < 1 {
		return nil, errors.NotValidf("empty image %v", bounds)
	}
	x := mat.NewDense(height, width, nil)
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			gray := color.Gray16Model.Convert(img.At(bounds.Min.X+j, bounds.Min.Y+i)).(color.Gray16)
			x.Set(i, j, float64(gray.Y)/math.MaxUint16)
		}
	}
	return x, nil
}
