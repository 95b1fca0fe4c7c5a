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

package base

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Clone returns a new dense copy of m.
func Clone(m mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(m)
}

// ClipAtZero replaces every negative entry of x with zero.
func ClipAtZero(x *mat.Dense) {
	x.Apply(func(_, _ int, v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}, x)
}

// CountNegative counts entries strictly below zero.
func CountNegative(x mat.Matrix) int {
	rows, cols := x.Dims()
	count := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if x.At(i, j) < 0 {
				count++
			}
		}
	}
	return count
}

// ColumnMax returns the maximum of column j.
func ColumnMax(x mat.Matrix, j int) float64 {
	rows, _ := x.Dims()
	m := math.Inf(-1)
	for i := 0; i < rows; i++ {
		m = math.Max(m, x.At(i, j))
	}
	return m
}
