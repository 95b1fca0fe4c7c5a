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
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/gorse-io/nmfdata/base"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// WriteCSV writes one line per row of x. Values use the shortest
// representation that parses back to the same float64.
func WriteCSV(w io.Writer, x mat.Matrix) error {
	writer := csv.NewWriter(w)
	rows, cols := x.Dims()
	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(x.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return errors.Trace(err)
		}
	}
	writer.Flush()
	return errors.Trace(writer.Error())
}

// ReadCSV parses a matrix written by WriteCSV. Rows of different length yield
// base.ErrShapeMismatch.
func ReadCSV(r io.Reader) (*mat.Dense, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(records) == 0 {
		return nil, errors.NotFoundf("rows in csv")
	}
	cols := len(records[0])
	data := make([]float64, 0, len(records)*cols)
	for i, record := range records {
		if len(record) != cols {
			return nil, errors.Annotatef(base.ErrShapeMismatch,
				"line %d has %d fields, expected %d", i+1, len(record), cols)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.NotValidf("value %q at line %d column %d", field, i+1, j+1)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(len(records), cols, data), nil
}
