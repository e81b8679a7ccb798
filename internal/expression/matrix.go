// Copyright 2019 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package expression provides support for expression and TFA matrices: the
// binary matrix format, gene and condition selection, and gene profiles.
package expression

import "strings"

// Matrix is a dense row major matrix with named rows (genes) and named
// columns (conditions).  A Matrix is not modified after it is decoded.
type Matrix struct {
	RowNames []string
	ColNames []string

	// Values holds Rows()*Cols() values; Values[i*Cols()+j] belongs to
	// RowNames[i] and ColNames[j].
	Values []float64

	// Min and Max are the range over all values, computed once by Decode.
	// They are zero for TFA matrices and for empty matrices.
	Min, Max float64
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	return len(m.RowNames)
}

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	return len(m.ColNames)
}

// At returns the value of row i and column j.
func (m *Matrix) At(i, j int) float64 {
	return m.Values[i*m.Cols()+j]
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	cols := m.Cols()
	row := make([]float64, cols)
	copy(row, m.Values[i*cols:(i+1)*cols])
	return row
}

// Lookup returns the index of the first row whose name equals name, ignoring
// case.
func (m *Matrix) Lookup(name string) (int, bool) {
	for i, row := range m.RowNames {
		if strings.EqualFold(row, name) {
			return i, true
		}
	}
	return -1, false
}

func valueRange(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
