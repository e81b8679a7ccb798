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

package expression

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/googlegenomics/genotet/internal/binary"
	"github.com/googlegenomics/genotet/internal/genomics"
)

// The matrix file starts with four int32 values: the row count, the column
// count and the byte lengths of the row and column name blocks.
const headerSize = 16

// nameSeparator joins names inside a name block.
const nameSeparator = " "

// Decode decodes an expression matrix and computes its global value range.
func Decode(b []byte) (*Matrix, error) {
	m, err := decode(b)
	if err != nil {
		return nil, err
	}
	m.Min, m.Max = valueRange(m.Values)
	return m, nil
}

// DecodeTFA decodes a TFA matrix.  TFA matrices share the expression matrix
// layout but their values are only reported per gene, so no range is kept.
func DecodeTFA(b []byte) (*Matrix, error) {
	return decode(b)
}

func decode(b []byte) (*Matrix, error) {
	d := binary.NewDecoder(b)

	var header [4]int
	for i, field := range []string{"row count", "column count", "row name length", "column name length"} {
		n, err := d.Length()
		if err != nil {
			return nil, genomics.NewFormatError("reading "+field, err)
		}
		header[i] = n
	}
	rows, cols, rowBytes, colBytes := header[0], header[1], header[2], header[3]

	rowNames, err := readNames(d, rowBytes, rows)
	if err != nil {
		return nil, genomics.NewFormatError("reading row names", err)
	}
	colNames, err := readNames(d, colBytes, cols)
	if err != nil {
		return nil, genomics.NewFormatError("reading column names", err)
	}

	if int64(rows)*int64(cols) > int64(d.Remaining()/8) {
		return nil, genomics.NewFormatError("reading values",
			fmt.Errorf("%dx%d values declared but only %d bytes remain", rows, cols, d.Remaining()))
	}
	values, err := d.Float64s(rows * cols)
	if err != nil {
		return nil, genomics.NewFormatError("reading values", err)
	}

	return &Matrix{
		RowNames: rowNames,
		ColNames: colNames,
		Values:   values,
	}, nil
}

func readNames(d *binary.Decoder, length, count int) ([]string, error) {
	block, err := d.Bytes(length)
	if err != nil {
		return nil, err
	}
	if count == 0 && length == 0 {
		return []string{}, nil
	}
	names := strings.Split(string(block), nameSeparator)
	if len(names) != count {
		return nil, fmt.Errorf("found %d names, header declares %d", len(names), count)
	}
	return names, nil
}

// Encode encodes m in the binary matrix format.  Names must not contain a
// space or a newline.
func Encode(m *Matrix) ([]byte, error) {
	rows, cols := m.Rows(), m.Cols()
	if len(m.Values) != rows*cols {
		return nil, fmt.Errorf("matrix has %d values, want %dx%d", len(m.Values), rows, cols)
	}
	rowBlock, err := joinNames(m.RowNames)
	if err != nil {
		return nil, fmt.Errorf("encoding row names: %v", err)
	}
	colBlock, err := joinNames(m.ColNames)
	if err != nil {
		return nil, fmt.Errorf("encoding column names: %v", err)
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(rowBlock) + len(colBlock) + 8*len(m.Values))
	header := [4]int32{int32(rows), int32(cols), int32(len(rowBlock)), int32(len(colBlock))}
	if err := binary.Write(&buf, header); err != nil {
		return nil, fmt.Errorf("writing header: %v", err)
	}
	buf.WriteString(rowBlock)
	buf.WriteString(colBlock)
	if err := binary.Write(&buf, m.Values); err != nil {
		return nil, fmt.Errorf("writing values: %v", err)
	}
	return buf.Bytes(), nil
}

func joinNames(names []string) (string, error) {
	if len(names) > math.MaxInt32 {
		return "", fmt.Errorf("too many names (%d)", len(names))
	}
	for _, name := range names {
		if strings.ContainsAny(name, " \n") {
			return "", fmt.Errorf("name %q contains a separator", name)
		}
	}
	block := strings.Join(names, nameSeparator)
	if len(block) > math.MaxInt32 {
		return "", errors.New("name block too long")
	}
	return block, nil
}
