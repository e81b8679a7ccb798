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
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maximumLineLength = 64 * 1024 * 1024

// ParseText reads a whitespace separated text matrix.  The first line holds
// a label followed by the condition names; every following line holds a gene
// name followed by one value per condition.  Blank lines are skipped.
func ParseText(r io.Reader) (*Matrix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maximumLineLength)

	m := &Matrix{RowNames: []string{}, ColNames: []string{}, Values: []float64{}}
	header := true
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if header {
			m.ColNames = append(m.ColNames, fields[1:]...)
			header = false
			continue
		}
		if got, want := len(fields)-1, m.Cols(); got != want {
			return nil, fmt.Errorf("line %d: found %d values, want %d", line, got, want)
		}
		for _, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parsing value: %v", line, err)
			}
			m.Values = append(m.Values, v)
		}
		m.RowNames = append(m.RowNames, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading matrix text: %v", err)
	}
	if header {
		return nil, errors.New("missing header line")
	}
	m.Min, m.Max = valueRange(m.Values)
	return m, nil
}
