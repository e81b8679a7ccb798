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
	"regexp"

	"github.com/googlegenomics/genotet/internal/genomics"
)

// Selection is the sub-matrix selected by a gene pattern and a condition
// pattern.
type Selection struct {
	Values [][]float64 `json:"values"`

	// ValueMin and ValueMax cover the selected cells only; both are zero when
	// nothing is selected.
	ValueMin float64 `json:"valueMin"`
	ValueMax float64 `json:"valueMax"`

	// AllValueMin and AllValueMax are the global range of the source matrix.
	AllValueMin float64 `json:"allValueMin"`
	AllValueMax float64 `json:"allValueMax"`

	GeneNames      []string `json:"geneNames"`
	ConditionNames []string `json:"conditionNames"`
}

// Select returns the rows of m whose names match rowPattern and the columns
// whose names match colPattern, in the order they appear in m.  Patterns are
// case insensitive.  If either pattern does not compile, nothing is selected.
func Select(m *Matrix, rowPattern, colPattern string) *Selection {
	rowRE, rowErr := genomics.CompilePattern(rowPattern)
	colRE, colErr := genomics.CompilePattern(colPattern)
	if rowErr != nil || colErr != nil {
		rowRE, colRE = genomics.MatchNothing, genomics.MatchNothing
	}

	rows, geneNames := matching(m.RowNames, rowRE)
	cols, conditionNames := matching(m.ColNames, colRE)

	selection := &Selection{
		Values:         make([][]float64, len(rows)),
		AllValueMin:    m.Min,
		AllValueMax:    m.Max,
		GeneNames:      geneNames,
		ConditionNames: conditionNames,
	}
	width := m.Cols()
	cells := make([]float64, len(rows)*len(cols))
	for i, row := range rows {
		values := cells[i*len(cols) : (i+1)*len(cols) : (i+1)*len(cols)]
		base := row * width
		for j, col := range cols {
			values[j] = m.Values[base+col]
		}
		selection.Values[i] = values
	}
	selection.ValueMin, selection.ValueMax = valueRange(cells)
	return selection
}

func matching(names []string, re *regexp.Regexp) ([]int, []string) {
	indices, selected := []int{}, []string{}
	for i, name := range names {
		if re.MatchString(name) {
			indices = append(indices, i)
			selected = append(selected, name)
		}
	}
	return indices, selected
}
