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
	"sort"

	"github.com/googlegenomics/genotet/internal/genomics"
)

// UnalignedIndex is the column index reported for a TFA value whose
// condition does not exist in the expression matrix.
const UnalignedIndex = -1

// TFAValue is a single TFA value together with the index of the expression
// matrix column it belongs to.
type TFAValue struct {
	Value float64 `json:"value"`
	Index int     `json:"index"`
}

// GeneProfile is the full row of one gene.
type GeneProfile struct {
	Name      string     `json:"name"`
	Values    []float64  `json:"values"`
	TFAValues []TFAValue `json:"tfaValues"`
}

// Profile returns the expression row of gene in m.  The gene is matched
// ignoring case and the profile carries the name as stored in m.
//
// If tfa is not nil, the TFA row of the same gene is attached with every
// value aligned to the expression column of the same condition name.  Values
// whose condition is missing from m are kept with UnalignedIndex and sort
// after all aligned values.  A gene without a TFA row gets no TFA values.
func Profile(m *Matrix, gene string, tfa *Matrix) (*GeneProfile, error) {
	i, ok := m.Lookup(gene)
	if !ok {
		return nil, &genomics.NotFoundError{Kind: "gene", Name: gene}
	}
	profile := &GeneProfile{
		Name:      m.RowNames[i],
		Values:    m.Row(i),
		TFAValues: []TFAValue{},
	}
	if tfa == nil {
		return profile, nil
	}

	t, ok := tfaRow(tfa, profile.Name)
	if !ok {
		return profile, nil
	}

	columns := make(map[string]int, m.Cols())
	for j := len(m.ColNames) - 1; j >= 0; j-- {
		columns[m.ColNames[j]] = j
	}
	for j, name := range tfa.ColNames {
		index, ok := columns[name]
		if !ok {
			index = UnalignedIndex
		}
		profile.TFAValues = append(profile.TFAValues, TFAValue{Value: tfa.At(t, j), Index: index})
	}
	sort.SliceStable(profile.TFAValues, func(a, b int) bool {
		x, y := profile.TFAValues[a].Index, profile.TFAValues[b].Index
		if x == UnalignedIndex || y == UnalignedIndex {
			return y == UnalignedIndex && x != UnalignedIndex
		}
		return x < y
	})
	return profile, nil
}

// tfaRow prefers an exact match on the canonical gene name and falls back to
// a case insensitive match.
func tfaRow(tfa *Matrix, name string) (int, bool) {
	for i, row := range tfa.RowNames {
		if row == name {
			return i, true
		}
	}
	return tfa.Lookup(name)
}

// TFAProfile returns the TFA row of gene in tfa, matched ignoring case.
func TFAProfile(tfa *Matrix, gene string) (*GeneProfile, error) {
	i, ok := tfa.Lookup(gene)
	if !ok {
		return nil, &genomics.NotFoundError{Kind: "gene", Name: gene}
	}
	return &GeneProfile{
		Name:      tfa.RowNames[i],
		Values:    tfa.Row(i),
		TFAValues: []TFAValue{},
	}, nil
}
