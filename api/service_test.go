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


package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googlegenomics/genotet/internal/catalog"
	"github.com/googlegenomics/genotet/internal/expression"
	"github.com/googlegenomics/genotet/internal/genomics"
	"github.com/googlegenomics/genotet/internal/mapping"
	"github.com/googlegenomics/genotet/internal/network"
)

var testLayout = Layout{
	ExpressionPrefix: "expression/",
	NetworkPrefix:    "network/",
	MappingPrefix:    "mapping/",
}

// memClient is a Client backed by a map from object name to content.
type memClient map[string][]byte

func (c memClient) NewObjectHandle(object string) ObjectHandle {
	return memObjectHandle{c, object}
}

func (c memClient) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	for name := range c {
		if strings.HasPrefix(name, prefix) && !strings.Contains(name[len(prefix):], "/") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type memObjectHandle struct {
	client memClient
	name   string
}

func (h memObjectHandle) NewRangeReader(_ context.Context, offset, length int64) (io.ReadCloser, error) {
	content, ok := h.client[h.name]
	if !ok {
		return nil, fmt.Errorf("opening %s: %w", h.name, ErrObjectNotExist)
	}
	if offset > int64(len(content)) {
		offset = int64(len(content))
	}
	content = content[offset:]
	if length >= 0 && length < int64(len(content)) {
		content = content[:length]
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func encodeMatrix(t *testing.T, m *expression.Matrix) []byte {
	t.Helper()
	b, err := expression.Encode(m)
	require.NoError(t, err)
	return b
}

func encodeNetwork(t *testing.T, n *network.Network) []byte {
	t.Helper()
	b, err := network.Encode(n)
	require.NoError(t, err)
	return b
}

// testData returns a store holding one expression matrix, one TFA matrix, one
// network, one mapping and the description files.
func testData(t *testing.T) memClient {
	return memClient{
		"expression/exp.bin": encodeMatrix(t, &expression.Matrix{
			RowNames: []string{"Batf", "Rorc"},
			ColNames: []string{"SL1_Th17", "SL2_Th0"},
			Values:   []float64{1, 2, 3, 4},
		}),
		"expression/tfa.bin": encodeMatrix(t, &expression.Matrix{
			RowNames: []string{"batf"},
			ColNames: []string{"SL2_Th0", "SL9_Th17"},
			Values:   []float64{0.5, -0.5},
		}),
		"expression/broken.bin": {1, 0, 0},
		"expression/ExpmatInfo": []byte("exp.bin\tTh17 expression\tRNA-seq\ntfa.bin\tTFA\n"),
		"network/net.bin": encodeNetwork(t, &network.Network{
			Names:   []string{"A", "B", "C", "D"},
			TFCount: 2,
			Edges: []network.Edge{
				{Source: 0, Target: 2, Weight: 0.5},
				{Source: 0, Target: 3, Weight: 1},
				{Source: 1, Target: 2, Weight: -2},
			},
		}),
		"network/NetworkInfo": []byte("net.bin\tTh17 network\tinferred\n"),
		"mapping/genes.data":  []byte("Batf\tbatf.bed\nRorc rorc.bed\n"),
		"mapping/README":      []byte("not a mapping"),
	}
}

func testService(t *testing.T) *Service {
	return NewService(testData(t), testLayout, 0, nil)
}

func TestServiceMatrix(t *testing.T) {
	got, err := testService(t).Matrix(context.Background(), "exp.bin", "^batf$", "")
	require.NoError(t, err)

	want := &expression.Selection{
		Values:         [][]float64{{1, 2}},
		ValueMin:       1,
		ValueMax:       2,
		AllValueMin:    1,
		AllValueMax:    4,
		GeneNames:      []string{"Batf"},
		ConditionNames: []string{"SL1_Th17", "SL2_Th0"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Matrix() mismatch (-want +got):\n%s", diff)
	}
}

func TestServiceProfile(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	got, err := s.Profile(ctx, "exp.bin", "tfa.bin", "BATF")
	require.NoError(t, err)
	want := &expression.GeneProfile{
		Name:   "Batf",
		Values: []float64{1, 2},
		TFAValues: []expression.TFAValue{
			{Value: 0.5, Index: 1},
			{Value: -0.5, Index: expression.UnalignedIndex},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Profile() mismatch (-want +got):\n%s", diff)
	}

	got, err = s.Profile(ctx, "exp.bin", "", "rorc")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, got.Values)
	assert.Empty(t, got.TFAValues)

	_, err = s.Profile(ctx, "exp.bin", "missing.bin", "rorc")
	assert.ErrorIs(t, err, ErrObjectNotExist)

	_, err = s.Profile(ctx, "exp.bin", "tfa.bin", "Stat3")
	var notFound *genomics.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestServiceTFAProfile(t *testing.T) {
	got, err := testService(t).TFAProfile(context.Background(), "tfa.bin", "Batf")
	require.NoError(t, err)
	assert.Equal(t, "batf", got.Name)
	assert.Equal(t, []float64{0.5, -0.5}, got.Values)
}

func TestServiceNetworkQueries(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	selection, err := s.Network(ctx, "net.bin", "^a$|^c$")
	require.NoError(t, err)
	assert.Equal(t, []network.Node{
		{ID: "A", Name: "A", IsTF: true},
		{ID: "C", Name: "C", IsTF: false},
	}, selection.Nodes)
	assert.Equal(t, []network.ResolvedEdge{{ID: "A,C", Source: "A", Target: "C", Weight: 0.5}}, selection.Edges)
	assert.Equal(t, -2.0, selection.WeightMin)
	assert.Equal(t, 1.0, selection.WeightMax)

	edges, err := s.IncidentEdges(ctx, "net.bin", "c")
	require.NoError(t, err)
	var ids []string
	for _, edge := range edges {
		ids = append(ids, edge.ID)
	}
	assert.Equal(t, []string{"A,C", "B,C"}, ids)

	targets, err := s.CombinedRegulators(ctx, "net.bin", "^A$|^B$")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, targets)

	_, err = s.CombinedRegulators(ctx, "net.bin", "(")
	var invalid *genomics.InvalidPatternError
	assert.ErrorAs(t, err, &invalid)
}

func TestServiceMappings(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	m, err := s.Mapping(ctx, "genes")
	require.NoError(t, err)
	assert.Equal(t, mapping.Mapping{"batf": "batf.bed", "rorc": "rorc.bed"}, m)

	ids, err := s.ListMappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"genes"}, ids)
}

func TestServiceCatalogs(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	matrices, err := s.ListMatrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Matrix{
		{FileName: "exp.bin", MatrixName: "Th17 expression", Description: "RNA-seq"},
		{FileName: "tfa.bin", MatrixName: "TFA"},
	}, matrices)

	networks, err := s.ListNetworks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Network{{FileName: "net.bin", NetworkName: "Th17 network", Description: "inferred"}}, networks)
}

func TestServiceErrors(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	small := NewService(testData(t), testLayout, 8, nil)

	testCases := []struct {
		name  string
		query func() error
		check func(t *testing.T, err error)
	}{
		{
			"missing file",
			func() error { _, err := s.Matrix(ctx, "nope.bin", "", ""); return err },
			func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrObjectNotExist) },
		},
		{
			"corrupt file",
			func() error { _, err := s.Matrix(ctx, "broken.bin", "", ""); return err },
			func(t *testing.T, err error) {
				var formatErr *genomics.FormatError
				assert.ErrorAs(t, err, &formatErr)
			},
		},
		{
			"escaping file name",
			func() error { _, err := s.Network(ctx, "../expression/exp.bin", ""); return err },
			func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidObjectName) },
		},
		{
			"empty mapping name",
			func() error { _, err := s.Mapping(ctx, ""); return err },
			func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidObjectName) },
		},
		{
			"object too large",
			func() error { _, err := small.Network(ctx, "net.bin", ""); return err },
			func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrObjectTooLarge) },
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.query()
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestCheckObjectName(t *testing.T) {
	testCases := []struct {
		name string
		ok   bool
	}{
		{"exp.bin", true},
		{"th17/exp.bin", true},
		{"", false},
		{"..", false},
		{"a/../../b", false},
		{"/etc/passwd", false},
		{"a//b", false},
		{`a\b`, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkObjectName(tc.name)
			if got, want := err == nil, tc.ok; got != want {
				t.Errorf("checkObjectName(%q) = %v, want ok %v", tc.name, err, want)
			}
			if err != nil && !errors.Is(err, ErrInvalidObjectName) {
				t.Errorf("checkObjectName(%q) = %v, want ErrInvalidObjectName", tc.name, err)
			}
		})
	}
}
