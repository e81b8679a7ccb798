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


package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googlegenomics/genotet/internal/expression"
	"github.com/googlegenomics/genotet/internal/network"
)

const (
	testMatrixText = `gene  SL1_Th17 SL2_Th0
Batf  1.5      -2
Rorc  3        4
`
	testNetworkText = `A C 0.5
A D 1
B C -2
`
)

func TestEncodeMatrix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeMatrix(strings.NewReader(testMatrixText), &buf))

	m, err := expression.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Batf", "Rorc"}, m.RowNames)
	assert.Equal(t, []string{"SL1_Th17", "SL2_Th0"}, m.ColNames)
	assert.Equal(t, []float64{1.5, -2, 3, 4}, m.Values)
	assert.Equal(t, -2.0, m.Min)
	assert.Equal(t, 4.0, m.Max)
}

func TestEncodeNetwork(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeNetwork(strings.NewReader(testNetworkText), &buf))

	n, err := network.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, n.Names)
	assert.Equal(t, 2, n.TFCount)
	assert.Len(t, n.Edges, 3)
}

func TestEncodeInvalidInput(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, encodeMatrix(strings.NewReader("gene a b\nBatf 1\n"), &buf))
	assert.Error(t, encodeNetwork(strings.NewReader("A C\n"), &buf))
}

// run executes the command line args and returns its standard output.
func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeText(t *testing.T, name, content string) string {
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func testDataDir(t *testing.T) string {
	dir := t.TempDir()
	for _, sub := range []string{"expression", "network", "mapping"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, sub), 0o755))
	}
	_, err := run(t, "encode-matrix", writeText(t, "exp.txt", testMatrixText), filepath.Join(dir, "expression", "exp.bin"))
	require.NoError(t, err)
	_, err = run(t, "encode-network", writeText(t, "net.txt", testNetworkText), filepath.Join(dir, "network", "net.bin"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mapping", "genes.data"), []byte("Batf batf.bed\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "network", "NetworkInfo"), []byte("net.bin\tTh17\tinferred\n"), 0o644))
	return dir
}

func TestQueryCommands(t *testing.T) {
	dir := testDataDir(t)
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"matrix", []string{"matrix", "exp.bin", "-g", "rorc"}, `{"values":[[3,4]],"valueMin":3,"valueMax":4,"allValueMin":-2,"allValueMax":4,"geneNames":["Rorc"],"conditionNames":["SL1_Th17","SL2_Th0"]}`},
		{"profile", []string{"profile", "exp.bin", "BATF"}, `{"name":"Batf","values":[1.5,-2],"tfaValues":[]}`},
		{"incident", []string{"incident", "net.bin", "d"}, `[{"id":"A,D","source":"A","target":"D","weight":1}]`},
		{"comb", []string{"comb", "net.bin", "^A$|^B$"}, `["C"]`},
		{"mappings", []string{"mapping"}, `["genes"]`},
		{"mapping", []string{"mapping", "genes"}, `{"batf":"batf.bed"}`},
		{"list networks", []string{"list", "networks"}, `[{"fileName":"net.bin","networkName":"Th17","description":"inferred"}]`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--data", dir}, tc.args...)...)
			require.NoError(t, err)
			var got, want interface{}
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			require.NoError(t, json.Unmarshal([]byte(tc.want), &want))
			assert.Equal(t, want, got)
		})
	}
}

func TestMappingLookupCommand(t *testing.T) {
	out, err := run(t, "--data", testDataDir(t), "mapping", "genes", "batf")
	require.NoError(t, err)
	assert.Equal(t, "batf.bed\n", out)
}

func TestQueryCommandErrors(t *testing.T) {
	dir := testDataDir(t)
	_, err := run(t, "--data", dir, "profile", "exp.bin", "Stat3")
	assert.Error(t, err)
	_, err = run(t, "--data", dir, "matrix", "missing.bin")
	assert.Error(t, err)
	_, err = run(t, "--data", dir, "list", "genes")
	assert.Error(t, err)
}
