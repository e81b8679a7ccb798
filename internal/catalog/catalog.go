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

// Package catalog parses the description files that list the matrices and
// networks available to the server.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	// MatrixFile is the description file of the expression directory.
	MatrixFile = "ExpmatInfo"
	// NetworkFile is the description file of the network directory.
	NetworkFile = "NetworkInfo"
)

const maximumLineLength = 64 * 1024 * 1024

// Entry describes one data file.
type Entry struct {
	FileName    string
	Name        string
	Description string
}

// Matrix is an entry of the expression description file as listed to
// clients.
type Matrix struct {
	FileName    string `json:"fileName"`
	MatrixName  string `json:"matrixName"`
	Description string `json:"description"`
}

// Network is an entry of the network description file as listed to clients.
type Network struct {
	FileName    string `json:"fileName"`
	NetworkName string `json:"networkName"`
	Description string `json:"description"`
}

// Matrices converts entries to matrix listings.
func Matrices(entries []Entry) []Matrix {
	matrices := make([]Matrix, len(entries))
	for i, e := range entries {
		matrices[i] = Matrix{e.FileName, e.Name, e.Description}
	}
	return matrices
}

// Networks converts entries to network listings.
func Networks(entries []Entry) []Network {
	networks := make([]Network, len(entries))
	for i, e := range entries {
		networks[i] = Network{e.FileName, e.Name, e.Description}
	}
	return networks
}

// Parse reads one tab separated (fileName, name, description) record per
// line.  Blank lines are skipped and missing trailing fields are left empty.
func Parse(r io.Reader) ([]Entry, error) {
	entries := []Entry{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maximumLineLength)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		entries = append(entries, Entry{FileName: parts[0], Name: parts[1], Description: parts[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading description file: %v", err)
	}
	return entries, nil
}
