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

package network

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maximumLineLength = 64 * 1024 * 1024

// ParseText reads a whitespace separated edge list with one
// "source target weight" record per line.  Every source becomes a
// transcription factor; TFs are numbered first, in order of appearance,
// followed by the remaining targets.  Blank lines are skipped.
func ParseText(r io.Reader) (*Network, error) {
	type record struct {
		source, target string
		weight         float64
	}
	var records []record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maximumLineLength)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: found %d fields, want 3", line, len(fields))
		}
		weight, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing weight: %v", line, err)
		}
		records = append(records, record{fields[0], fields[1], weight})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading network text: %v", err)
	}

	n := &Network{Names: []string{}, Edges: make([]Edge, 0, len(records))}
	index := make(map[string]int32)
	add := func(name string) {
		if _, ok := index[name]; !ok {
			index[name] = int32(len(n.Names))
			n.Names = append(n.Names, name)
		}
	}
	for _, r := range records {
		add(r.source)
	}
	n.TFCount = len(n.Names)
	for _, r := range records {
		add(r.target)
	}
	for _, r := range records {
		n.Edges = append(n.Edges, Edge{Source: index[r.source], Target: index[r.target], Weight: r.weight})
	}
	return n, nil
}
