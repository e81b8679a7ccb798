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
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/googlegenomics/genotet/internal/binary"
	"github.com/googlegenomics/genotet/internal/genomics"
)

const (
	nameSeparator = " "

	// Each edge record holds two int32 endpoints and a float64 weight.
	edgeSize = 16
)

// Decode decodes a network file.  Edge endpoints are not validated here; an
// endpoint outside the name sequence is reported when the edge is resolved.
func Decode(b []byte) (*Network, error) {
	d := binary.NewDecoder(b)

	nodeCount, err := d.Length()
	if err != nil {
		return nil, genomics.NewFormatError("reading node count", err)
	}
	tfCount, err := d.Length()
	if err != nil {
		return nil, genomics.NewFormatError("reading TF count", err)
	}
	nameBytes, err := d.Length()
	if err != nil {
		return nil, genomics.NewFormatError("reading name length", err)
	}
	block, err := d.Bytes(nameBytes)
	if err != nil {
		return nil, genomics.NewFormatError("reading node names", err)
	}
	names := []string{}
	if nodeCount > 0 || nameBytes > 0 {
		names = strings.Split(string(block), nameSeparator)
	}
	if len(names) != nodeCount {
		return nil, genomics.NewFormatError("reading node names",
			fmt.Errorf("found %d names, header declares %d", len(names), nodeCount))
	}

	edgeCount, err := d.Length()
	if err != nil {
		return nil, genomics.NewFormatError("reading edge count", err)
	}
	if edgeCount > d.Remaining()/edgeSize {
		return nil, genomics.NewFormatError("reading edges",
			fmt.Errorf("%d edges declared but only %d bytes remain", edgeCount, d.Remaining()))
	}
	edges := make([]Edge, edgeCount)
	for i := range edges {
		// The length check above guarantees these reads succeed.
		edges[i].Source, _ = d.Int32()
		edges[i].Target, _ = d.Int32()
		edges[i].Weight, _ = d.Float64()
	}

	return &Network{
		Names:   names,
		TFCount: tfCount,
		Edges:   edges,
	}, nil
}

// Encode encodes n in the binary network format.  Names must not contain a
// space or a newline.
func Encode(n *Network) ([]byte, error) {
	for _, name := range n.Names {
		if strings.ContainsAny(name, " \n") {
			return nil, fmt.Errorf("name %q contains a separator", name)
		}
	}
	block := strings.Join(n.Names, nameSeparator)
	if len(block) > math.MaxInt32 || len(n.Edges) > math.MaxInt32 || n.TFCount < 0 || n.TFCount > math.MaxInt32 {
		return nil, fmt.Errorf("network too large to encode")
	}

	var buf bytes.Buffer
	buf.Grow(16 + len(block) + edgeSize*len(n.Edges))
	header := [3]int32{int32(len(n.Names)), int32(n.TFCount), int32(len(block))}
	if err := binary.Write(&buf, header); err != nil {
		return nil, fmt.Errorf("writing header: %v", err)
	}
	buf.WriteString(block)
	if err := binary.Write(&buf, int32(len(n.Edges))); err != nil {
		return nil, fmt.Errorf("writing edge count: %v", err)
	}
	if err := binary.Write(&buf, n.Edges); err != nil {
		return nil, fmt.Errorf("writing edges: %v", err)
	}
	return buf.Bytes(), nil
}
