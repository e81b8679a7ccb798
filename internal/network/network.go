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

// Package network provides support for regulatory networks: the binary
// network format and queries over nodes and edges.
package network

import "github.com/googlegenomics/genotet/internal/genomics"

// Network is a directed weighted graph of genes.  The first TFCount nodes are
// transcription factors.  Edge endpoints index into Names and are only
// checked when they are resolved.
type Network struct {
	Names   []string
	TFCount int
	Edges   []Edge
}

// Edge is a regulatory edge as stored in the network file.
type Edge struct {
	Source, Target int32
	Weight         float64
}

// Node is a named node.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	IsTF bool   `json:"isTF"`
}

// ResolvedEdge is an edge with its endpoints replaced by node names.  The ID
// is the source and target names joined by a comma.
type ResolvedEdge struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// IsTF reports whether node i is a transcription factor.
func (n *Network) IsTF(i int) bool {
	return i < n.TFCount
}

// Name returns the name of node i.
func (n *Network) Name(i int32) (string, error) {
	if i < 0 || int(i) >= len(n.Names) {
		return "", &genomics.IndexError{Index: int(i), Len: len(n.Names)}
	}
	return n.Names[i], nil
}

// Node returns node i.  It panics if i is out of range.
func (n *Network) Node(i int) Node {
	return Node{ID: n.Names[i], Name: n.Names[i], IsTF: n.IsTF(i)}
}

// Nodes returns every node in order.
func (n *Network) Nodes() []Node {
	nodes := make([]Node, len(n.Names))
	for i := range n.Names {
		nodes[i] = n.Node(i)
	}
	return nodes
}

// Resolve replaces the endpoints of e by node names.
func (n *Network) Resolve(e Edge) (ResolvedEdge, error) {
	source, err := n.Name(e.Source)
	if err != nil {
		return ResolvedEdge{}, err
	}
	target, err := n.Name(e.Target)
	if err != nil {
		return ResolvedEdge{}, err
	}
	return ResolvedEdge{
		ID:     source + "," + target,
		Source: source,
		Target: target,
		Weight: e.Weight,
	}, nil
}

// WeightRange returns the range of all edge weights, or zeros when there are
// no edges.
func (n *Network) WeightRange() (min, max float64) {
	if len(n.Edges) == 0 {
		return 0, 0
	}
	min, max = n.Edges[0].Weight, n.Edges[0].Weight
	for _, e := range n.Edges[1:] {
		if e.Weight < min {
			min = e.Weight
		}
		if e.Weight > max {
			max = e.Weight
		}
	}
	return min, max
}

// validate checks every edge endpoint against the name sequence.
func (n *Network) validate() error {
	for _, e := range n.Edges {
		if _, err := n.Resolve(e); err != nil {
			return err
		}
	}
	return nil
}
