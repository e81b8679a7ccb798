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
	"strings"

	"github.com/googlegenomics/genotet/internal/genomics"
)

// Selection is the sub-network induced by the nodes matching a pattern.
type Selection struct {
	Nodes []Node         `json:"nodes"`
	Edges []ResolvedEdge `json:"edges"`

	// WeightMin and WeightMax cover every edge of the source network.
	WeightMin float64 `json:"weightMin"`
	WeightMax float64 `json:"weightMax"`
}

// Select returns the nodes whose names match pattern (ignoring case) and the
// edges between them, in source order.  A pattern that does not compile
// selects nothing.  Any edge whose endpoint falls outside Names fails the
// query with an IndexError, even when neither endpoint would be selected.
func Select(n *Network, pattern string) (*Selection, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}
	re := genomics.FilterPattern(pattern)

	keep := make([]bool, len(n.Names))
	selection := &Selection{Nodes: []Node{}, Edges: []ResolvedEdge{}}
	for i, name := range n.Names {
		if re.MatchString(name) {
			keep[i] = true
			selection.Nodes = append(selection.Nodes, n.Node(i))
		}
	}
	for _, e := range n.Edges {
		if keep[e.Source] && keep[e.Target] {
			edge, err := n.Resolve(e)
			if err != nil {
				return nil, err
			}
			selection.Edges = append(selection.Edges, edge)
		}
	}
	selection.WeightMin, selection.WeightMax = n.WeightRange()
	return selection, nil
}

// IncidentEdges returns every edge with gene as its source or target,
// comparing names without regard to case.
func IncidentEdges(n *Network, gene string) ([]ResolvedEdge, error) {
	edges := []ResolvedEdge{}
	for _, e := range n.Edges {
		edge, err := n.Resolve(e)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(edge.Source, gene) || strings.EqualFold(edge.Target, gene) {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

// CombinedRegulators returns the names of the nodes regulated by every node
// whose name matches tfPattern, in node order and without duplicate names.
// When no node matches, every node qualifies.  Unlike Select, a pattern that
// does not compile is an error, since an empty result would otherwise be
// ambiguous.
func CombinedRegulators(n *Network, tfPattern string) ([]string, error) {
	re, err := genomics.CompilePattern(tfPattern)
	if err != nil {
		return nil, err
	}
	if err := n.validate(); err != nil {
		return nil, err
	}

	regulators := 0
	isRegulator := make([]bool, len(n.Names))
	for i, name := range n.Names {
		if re.MatchString(name) {
			isRegulator[i] = true
			regulators++
		}
	}

	// Count distinct regulators per target; duplicate edges count once.
	seen := make(map[Edge]bool)
	counts := make([]int, len(n.Names))
	for _, e := range n.Edges {
		if !isRegulator[e.Source] {
			continue
		}
		key := Edge{Source: e.Source, Target: e.Target}
		if seen[key] {
			continue
		}
		seen[key] = true
		counts[e.Target]++
	}

	names := []string{}
	added := make(map[string]bool)
	for i, name := range n.Names {
		if counts[i] == regulators && !added[name] {
			added[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}
