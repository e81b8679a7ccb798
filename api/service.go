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
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/googlegenomics/genotet/internal/analytics"
	"github.com/googlegenomics/genotet/internal/catalog"
	"github.com/googlegenomics/genotet/internal/expression"
	"github.com/googlegenomics/genotet/internal/mapping"
	"github.com/googlegenomics/genotet/internal/network"
)

// Layout names the prefixes under which each kind of data file is stored.
type Layout struct {
	ExpressionPrefix string
	NetworkPrefix    string
	MappingPrefix    string
}

// Service answers queries against the data files reachable through a
// storage Client.  Every call reads and decodes its files afresh.
type Service struct {
	client         Client
	layout         Layout
	maxObjectBytes int64
	logger         *zap.Logger
}

// NewService returns a Service reading from client.  A maxObjectBytes of zero
// or less disables the object size limit.  A nil logger discards all output.
func NewService(client Client, layout Layout, maxObjectBytes int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client, layout, maxObjectBytes, logger}
}

// Matrix selects the rows and columns of the expression matrix file whose
// names match rowPattern and colPattern.
func (s *Service) Matrix(ctx context.Context, file, rowPattern, colPattern string) (*expression.Selection, error) {
	m, err := s.loadMatrix(ctx, file, expression.Decode)
	if err != nil {
		return nil, err
	}
	selection := expression.Select(m, rowPattern, colPattern)
	s.logger.Info("matrix query",
		zap.String("file", file),
		zap.String("geneRegex", rowPattern),
		zap.String("condRegex", colPattern),
		zap.Int("genes", len(selection.GeneNames)),
		zap.Int("conditions", len(selection.ConditionNames)))
	s.track(ctx, "Matrix", len(selection.GeneNames))
	return selection, nil
}

// Profile returns the expression row of gene in file, aligned with the gene's
// TFA row from fileTFA.  An empty fileTFA skips the TFA lookup.
func (s *Service) Profile(ctx context.Context, file, fileTFA, gene string) (*expression.GeneProfile, error) {
	var m, tfa *expression.Matrix
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m, err = s.loadMatrix(gctx, file, expression.Decode)
		return err
	})
	if fileTFA != "" {
		g.Go(func() (err error) {
			tfa, err = s.loadMatrix(gctx, fileTFA, expression.DecodeTFA)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile, err := expression.Profile(m, gene, tfa)
	if err != nil {
		return nil, fmt.Errorf("profiling %q in %s: %w", gene, file, err)
	}
	s.logger.Info("profile query",
		zap.String("file", file),
		zap.String("tfaFile", fileTFA),
		zap.String("gene", profile.Name),
		zap.Int("tfaValues", len(profile.TFAValues)))
	s.track(ctx, "Profile", len(profile.Values))
	return profile, nil
}

// TFAProfile returns the TFA row of gene in fileTFA.
func (s *Service) TFAProfile(ctx context.Context, fileTFA, gene string) (*expression.GeneProfile, error) {
	tfa, err := s.loadMatrix(ctx, fileTFA, expression.DecodeTFA)
	if err != nil {
		return nil, err
	}
	profile, err := expression.TFAProfile(tfa, gene)
	if err != nil {
		return nil, fmt.Errorf("profiling %q in %s: %w", gene, fileTFA, err)
	}
	s.logger.Info("tfa profile query", zap.String("file", fileTFA), zap.String("gene", profile.Name))
	s.track(ctx, "TFAProfile", len(profile.Values))
	return profile, nil
}

// Network selects the nodes of the network file whose names match pattern
// and the edges between them.
func (s *Service) Network(ctx context.Context, file, pattern string) (*network.Selection, error) {
	n, err := s.loadNetwork(ctx, file)
	if err != nil {
		return nil, err
	}
	selection, err := network.Select(n, pattern)
	if err != nil {
		return nil, fmt.Errorf("selecting from %s: %w", file, err)
	}
	s.logger.Info("network query",
		zap.String("file", file),
		zap.String("geneRegex", pattern),
		zap.Int("nodes", len(selection.Nodes)),
		zap.Int("edges", len(selection.Edges)))
	s.track(ctx, "Network", len(selection.Nodes))
	return selection, nil
}

// IncidentEdges returns the edges of the network file touching gene.
func (s *Service) IncidentEdges(ctx context.Context, file, gene string) ([]network.ResolvedEdge, error) {
	n, err := s.loadNetwork(ctx, file)
	if err != nil {
		return nil, err
	}
	edges, err := network.IncidentEdges(n, gene)
	if err != nil {
		return nil, fmt.Errorf("finding edges of %q in %s: %w", gene, file, err)
	}
	s.logger.Info("incident edges query",
		zap.String("file", file),
		zap.String("gene", gene),
		zap.Int("edges", len(edges)))
	s.track(ctx, "IncidentEdges", len(edges))
	return edges, nil
}

// CombinedRegulators returns the nodes of the network file regulated by every
// node matching tfPattern.
func (s *Service) CombinedRegulators(ctx context.Context, file, tfPattern string) ([]string, error) {
	n, err := s.loadNetwork(ctx, file)
	if err != nil {
		return nil, err
	}
	names, err := network.CombinedRegulators(n, tfPattern)
	if err != nil {
		return nil, fmt.Errorf("combining regulators in %s: %w", file, err)
	}
	s.logger.Info("combined regulation query",
		zap.String("file", file),
		zap.String("geneRegex", tfPattern),
		zap.Int("targets", len(names)))
	s.track(ctx, "CombinedRegulators", len(names))
	return names, nil
}

// Mapping loads the gene to binding file mapping identified by name.
func (s *Service) Mapping(ctx context.Context, name string) (mapping.Mapping, error) {
	b, err := s.readObject(ctx, s.layout.MappingPrefix, name+mapping.Suffix)
	if err != nil {
		return nil, err
	}
	m, err := mapping.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parsing mapping %s: %w", name, err)
	}
	s.logger.Info("mapping query", zap.String("mapping", name), zap.Int("genes", len(m)))
	s.track(ctx, "Mapping", len(m))
	return m, nil
}

// ListMappings returns the identifiers of the stored mapping files.
func (s *Service) ListMappings(ctx context.Context) ([]string, error) {
	names, err := s.client.List(ctx, s.layout.MappingPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	ids := mapping.Identifiers(names)
	s.track(ctx, "ListMappings", len(ids))
	return ids, nil
}

// ListMatrices returns the entries of the expression description file.
func (s *Service) ListMatrices(ctx context.Context) ([]catalog.Matrix, error) {
	entries, err := s.listCatalog(ctx, s.layout.ExpressionPrefix, catalog.MatrixFile)
	if err != nil {
		return nil, err
	}
	return catalog.Matrices(entries), nil
}

// ListNetworks returns the entries of the network description file.
func (s *Service) ListNetworks(ctx context.Context) ([]catalog.Network, error) {
	entries, err := s.listCatalog(ctx, s.layout.NetworkPrefix, catalog.NetworkFile)
	if err != nil {
		return nil, err
	}
	return catalog.Networks(entries), nil
}

func (s *Service) listCatalog(ctx context.Context, prefix, file string) ([]catalog.Entry, error) {
	b, err := s.readObject(ctx, prefix, file)
	if err != nil {
		return nil, err
	}
	entries, err := catalog.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	s.track(ctx, "List"+file, len(entries))
	return entries, nil
}

func (s *Service) loadMatrix(ctx context.Context, file string, decode func([]byte) (*expression.Matrix, error)) (*expression.Matrix, error) {
	b, err := s.readObject(ctx, s.layout.ExpressionPrefix, file)
	if err != nil {
		return nil, err
	}
	m, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("decoding matrix %s: %w", file, err)
	}
	return m, nil
}

func (s *Service) loadNetwork(ctx context.Context, file string) (*network.Network, error) {
	b, err := s.readObject(ctx, s.layout.NetworkPrefix, file)
	if err != nil {
		return nil, err
	}
	n, err := network.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("decoding network %s: %w", file, err)
	}
	return n, nil
}

// readObject reads the whole object prefix+name, failing with
// ErrObjectTooLarge once more than maxObjectBytes bytes are available.
func (s *Service) readObject(ctx context.Context, prefix, name string) ([]byte, error) {
	if err := checkObjectName(name); err != nil {
		return nil, err
	}
	object := prefix + name

	length := int64(-1)
	if s.maxObjectBytes > 0 {
		length = s.maxObjectBytes + 1
	}
	r, err := s.client.NewObjectHandle(object).NewRangeReader(ctx, 0, length)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", object, err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", object, err)
	}
	if s.maxObjectBytes > 0 && int64(len(b)) > s.maxObjectBytes {
		return nil, fmt.Errorf("reading %s: %w (limit %d bytes)", object, ErrObjectTooLarge, s.maxObjectBytes)
	}
	s.logger.Debug("read object", zap.String("object", object), zap.Int("bytes", len(b)))
	return b, nil
}

// checkObjectName rejects names that are empty or that would address an
// object outside their prefix.
func checkObjectName(name string) error {
	if name == "" || name == mapping.Suffix {
		return fmt.Errorf("%w: empty", ErrInvalidObjectName)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidObjectName, name)
		}
	}
	if strings.ContainsAny(name, "\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidObjectName, name)
	}
	return nil
}

func (s *Service) track(ctx context.Context, action string, count int) {
	track := analytics.TrackerFromContext(ctx)
	n := int64(count)
	track(analytics.Event("Query", action, "", &n))
}
