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


// Package api implements the genotet data query API: a storage backed
// Service answering expression, network and mapping queries, and a gin
// Server exposing it over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	queryPath  = "/genotet"
	healthPath = "/healthz"
)

var (
	errMissingQueryType = errors.New("no query type specified")
	errMissingParameter = errors.New("missing parameter")
)

// Options configures a Server.
type Options struct {
	Layout Layout

	// MaxObjectBytes bounds the size of a data file; zero or less disables
	// the limit.
	MaxObjectBytes int64

	// Timeout bounds each query; zero disables it.
	Timeout time.Duration

	Logger *zap.Logger
}

// Server provides the genotet query endpoint.  Must be created with
// NewServer.
type Server struct {
	newStorageClient NewStorageClientFunc
	options          Options
}

// NewServer returns a new Server that calls newStorageClient on each request
// to determine which storage client to read data files with.
func NewServer(newStorageClient NewStorageClientFunc, options Options) *Server {
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &Server{newStorageClient, options}
}

// Export registers the query and health endpoints with router.
func (server *Server) Export(router gin.IRouter) {
	router.GET(queryPath, forwardOrigin, server.serveQuery)
	router.GET(healthPath, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}

// queryHandler answers one query type using params against service.
type queryHandler func(ctx context.Context, service *Service, params func(string) string) (interface{}, error)

var queryHandlers = map[string]queryHandler{
	"expression": func(ctx context.Context, s *Service, params func(string) string) (interface{}, error) {
		file, err := required(params, "fileName")
		if err != nil {
			return nil, err
		}
		return s.Matrix(ctx, file, params("geneRegex"), params("condRegex"))
	},
	"expression-profile": func(ctx context.Context, s *Service, params func(string) string) (interface{}, error) {
		file, gene, err := required2(params, "fileName", "geneName")
		if err != nil {
			return nil, err
		}
		return s.Profile(ctx, file, params("tfaFileName"), gene)
	},
	"tfa-profile": func(ctx context.Context, s *Service, params func(string) string) (interface{}, error) {
		file, gene, err := required2(params, "tfaFileName", "geneName")
		if err != nil {
			return nil, err
		}
		return s.TFAProfile(ctx, file, gene)
	},
	"network": func(ctx context.Context, s *Service, params func(string) string) (interface{}, error) {
		file, err := required(params, "fileName")
		if err != nil {
			return nil, err
		}
		return s.Network(ctx, file, params("geneRegex"))
	},
	"incident-edges": func(ctx context.Context, s *Service, params func(string) string) (interface{}, error) {
		file, gene, err := required2(params, "fileName", "geneName")
		if err != nil {
			return nil, err
		}
		return s.IncidentEdges(ctx, file, gene)
	},
	"combined-regulation": func(ctx context.Context, s *Service, params func(string) string) (interface{}, error) {
		file, err := required(params, "fileName")
		if err != nil {
			return nil, err
		}
		return s.CombinedRegulators(ctx, file, params("geneRegex"))
	},
	"mapping": func(ctx context.Context, s *Service, params func(string) string) (interface{}, error) {
		name, err := required(params, "fileName")
		if err != nil {
			return nil, err
		}
		m, err := s.Mapping(ctx, name)
		if err != nil {
			return nil, err
		}
		gene := params("gene")
		if gene == "" {
			return m, nil
		}
		file, ok := m.Lookup(gene)
		if !ok {
			return nil, newNotFoundError("looking up binding file", fmt.Errorf("gene %q not in mapping %s", gene, name))
		}
		return gin.H{"gene": gene, "fileName": file}, nil
	},
	"list-mapping": func(ctx context.Context, s *Service, _ func(string) string) (interface{}, error) {
		return s.ListMappings(ctx)
	},
	"list-matrix": func(ctx context.Context, s *Service, _ func(string) string) (interface{}, error) {
		return s.ListMatrices(ctx)
	},
	"list-network": func(ctx context.Context, s *Service, _ func(string) string) (interface{}, error) {
		return s.ListNetworks(ctx)
	},
}

func (server *Server) serveQuery(c *gin.Context) {
	queryType := c.Query("type")
	if queryType == "" {
		writeError(c, newInvalidInputError("parsing query", errMissingQueryType))
		return
	}
	handle, ok := queryHandlers[queryType]
	if !ok {
		writeError(c, newInvalidInputError("parsing query", fmt.Errorf("unknown query type %q", queryType)))
		return
	}

	client, err := server.newStorageClient(c.Request)
	if err != nil {
		writeError(c, newStorageError("creating client", err))
		return
	}

	ctx := c.Request.Context()
	if server.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, server.options.Timeout)
		defer cancel()
	}

	service := NewService(client, server.options.Layout, server.options.MaxObjectBytes, server.options.Logger)
	result, err := handle(ctx, service, c.Query)
	if err != nil {
		server.options.Logger.Warn("query failed", zap.String("type", queryType), zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func required(params func(string) string, name string) (string, error) {
	if value := params(name); value != "" {
		return value, nil
	}
	return "", newInvalidInputError("parsing query", fmt.Errorf("%w %q", errMissingParameter, name))
}

func required2(params func(string) string, first, second string) (string, string, error) {
	a, err := required(params, first)
	if err != nil {
		return "", "", err
	}
	b, err := required(params, second)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}
