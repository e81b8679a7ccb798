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


// This binary serves genotet expression, network and mapping data over HTTP
// and answers the same queries from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/googlegenomics/genotet/api"
	"github.com/googlegenomics/genotet/internal/config"
)

// app holds the state shared by all subcommands once the root command has
// run its persistent setup.
type app struct {
	verbose    bool
	configPath string
	dataDir    string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "genotet",
		Short: "Serve and query gene expression and regulatory network data",
		Long: `genotet reads expression matrices, regulatory networks and gene to
binding file mappings from a data directory or bucket.

Run "genotet serve" to start the query API, or use one of the query
commands to print a result as JSON.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVarP(&a.dataDir, "data", "d", "", "read data files from this directory instead of the configured storage")

	root.AddCommand(a.serveCommand())
	for _, cmd := range a.queryCommands() {
		root.AddCommand(cmd)
	}
	root.AddCommand(encodeMatrixCommand(), encodeNetworkCommand())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logConfig := zap.NewProductionConfig()
	if a.verbose {
		logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := logConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if a.dataDir != "" {
		cfg.Storage.Driver = config.DriverFile
		cfg.Storage.Directory = a.dataDir
	}
	a.cfg = cfg
	return nil
}

func (a *app) layout() api.Layout {
	return api.Layout{
		ExpressionPrefix: a.cfg.Storage.ExpressionPrefix,
		NetworkPrefix:    a.cfg.Storage.NetworkPrefix,
		MappingPrefix:    a.cfg.Storage.MappingPrefix,
	}
}

// newStorageClient returns the per-request client constructor used by the
// server.  In secure mode GCS reads use the bearer token of each request.
func (a *app) newStorageClient(ctx context.Context) (api.NewStorageClientFunc, error) {
	storage := a.cfg.Storage
	switch storage.Driver {
	case config.DriverFile:
		return api.StaticClient(api.FileClient{Root: storage.Directory}), nil
	case config.DriverGCS:
		if a.cfg.Secure {
			return api.NewClientFromBearerToken(storage.Bucket), nil
		}
		return api.NewPublicClient(storage.Bucket), nil
	case config.DriverS3:
		client, err := api.NewS3Client(ctx, api.S3Config{
			Bucket:    storage.Bucket,
			Region:    storage.Region,
			Endpoint:  storage.Endpoint,
			PathStyle: storage.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return api.StaticClient(client), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", storage.Driver)
}

// service returns a Service for command line queries.  GCS reads use the
// application default credentials.
func (a *app) service(ctx context.Context) (*api.Service, error) {
	var client api.Client
	if a.cfg.Storage.Driver == config.DriverGCS {
		c, err := api.NewDefaultClient(a.cfg.Storage.Bucket)(nil)
		if err != nil {
			return nil, err
		}
		client = c
	} else {
		newClient, err := a.newStorageClient(ctx)
		if err != nil {
			return nil, err
		}
		if client, err = newClient(nil); err != nil {
			return nil, err
		}
	}
	return api.NewService(client, a.layout(), a.cfg.MaxObjectBytes, a.logger), nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
