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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/googlegenomics/genotet/api"
	"github.com/googlegenomics/genotet/internal/analytics"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCommand() *cobra.Command {
	var (
		port        int
		profileMode string
		trackUsage  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			if cmd.Flags().Changed("track_usage") {
				a.cfg.TrackUsage = trackUsage
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			switch profileMode {
			case "":
			case "cpu":
				defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
			case "mem":
				defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
			default:
				return fmt.Errorf("unknown profile mode %q", profileMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP service port")
	cmd.Flags().StringVar(&profileMode, "profile", "", "write a cpu or mem profile to the working directory")
	cmd.Flags().BoolVar(&trackUsage, "track_usage", false, "record query metrics and serve them on /metrics")
	return cmd
}

func (a *app) router(newStorageClient api.NewStorageClientFunc) *gin.Engine {
	if !a.verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(a.logger))

	if a.cfg.TrackUsage {
		a.logger.Info("Enabling usage tracking")

		recorder := analytics.NewRecorder(prometheus.NewRegistry())
		router.Use(analytics.Tracking(func(hits []analytics.Hit) {
			if err := recorder.Send(hits); err != nil {
				a.logger.Warn("Failed to record hits", zap.Int("hits", len(hits)), zap.Error(err))
			}
		}))
		router.GET("/metrics", gin.WrapH(recorder.Handler()))
	}

	server := api.NewServer(newStorageClient, api.Options{
		Layout:         a.layout(),
		MaxObjectBytes: a.cfg.MaxObjectBytes,
		Timeout:        a.cfg.RequestTimeout,
		Logger:         a.logger,
	})
	server.Export(router)
	return router
}

func (a *app) serve(ctx context.Context) error {
	newStorageClient, err := a.newStorageClient(ctx)
	if err != nil {
		return fmt.Errorf("creating storage client: %w", err)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Port),
		Handler: a.router(newStorageClient),
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("Serving",
			zap.String("address", httpServer.Addr),
			zap.String("driver", a.cfg.Storage.Driver),
			zap.Bool("secure", a.cfg.Secure))
		if a.cfg.Secure {
			errc <- httpServer.ListenAndServeTLS(a.cfg.HTTPSCert, a.cfg.HTTPSKey)
		} else {
			errc <- httpServer.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server returned an error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
