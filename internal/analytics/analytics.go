// Copyright 2017 Google Inc.
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

// Package analytics records usage events for queries handled by the server
// and exports them as Prometheus metrics.
package analytics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "genotet"

// Hit represents a single analytics event (called a 'hit').
type Hit map[string]string

// Event generates a new event typed hit.  The label may be empty and the
// value may be nil but category and action are required.
func Event(category, action, label string, value *int64) Hit {
	hit := Hit{
		"t":  "event",
		"ec": category,
		"ea": action,
	}
	if label != "" {
		hit["el"] = label
	}
	if value != nil {
		hit["ev"] = strconv.FormatInt(*value, 10)
	}
	return hit
}

// Recorder turns hits into Prometheus metrics.  To create a properly
// initialized Recorder instance, use NewRecorder.
type Recorder struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	values   *prometheus.HistogramVec
}

// NewRecorder returns a Recorder that registers its metrics with registry.
func NewRecorder(registry *prometheus.Registry) *Recorder {
	recorder := &Recorder{
		registry: registry,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Number of analytics events by category and action.",
		}, []string{"category", "action"}),
		values: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_value",
			Help:      "Values attached to analytics events.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"category", "action"}),
	}
	registry.MustRegister(recorder.events, recorder.values)
	return recorder
}

// Send records the provided hits.  Hits carrying a malformed value are still
// counted; the first parse failure is returned.
func (r *Recorder) Send(hits []Hit) error {
	var firstErr error
	for _, hit := range hits {
		category, action := hit["ec"], hit["ea"]
		r.events.WithLabelValues(category, action).Inc()
		if value, ok := hit["ev"]; ok {
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("parsing value of %s/%s: %v", category, action, err)
				}
				continue
			}
			r.values.WithLabelValues(category, action).Observe(float64(n))
		}
	}
	return firstErr
}

// Handler returns an http.Handler that serves the recorded metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

type contextKey int

var (
	hitsKey = contextKey(1)
)

// Tracking returns gin middleware that prepares the incoming request's
// context for use with the TrackerFromContext function.  When the remaining
// handlers complete, the track function is invoked with any hits accumulated
// during the request.
func Tracking(track func([]Hit)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var hits []Hit
		ctx := context.WithValue(c.Request.Context(), hitsKey, &hits)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		track(hits)
	}
}

// TrackerFromContext is intended to be used with contexts that are generated
// by the Tracking middleware.  It returns a function that buffers hits to be
// delivered to the track function provided in the original call to Tracking.
// Outside of such a context the returned function discards hits.
func TrackerFromContext(ctx context.Context) func(Hit) {
	if hits, ok := ctx.Value(hitsKey).(*[]Hit); ok {
		return func(hit Hit) { *hits = append(*hits, hit) }
	}
	return func(Hit) {}
}
