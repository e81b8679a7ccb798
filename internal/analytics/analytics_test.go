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

package analytics

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Send_Counts(t *testing.T) {
	recorder := NewRecorder(prometheus.NewRegistry())

	var hits []Hit
	for i := int64(0); i < 10; i++ {
		hits = append(hits, Event("Network", "Network Request Received", "", nil))
	}
	value := int64(42)
	hits = append(hits, Event("Network", "Network Edge Count", "", &value))

	if err := recorder.Send(hits); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got, want := testutil.ToFloat64(recorder.events.WithLabelValues("Network", "Network Request Received")), 10.0; got != want {
		t.Errorf("Wrong event count: got %v, want %v", got, want)
	}
	if got, want := testutil.CollectAndCount(recorder.values), 1; got != want {
		t.Errorf("Wrong number of value series: got %d, want %d", got, want)
	}
}

func TestRecorder_Send_MalformedValue(t *testing.T) {
	recorder := NewRecorder(prometheus.NewRegistry())
	hit := Event("Expression", "Matrix Row Count", "", nil)
	hit["ev"] = "many"

	if err := recorder.Send([]Hit{hit}); err == nil {
		t.Fatal("Send accepted a malformed value")
	}
	if got, want := testutil.ToFloat64(recorder.events.WithLabelValues("Expression", "Matrix Row Count")), 1.0; got != want {
		t.Errorf("Wrong event count: got %v, want %v", got, want)
	}
}

func TestRecorder_Handler(t *testing.T) {
	recorder := NewRecorder(prometheus.NewRegistry())
	if err := recorder.Send([]Hit{Event("Mapping", "Mapping Request Received", "", nil)}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	w := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("Failed to read metrics: %v", err)
	}
	if !strings.Contains(string(body), `genotet_events_total{action="Mapping Request Received",category="Mapping"} 1`) {
		t.Errorf("Metrics output is missing the event counter:\n%s", body)
	}
}

func TestEvent_TypeParameter(t *testing.T) {
	if got, want := Event("tests", "test", "", nil)["t"], "event"; got != want {
		t.Errorf("Wrong hit type: got %q, want %q", got, want)
	}
}

func TestEvent_OptionalParameters(t *testing.T) {
	if _, ok := Event("tests", "test", "", nil)["el"]; ok {
		t.Error("Label parameter was added for empty label")
	}
	if _, ok := Event("tests", "test", "", nil)["ev"]; ok {
		t.Error("Value parameter was added for empty label")
	}
}

func TestEvent_Values(t *testing.T) {
	testcases := []struct {
		name  string
		value int64
		want  string
	}{
		{"zero", 0, "0"},
		{"maximum", math.MaxInt64, strconv.Itoa(math.MaxInt64)},
		{"minimum", math.MinInt64, strconv.Itoa(math.MinInt64)},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Event("tests", "test", "", &tc.value)["ev"]; got != tc.want {
				t.Fatalf("Wrong value: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTracking(t *testing.T) {
	gin.SetMode(gin.TestMode)
	want := []Hit{
		Event("tests", "test", "a", nil),
		Event("tests", "test", "b", nil),
	}

	var invoked bool
	tracker := func(got []Hit) {
		if len(got) != len(want) {
			t.Fatalf("Wrong number of hits: got %d, want %d", len(got), len(want))
		}
		for i := range want {
			if !reflect.DeepEqual(got[i], want[i]) {
				t.Errorf("Hit %d: got %v, want %v", i, got[i], want[i])
			}
		}
		invoked = true
	}

	router := gin.New()
	router.Use(Tracking(tracker))
	router.GET("/test", func(c *gin.Context) {
		track := TrackerFromContext(c.Request.Context())
		for i := range want {
			track(want[i])
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if !invoked {
		t.Error("tracker function was not invoked")
	}
}

func TestTrackerFromContext_WithEmptyContextIsNotNil(t *testing.T) {
	ctx := context.Background()
	if track := TrackerFromContext(ctx); track == nil {
		t.Error("TrackerFromContext returned nil")
	}
}
