// Copyright 2026 The Servant Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace/noop"
)

// collectMetrics reads all metrics recorded so far.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

// findMetric locates a metric by name across scopes.
func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}

	return metricdata.Metrics{}, false
}

func TestOTelRecorderRecordsRequests(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder, err := NewOTelRecorder(mp, noop.NewTracerProvider(), nil)
	require.NoError(t, err)

	ep := NewEndpoint(http.MethodPost, "home/{t:int}", okHandler(nil, "ok"),
		WithInput(func() any { return new(testBody) }),
	)
	engine := MustNew(OneOf(ep), WithRecorder(recorder))

	req := httptest.NewRequest(http.MethodPost, "/home/5", strings.NewReader(`{"amount": 4}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(httptest.NewRecorder(), req)

	rm := collectMetrics(t, reader)

	counter, ok := findMetric(rm, "http.server.request.count")
	require.True(t, ok, "request counter must be registered")
	sum, ok := counter.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)

	route, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("http.route"))
	require.True(t, ok)
	assert.Equal(t, "/home/{t:int}", route.AsString(), "metrics are labeled by template, not raw path")

	status, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("http.response.status_code"))
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusCreated), status.AsInt64())

	histogram, ok := findMetric(rm, "http.server.request.duration")
	require.True(t, ok, "duration histogram must be registered")
	hist, ok := histogram.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestOTelRecorderUnmatchedRequest(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder, err := NewOTelRecorder(mp, noop.NewTracerProvider(), nil)
	require.NoError(t, err)

	engine := MustNew(OneOf(), WithRecorder(recorder))
	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rm := collectMetrics(t, reader)
	counter, ok := findMetric(rm, "http.server.request.count")
	require.True(t, ok)
	sum, ok := counter.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	route, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("http.route"))
	require.True(t, ok)
	assert.Equal(t, "_no_match", route.AsString(), "unmatched requests share one low-cardinality label")
}

func TestResultAttributes(t *testing.T) {
	t.Parallel()

	t.Run("matched", func(t *testing.T) {
		t.Parallel()

		ep := NewEndpoint(http.MethodGet, "items/{id}", okHandler(nil, "ok"))
		attrs := ResultAttributes(http.MethodGet, &Result{Endpoint: ep, Status: http.StatusOK})

		set := attribute.NewSet(attrs...)
		route, _ := set.Value("http.route")
		assert.Equal(t, "/items/{id}", route.AsString())
		failure, _ := set.Value("dispatch.failure")
		assert.Equal(t, "none", failure.AsString())
	})

	t.Run("unmatched", func(t *testing.T) {
		t.Parallel()

		attrs := ResultAttributes(http.MethodGet, &Result{
			Failure: KindMethodNotAllowed,
			Status:  http.StatusMethodNotAllowed,
		})

		set := attribute.NewSet(attrs...)
		route, _ := set.Value("http.route")
		assert.Equal(t, "_no_match", route.AsString())
		failure, _ := set.Value("dispatch.failure")
		assert.Equal(t, "method_not_allowed", failure.AsString())
	})
}

func TestOTelRecorderBuildRequestLogger(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder, err := NewOTelRecorder(mp, noop.NewTracerProvider(), nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/items/7", nil)
	logger := recorder.BuildRequestLogger(context.Background(), req, "/items/{id}")
	assert.NotNil(t, logger)
}

// TestOTelRecorderAccessLog checks that the access-log line is written
// through the request-scoped logger, so it carries the method and route
// template attributes.
func TestOTelRecorderAccessLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder, err := NewOTelRecorder(mp, noop.NewTracerProvider(), logger)
	require.NoError(t, err)

	ep := NewEndpoint(http.MethodPost, "home/{t:int}", okHandler(nil, "ok"),
		WithInput(func() any { return new(testBody) }),
	)
	engine := MustNew(OneOf(ep), WithRecorder(recorder))

	req := httptest.NewRequest(http.MethodPost, "/home/5", strings.NewReader(`{"amount": 4}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.Contains(t, line, "method=POST")
	assert.Contains(t, line, "route=/home/{t:int}")
	assert.Contains(t, line, "status=201")
}
