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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Recorder provides observability lifecycle hooks for the HTTP adapter.
// Implementations typically combine metrics collection, distributed
// tracing, and access logging.
//
// Lifecycle:
//  1. ServeHTTP calls OnRequestStart(ctx, req) → (enrichedCtx, state).
//     The enriched context is always attached to the request; a nil
//     state excludes the request from the remaining hooks.
//  2. ServeHTTP wraps the ResponseWriter via WrapResponseWriter if
//     state != nil.
//  3. The engine resolves and writes the response.
//  4. ServeHTTP calls OnRequestEnd(ctx, state, w, req, pattern) if
//     state != nil. pattern is the matched endpoint's route template,
//     or a sentinel like "_no_match" — never the raw path, to keep
//     metric cardinality bounded. Implementations that emit an
//     access-log line build the request-scoped logger here via
//     BuildRequestLogger, now that the route template is known.
//
// All methods must be safe for concurrent use.
type Recorder interface {
	// OnRequestStart is called before resolution begins. It returns an
	// enriched context (e.g. carrying a trace span) and an opaque state
	// token, nil to exclude the request from the remaining hooks.
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)

	// WrapResponseWriter wraps the writer to capture response metadata.
	// The wrapped writer should implement ResponseInfo.
	WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter

	// BuildRequestLogger returns the request-scoped logger used for
	// this request's access-log line, enriched with the route template
	// and any tracing identifiers carried by the context.
	BuildRequestLogger(ctx context.Context, req *http.Request, pattern string) *slog.Logger

	// OnRequestEnd is called after the response has been written.
	OnRequestEnd(ctx context.Context, state any, w http.ResponseWriter, req *http.Request, pattern string)
}

// ResponseInfo is implemented by response writers that track response
// metadata, so OnRequestEnd can extract the status and size.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
}

// ResultAttributes returns OpenTelemetry attributes describing a
// dispatch result, using the route template (not the raw path) as the
// route label.
func ResultAttributes(method string, result *Result) []attribute.KeyValue {
	pattern := "_no_match"
	if result.Endpoint != nil {
		pattern = result.Endpoint.Pattern()
	}

	return []attribute.KeyValue{
		attribute.String("http.request.method", method),
		attribute.String("http.route", pattern),
		attribute.Int("http.response.status_code", result.Status),
		attribute.String("dispatch.failure", result.Failure.String()),
	}
}

// OTelRecorder is a Recorder backed by OpenTelemetry metrics and
// tracing plus slog access logging. It records a request counter and a
// duration histogram labeled by method, route template, and status, and
// wraps each request in a server span.
type OTelRecorder struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
	logger   *slog.Logger
}

// otelState is the per-request token threaded through the Recorder
// lifecycle.
type otelState struct {
	span  trace.Span
	start time.Time
}

// NewOTelRecorder builds a recorder on the given providers. The logger
// may be nil to disable access logging.
//
// Example:
//
//	recorder, err := dispatch.NewOTelRecorder(
//	    otel.GetMeterProvider(), otel.GetTracerProvider(), slog.Default(),
//	)
//	engine := dispatch.MustNew(tree, dispatch.WithRecorder(recorder))
func NewOTelRecorder(mp metric.MeterProvider, tp trace.TracerProvider, logger *slog.Logger) (*OTelRecorder, error) {
	meter := mp.Meter("github.com/codedmart/servant/dispatch")

	requests, err := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of dispatched HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}

	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	if logger == nil {
		logger = noopLogger
	}

	return &OTelRecorder{
		tracer:   tp.Tracer("github.com/codedmart/servant/dispatch"),
		requests: requests,
		duration: duration,
		logger:   logger,
	}, nil
}

// OnRequestStart starts a server span and the request timer.
func (r *OTelRecorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	ctx, span := r.tracer.Start(ctx, req.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("http.request.method", req.Method)),
	)

	return ctx, &otelState{span: span, start: time.Now()}
}

// WrapResponseWriter wraps the writer to capture status and size.
func (r *OTelRecorder) WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter {
	if state == nil {
		return w
	}

	return &responseWriter{ResponseWriter: w}
}

// BuildRequestLogger returns the access logger enriched with the route
// template and trace id.
func (r *OTelRecorder) BuildRequestLogger(ctx context.Context, req *http.Request, pattern string) *slog.Logger {
	logger := r.logger.With("method", req.Method, "route", pattern)
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		logger = logger.With("trace_id", sc.TraceID().String())
	}

	return logger
}

// OnRequestEnd records metrics, writes the access-log line through the
// request-scoped logger, and ends the span.
func (r *OTelRecorder) OnRequestEnd(ctx context.Context, state any, w http.ResponseWriter, req *http.Request, pattern string) {
	st, ok := state.(*otelState)
	if !ok {
		return
	}

	status := 0
	var size int64
	if info, ok := w.(ResponseInfo); ok {
		status = info.StatusCode()
		size = info.Size()
	}

	elapsed := time.Since(st.start)
	attrs := metric.WithAttributes(
		attribute.String("http.route", pattern),
		attribute.Int("http.response.status_code", status),
	)
	r.requests.Add(ctx, 1, attrs)
	r.duration.Record(ctx, elapsed.Seconds(), attrs)

	r.BuildRequestLogger(ctx, req, pattern).Info("request",
		"status", status,
		"bytes", size,
		"duration", elapsed,
	)

	st.span.SetAttributes(
		attribute.String("http.route", pattern),
		attribute.Int("http.response.status_code", status),
	)
	st.span.End()
}
