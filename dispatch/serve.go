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
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/codedmart/servant/problem"
)

// ErrResponseWriterNotHijacker indicates that the underlying
// ResponseWriter does not implement http.Hijacker.
var ErrResponseWriterNotHijacker = errors.New("responseWriter does not implement http.Hijacker")

// responseWriter wraps http.ResponseWriter to capture status and size.
// It also prevents superfluous WriteHeader calls.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
	written    bool
}

// WriteHeader captures the status code and prevents duplicate calls.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

// Write captures the response size and marks the response as written.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
	}
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)

	return n, err
}

// StatusCode returns the HTTP status code.
func (rw *responseWriter) StatusCode() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}

	return rw.statusCode
}

// Size returns the response size in bytes.
func (rw *responseWriter) Size() int64 { return rw.size }

// Compile-time check that responseWriter implements ResponseInfo.
var _ ResponseInfo = (*responseWriter)(nil)

// Hijack implements http.Hijacker.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}

	return nil, nil, ErrResponseWriterNotHijacker
}

// Flush implements http.Flusher.
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// ServeHTTP implements http.Handler for Engine. It adapts the raw
// transport request into the engine's parsed form, resolves it, and
// writes exactly one response:
//
//   - a matched handler's success value, encoded with the negotiated
//     response codec under the endpoint's success status;
//   - a matched handler's own error outcome, status and payload passed
//     through unmodified;
//   - or the single furthest-progress dispatch failure as an RFC 9457
//     problem response.
func (e *Engine) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var obsState any

	if e.recorder != nil {
		enrichedCtx, state := e.recorder.OnRequestStart(ctx, req)
		if enrichedCtx != ctx {
			ctx = enrichedCtx
			req = req.WithContext(ctx)
		}
		obsState = state
		if obsState != nil {
			w = e.recorder.WrapResponseWriter(w, obsState)
		}
	}

	pattern := e.dispatch(ctx, w, req)

	if obsState != nil {
		e.recorder.OnRequestEnd(ctx, obsState, w, req, pattern)
	}
}

// dispatch resolves and writes one request, returning the route
// template used for observability labels.
func (e *Engine) dispatch(ctx context.Context, w http.ResponseWriter, req *http.Request) string {
	result, err := e.Resolve(ctx, FromHTTP(req))
	if err != nil {
		e.logger.Error("dispatch internal error",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
		problem.FromStatus(http.StatusInternalServerError, req.URL.Path).Write(w)

		return "_internal_error"
	}

	if !result.Matched() {
		problem.FromStatus(result.Status, req.URL.Path).Write(w)

		return "_no_match"
	}

	e.writeResult(w, req, result)

	return result.Endpoint.Pattern()
}

// writeResult renders a matched result: the handler's outcome is final,
// whether success or its own error value.
func (e *Engine) writeResult(w http.ResponseWriter, req *http.Request, result *Result) {
	if herr := result.HandlerErr; herr != nil {
		// A handler error with a payload is encoded like a success
		// value, under the handler's status.
		var perr *problem.Error
		if errors.As(herr, &perr) && perr.Payload != nil {
			e.writeEncoded(w, req, result, perr.Payload)

			return
		}

		detail := problem.FromStatus(result.Status, req.URL.Path)
		detail.Detail = herr.Error()
		detail.Write(w)

		return
	}

	e.writeEncoded(w, req, result, result.Value)
}

// writeEncoded serializes v with the negotiated response codec.
func (e *Engine) writeEncoded(w http.ResponseWriter, req *http.Request, result *Result, v any) {
	data, err := result.Encoder.Marshal(v)
	if err != nil {
		e.logger.Error("response encoding failed",
			"endpoint", result.Endpoint.Pattern(),
			"content_type", result.Encoder.ContentType(),
			"error", err,
		)
		problem.FromStatus(http.StatusInternalServerError, req.URL.Path).Write(w)

		return
	}

	w.Header().Set("Content-Type", result.Encoder.ContentType())
	w.WriteHeader(result.Status)
	_, _ = w.Write(data)
}

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// defaultServerTimeouts returns the default timeout configuration.
func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// Serve starts an HTTP server on the specified address, with
// production-safe timeouts. H2C is enabled when configured via
// WithH2C.
//
// Example:
//
//	engine := dispatch.MustNew(tree)
//	if err := engine.Serve(":8080"); err != nil {
//	    log.Fatal(err)
//	}
func (e *Engine) Serve(addr string) error {
	h := http.Handler(e)
	if e.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}

	timeouts := e.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}

	return srv.ListenAndServe()
}

// ServeTLS starts an HTTPS server. HTTP/2 is enabled automatically via
// ALPN.
func (e *Engine) ServeTLS(addr, certFile, keyFile string) error {
	timeouts := e.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}

	return srv.ListenAndServeTLS(certFile, keyFile)
}
