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
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codedmart/servant/codec"
	"github.com/codedmart/servant/problem"
)

// newServeEngine builds the single-endpoint API used by the HTTP
// adapter tests.
func newServeEngine(t *testing.T, handler HandlerFunc, opts ...Option) *Engine {
	t.Helper()

	ep := NewEndpoint(http.MethodPost, "home/{t:int}", handler,
		WithInput(func() any { return new(testBody) }),
	)

	engine, err := New(OneOf(ep), opts...)
	require.NoError(t, err)

	return engine
}

// decodeProblem parses an RFC 9457 response body.
func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	assert.Equal(t, problem.ContentType, rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestServeHTTPSuccess(t *testing.T) {
	t.Parallel()

	engine := newServeEngine(t, func(ctx context.Context, call *Call) (any, error) {
		return map[string]string{"t": call.Param("t")}, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/home/5", strings.NewReader(`{"amount": 4}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, codec.MIMEJSON, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"t": "5"}`, rec.Body.String())
}

func TestServeHTTPProblemResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		target     string
		headers    map[string]string
		body       string
		wantStatus int
		wantTitle  string
	}{
		{
			name:       "route not found",
			method:     http.MethodGet,
			target:     "/home/nonexistent",
			wantStatus: http.StatusNotFound,
			wantTitle:  "Not Found",
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			target:     "/home/5",
			wantStatus: http.StatusMethodNotAllowed,
			wantTitle:  "Method Not Allowed",
		},
		{
			name:       "unsupported media type",
			method:     http.MethodPost,
			target:     "/home/5",
			headers:    map[string]string{"Content-Type": "text/plain"},
			body:       "4",
			wantStatus: http.StatusUnsupportedMediaType,
			wantTitle:  "Unsupported Media Type",
		},
		{
			name:       "undecodable body",
			method:     http.MethodPost,
			target:     "/home/5",
			headers:    map[string]string{"Content-Type": "application/json"},
			body:       "nonsense",
			wantStatus: http.StatusBadRequest,
			wantTitle:  "Bad Request",
		},
		{
			name:   "not acceptable",
			method: http.MethodPost,
			target: "/home/5",
			headers: map[string]string{
				"Content-Type": "application/json",
				"Accept":       "text/plain",
			},
			body:       `{"amount": 4}`,
			wantStatus: http.StatusNotAcceptable,
			wantTitle:  "Not Acceptable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := newServeEngine(t, okHandler(nil, "ok"))

			var bodyReader *strings.Reader
			if tt.body != "" {
				bodyReader = strings.NewReader(tt.body)
			} else {
				bodyReader = strings.NewReader("")
			}
			req := httptest.NewRequest(tt.method, tt.target, bodyReader)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			engine.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantTitle, body["title"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, tt.target, body["instance"])
		})
	}
}

func TestServeHTTPHandlerError(t *testing.T) {
	t.Parallel()

	engine := newServeEngine(t, func(ctx context.Context, call *Call) (any, error) {
		return nil, problem.New(http.StatusPaymentRequired, "insufficient funds")
	})

	req := httptest.NewRequest(http.MethodPost, "/home/5", strings.NewReader(`{"amount": 4}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "insufficient funds", body["detail"])
}

func TestServeHTTPHandlerErrorWithPayload(t *testing.T) {
	t.Parallel()

	engine := newServeEngine(t, func(ctx context.Context, call *Call) (any, error) {
		err := problem.New(http.StatusConflict, "version conflict")

		return nil, err.WithPayload(map[string]int{"current_version": 7})
	})

	req := httptest.NewRequest(http.MethodPost, "/home/5", strings.NewReader(`{"amount": 4}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, codec.MIMEJSON, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"current_version": 7}`, rec.Body.String())
}

func TestServeHTTPPlainError(t *testing.T) {
	t.Parallel()

	engine := newServeEngine(t, func(ctx context.Context, call *Call) (any, error) {
		return nil, assert.AnError
	})

	req := httptest.NewRequest(http.MethodPost, "/home/5", strings.NewReader(`{"amount": 4}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code, "errors without a declared status are 500")
}

func TestServeHTTPEncodingFailure(t *testing.T) {
	t.Parallel()

	// Channels are not JSON-serializable, so encoding the handler's
	// value fails after a successful match.
	engine := newServeEngine(t, okHandler(nil, make(chan int)))

	req := httptest.NewRequest(http.MethodPost, "/home/5", strings.NewReader(`{"amount": 4}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "Internal Server Error", body["title"])
}

// fakeRecorder records the Recorder lifecycle calls ServeHTTP makes.
type fakeRecorder struct {
	started  int
	wrapped  int
	ended    int
	pattern  string
	status   int
	logger   *slog.Logger
	excluded bool
}

func (f *fakeRecorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	f.started++
	if f.excluded {
		return ctx, nil
	}

	return ctx, f
}

func (f *fakeRecorder) WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter {
	f.wrapped++

	return &responseWriter{ResponseWriter: w}
}

func (f *fakeRecorder) BuildRequestLogger(ctx context.Context, req *http.Request, pattern string) *slog.Logger {
	return NoopLogger()
}

func (f *fakeRecorder) OnRequestEnd(ctx context.Context, state any, w http.ResponseWriter, req *http.Request, pattern string) {
	f.ended++
	f.pattern = pattern
	f.logger = f.BuildRequestLogger(ctx, req, pattern)
	if info, ok := w.(ResponseInfo); ok {
		f.status = info.StatusCode()
	}
}

func TestServeHTTPRecorderLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("matched request reports the route template", func(t *testing.T) {
		t.Parallel()

		recorder := &fakeRecorder{}
		engine := newServeEngine(t, okHandler(nil, "ok"), WithRecorder(recorder))

		req := httptest.NewRequest(http.MethodPost, "/home/5", strings.NewReader(`{"amount": 4}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, 1, recorder.started)
		assert.Equal(t, 1, recorder.wrapped)
		assert.Equal(t, 1, recorder.ended)
		assert.Equal(t, "/home/{t:int}", recorder.pattern, "observability sees the template, not the raw path")
		assert.Equal(t, http.StatusCreated, recorder.status)
		assert.NotNil(t, recorder.logger, "the request-scoped logger is built once the template is known")
	})

	t.Run("unmatched request reports the no-match sentinel", func(t *testing.T) {
		t.Parallel()

		recorder := &fakeRecorder{}
		engine := newServeEngine(t, okHandler(nil, "ok"), WithRecorder(recorder))

		req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
		engine.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "_no_match", recorder.pattern)
		assert.Equal(t, http.StatusNotFound, recorder.status)
	})

	t.Run("nil state excludes the request", func(t *testing.T) {
		t.Parallel()

		recorder := &fakeRecorder{excluded: true}
		engine := newServeEngine(t, okHandler(nil, "ok"), WithRecorder(recorder))

		req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
		engine.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, 1, recorder.started)
		assert.Equal(t, 0, recorder.wrapped)
		assert.Equal(t, 0, recorder.ended)
	})
}

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("captures status and size", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rec}

		rw.WriteHeader(http.StatusTeapot)
		n, err := rw.Write([]byte("short and stout"))
		require.NoError(t, err)

		assert.Equal(t, 15, n)
		assert.Equal(t, http.StatusTeapot, rw.StatusCode())
		assert.Equal(t, int64(15), rw.Size())
	})

	t.Run("ignores duplicate WriteHeader", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rec}

		rw.WriteHeader(http.StatusAccepted)
		rw.WriteHeader(http.StatusInternalServerError)

		assert.Equal(t, http.StatusAccepted, rw.StatusCode())
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("defaults to 200 on bare write", func(t *testing.T) {
		t.Parallel()

		rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		_, err := rw.Write([]byte("ok"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, rw.StatusCode())
	})

	t.Run("hijack unsupported", func(t *testing.T) {
		t.Parallel()

		rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		_, _, err := rw.Hijack()
		assert.ErrorIs(t, err, ErrResponseWriterNotHijacker)
	})
}
