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
	"fmt"
	"io"
	"net/http"
)

// Request is the engine's view of one incoming HTTP request: an
// already-parsed method, path segments, case-insensitive headers, and a
// body stream. The transport layer owns parsing; the engine consumes
// the result.
//
// The body is read at most once and buffered, so sibling candidates
// tried during backtracking can each decode it without re-reading the
// stream. A Request is used by a single resolution and is not safe for
// concurrent use.
type Request struct {
	// Method is the HTTP method, e.g. "POST".
	Method string

	// Path is the raw request path, kept for error reporting.
	Path string

	// Segments is the parsed path, one entry per segment.
	Segments []string

	// Header holds the request headers. Lookups go through
	// http.Header's canonical-key handling, so they are
	// case-insensitive.
	Header http.Header

	body      io.Reader
	bodyBytes []byte
	bodyErr   error
	bodyRead  bool
}

// NewRequest builds a request from already-parsed components. The body
// may be nil for bodyless requests.
//
// Example:
//
//	req := dispatch.NewRequest(http.MethodPost, "home/5", header, strings.NewReader(`{"n": 1}`))
func NewRequest(method, path string, header http.Header, body io.Reader) *Request {
	if header == nil {
		header = make(http.Header)
	}

	return &Request{
		Method:   method,
		Path:     path,
		Segments: SplitPath(path),
		Header:   header,
		body:     body,
	}
}

// FromHTTP builds a dispatch request from a net/http request.
func FromHTTP(req *http.Request) *Request {
	return NewRequest(req.Method, req.URL.Path, req.Header, req.Body)
}

// Body returns the buffered request body, reading the underlying stream
// on first use. Subsequent calls return the same bytes, or the same
// error when the first read failed.
func (r *Request) Body() ([]byte, error) {
	if r.bodyRead {
		return r.bodyBytes, r.bodyErr
	}
	r.bodyRead = true

	if r.body == nil {
		return nil, nil
	}

	data, err := io.ReadAll(r.body)
	if err != nil {
		r.bodyErr = fmt.Errorf("read request body: %w", err)

		return nil, r.bodyErr
	}
	r.bodyBytes = data

	return data, nil
}

// ContentType returns the Content-Type header value, or "".
func (r *Request) ContentType() string {
	return r.Header.Get("Content-Type")
}
