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

import "net/http"

// Kind classifies why a candidate endpoint rejected a request.
//
// Kinds form a strict total order by dispatch progress: each kind
// corresponds to one more pipeline stage passed than the kind before
// it. When every candidate fails, the request's response is the failure
// from whichever candidate progressed furthest, so the numerically
// largest Kind wins regardless of the candidates' declaration order.
//
// The order is NOT numeric severity: NotAcceptable (406) outranks
// Unauthorized (401) because response negotiation happens after the
// access-control stages.
type Kind uint8

const (
	// KindNone is the zero value: no failure recorded.
	KindNone Kind = iota

	// KindRouteNotFound: the path segments did not match.
	KindRouteNotFound

	// KindMethodNotAllowed: the path matched but the method did not.
	KindMethodNotAllowed

	// KindUnsupportedMediaType: the Content-Type header matched none of
	// the endpoint's request codecs.
	KindUnsupportedMediaType

	// KindBodyUndecodable: the selected request codec could not decode
	// the body.
	KindBodyUndecodable

	// KindUnauthorized: the authorize hook denied the request.
	KindUnauthorized

	// KindForbidden: the forbidden hook rejected the request.
	KindForbidden

	// KindNotAcceptable: no response codec satisfies the Accept header
	// (or a declared Accept-Language / Accept-Charset / Accept-Encoding
	// offer list is unmatched).
	KindNotAcceptable
)

// kindStatuses maps each Kind to its HTTP status code.
var kindStatuses = [...]int{
	KindNone:                 http.StatusInternalServerError,
	KindRouteNotFound:        http.StatusNotFound,
	KindMethodNotAllowed:     http.StatusMethodNotAllowed,
	KindUnsupportedMediaType: http.StatusUnsupportedMediaType,
	KindBodyUndecodable:      http.StatusBadRequest,
	KindUnauthorized:         http.StatusUnauthorized,
	KindForbidden:            http.StatusForbidden,
	KindNotAcceptable:        http.StatusNotAcceptable,
}

var kindNames = [...]string{
	KindNone:                 "none",
	KindRouteNotFound:        "route_not_found",
	KindMethodNotAllowed:     "method_not_allowed",
	KindUnsupportedMediaType: "unsupported_media_type",
	KindBodyUndecodable:      "body_undecodable",
	KindUnauthorized:         "unauthorized",
	KindForbidden:            "forbidden",
	KindNotAcceptable:        "not_acceptable",
}

// Status returns the HTTP status code for the failure kind.
func (k Kind) Status() int {
	if int(k) < len(kindStatuses) {
		return kindStatuses[k]
	}

	return http.StatusInternalServerError
}

// String returns a stable snake_case name, suitable for logs and
// metric labels.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "unknown"
}

// bestFailure tracks the furthest-progress failure seen while
// backtracking across candidates. It is request-local state: created at
// the start of one resolution, discarded at the end, never shared.
type bestFailure struct {
	kind Kind
}

// merge records a candidate's failure. Only a strictly higher-progress
// kind replaces the current one, so ties keep the earliest-declared
// candidate's failure.
func (b *bestFailure) merge(k Kind) {
	if k > b.kind {
		b.kind = k
	}
}

// resolve returns the accumulated failure, defaulting to
// KindRouteNotFound when no candidate was tried at all (an empty tree
// behaves like a tree nothing matched).
func (b *bestFailure) resolve() Kind {
	if b.kind == KindNone {
		return KindRouteNotFound
	}

	return b.kind
}
