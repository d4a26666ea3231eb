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

// Package dispatch resolves HTTP requests against a declarative API
// description: a tree of alternative endpoints, each an ordered path
// pattern, method, request/response content types, optional access
// hooks, and a handler.
//
// # Resolution
//
// Candidates are tried depth-first in declaration order. Each candidate
// runs a fixed pipeline — path, method, request content type, body
// decode, authorize, forbidden, response negotiation — and the first
// failing stage rejects it. Rejections do not end the search: the
// engine backtracks to the next sibling, remembering only the failure
// from whichever candidate got furthest through the pipeline. That
// single best failure becomes the response when nothing matches, which
// is why a request that hits a right-path wrong-content-type endpoint
// gets 415 rather than the 404 of an unrelated sibling, regardless of
// declaration order.
//
// A candidate that clears all stages invokes its handler, exactly once,
// and the handler's outcome is final — success or error, no other
// candidate is tried afterwards.
//
// # Usage
//
//	tree := dispatch.OneOf(
//	    dispatch.NewEndpoint(http.MethodPost, "orders", createOrder,
//	        dispatch.WithInput(func() any { return new(Order) }),
//	        dispatch.WithProduces(codec.MIMEJSON, codec.MIMEText),
//	    ),
//	    dispatch.NewEndpoint(http.MethodGet, "orders/{id}", getOrder),
//	)
//	engine := dispatch.MustNew(tree)
//	http.ListenAndServe(":8080", engine)
//
// The route tree and engine are immutable after construction and safe
// for concurrent use; every request resolves independently.
package dispatch
