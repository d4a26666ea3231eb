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

import "errors"

var (
	// ErrNilRouteTree indicates that the engine was constructed without
	// a route tree.
	ErrNilRouteTree = errors.New("route tree is nil")

	// ErrNilRegistry indicates that a nil codec registry was supplied.
	ErrNilRegistry = errors.New("codec registry is nil")

	// ErrUnknownNode indicates an unrecognized Node implementation in
	// the route tree.
	ErrUnknownNode = errors.New("unknown route tree node type")

	// ErrEndpointMethodEmpty indicates an endpoint declared without an
	// HTTP method.
	ErrEndpointMethodEmpty = errors.New("endpoint method is empty")

	// ErrEndpointHandlerNil indicates an endpoint declared without a
	// handler.
	ErrEndpointHandlerNil = errors.New("endpoint handler is nil")

	// ErrEndpointNoRequestCodec indicates an endpoint with an empty
	// request content-type list.
	ErrEndpointNoRequestCodec = errors.New("endpoint declares no request content type")

	// ErrEndpointNoResponseCodec indicates an endpoint with an empty
	// response content-type list.
	ErrEndpointNoResponseCodec = errors.New("endpoint declares no response content type")

	// ErrDuplicateCapture indicates two capture segments with the same
	// name in one endpoint pattern.
	ErrDuplicateCapture = errors.New("duplicate capture name")

	// ErrAuthorizeHook indicates that an authorization hook failed for
	// a reason other than a deny decision.
	ErrAuthorizeHook = errors.New("authorize hook failed")

	// ErrForbidHook indicates that a forbidden hook failed for a reason
	// other than its decision.
	ErrForbidHook = errors.New("forbidden hook failed")
)
