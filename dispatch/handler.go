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

import "context"

// AccessFunc is a pluggable access-control predicate. It returns the
// decision and an error for genuinely unexpected faults (which surface
// as internal errors, not as taxonomy failures).
//
// For the authorize hook, allow=false rejects the candidate as
// unauthorized. For the forbidden hook, allow=false rejects the
// candidate as forbidden (i.e. allow answers "may this request
// proceed?")
//
// Hooks may block or perform I/O; the engine simply awaits the result.
// The context carries the request's cancellation signal.
type AccessFunc func(ctx context.Context, req *Request) (allow bool, err error)

// HandlerFunc is an endpoint handler. It receives the decoded body and
// captured path values via the Call and returns a value to encode with
// the negotiated response codec, or an error.
//
// An error implementing problem.StatusError passes its status through
// unchanged; any other error yields a 500. Handler outcomes are final:
// the engine never backtracks to another candidate once a handler has
// been invoked.
type HandlerFunc func(ctx context.Context, call *Call) (any, error)

// Call carries the inputs of one handler invocation.
type Call struct {
	// Request is the request being dispatched.
	Request *Request

	// Params holds the values bound by capture segments, keyed by
	// capture name.
	Params map[string]string

	// Body is the decoded request body, of the type produced by the
	// endpoint's input factory. Nil when the endpoint declares no input.
	Body any
}

// Param returns the captured path value bound under name, or "".
func (c *Call) Param(name string) string {
	return c.Params[name]
}
