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
	"io"
	"log/slog"

	"github.com/codedmart/servant/codec"
	"github.com/codedmart/servant/problem"
)

// noopLogger is a singleton no-op logger used when no logger is
// configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// Engine resolves incoming requests against a route tree.
//
// Resolution is a depth-first search over the tree's alternatives in
// declaration order. Each endpoint candidate runs a fixed stage
// pipeline — path segments, method, request content type, body decode,
// authorize, forbidden, response negotiation — short-circuiting at the
// first failing stage. A failed candidate merges its failure into the
// request-local best-failure accumulator and the search moves on to the
// next sibling; a candidate that clears negotiation invokes its handler
// and ends the search. When every candidate fails, the response is the
// single failure from whichever candidate progressed furthest.
//
// The engine itself is stateless per request and safe for concurrent
// use: the route tree and codec registry are read-only after
// construction, and all mutable state lives in request-local values.
//
// Example:
//
//	engine := dispatch.MustNew(dispatch.OneOf(
//	    dispatch.NewEndpoint(http.MethodPost, "home/{t}", postHome,
//	        dispatch.WithInput(func() any { return new(Payload) })),
//	))
//	http.ListenAndServe(":8080", engine)
type Engine struct {
	tree     Node
	registry *codec.Registry
	logger   *slog.Logger
	recorder Recorder

	enableH2C      bool
	serverTimeouts *serverTimeouts
}

// New creates an engine for the given route tree. The configuration is
// validated immediately: every endpoint must declare a method, a
// handler, and content types resolvable in the codec registry, so
// misdeclared APIs fail at startup rather than at request time.
//
// For a version that panics instead of returning an error, use MustNew.
//
// Example:
//
//	engine, err := dispatch.New(tree,
//	    dispatch.WithRegistry(registry),
//	    dispatch.WithLogger(logger),
//	)
func New(tree Node, opts ...Option) (*Engine, error) {
	e := &Engine{
		tree:     tree,
		registry: codec.Default(),
		logger:   noopLogger,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.validate(); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	return e, nil
}

// MustNew creates an engine and panics if the configuration is invalid.
//
// Usage:
//
//	engine := dispatch.MustNew(tree, dispatch.WithRegistry(registry))
func MustNew(tree Node, opts ...Option) *Engine {
	e, err := New(tree, opts...)
	if err != nil {
		panic(fmt.Sprintf("dispatch.MustNew: %v", err))
	}

	return e
}

// validate checks the engine configuration and the whole route tree.
func (e *Engine) validate() error {
	if e.tree == nil {
		return ErrNilRouteTree
	}
	if e.registry == nil {
		return ErrNilRegistry
	}

	return e.validateNode(e.tree)
}

func (e *Engine) validateNode(n Node) error {
	switch node := n.(type) {
	case *Choice:
		for _, alt := range node.alts {
			if alt == nil {
				return fmt.Errorf("%w: nil alternative", ErrUnknownNode)
			}
			if err := e.validateNode(alt); err != nil {
				return err
			}
		}

		return nil
	case *Endpoint:
		return node.validate(e.registry)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownNode, n)
	}
}

// Registry returns the engine's codec registry.
func (e *Engine) Registry() *codec.Registry { return e.registry }

// Result is the outcome of resolving one request.
//
// Exactly one of two shapes occurs: a handler ran (Failure is KindNone,
// Endpoint and Encoder are set, and either Value or HandlerErr carries
// the handler's outcome), or no handler ran (Failure names the
// furthest-progress rejection and Status its HTTP code).
type Result struct {
	// Endpoint is the matched endpoint, nil when no candidate matched.
	Endpoint *Endpoint

	// Params holds the matched endpoint's captured path values.
	Params map[string]string

	// Value is the handler's success value, to be encoded with Encoder.
	Value any

	// HandlerErr is the handler's own error outcome, passed through
	// unchanged. Its status is already reflected in Status.
	HandlerErr error

	// Encoder is the response codec chosen by content negotiation.
	Encoder codec.Codec

	// Status is the HTTP status code for the response.
	Status int

	// Failure is KindNone when a handler ran, otherwise the resolved
	// failure kind.
	Failure Kind
}

// Matched reports whether a handler was invoked for the request.
func (r *Result) Matched() bool { return r.Failure == KindNone }

// Resolve dispatches one request against the route tree.
//
// The returned error is non-nil only for genuinely unexpected internal
// faults (a hook failing, the body stream erroring); every taxonomy
// failure is reported through Result.Failure instead. At most one
// handler is invoked per call, and its outcome — success value or
// error — is final.
func (e *Engine) Resolve(ctx context.Context, req *Request) (*Result, error) {
	search := &resolution{engine: e, req: req}

	result, done, err := search.walk(ctx, e.tree)
	if err != nil {
		return nil, err
	}
	if done {
		return result, nil
	}

	kind := search.best.resolve()

	return &Result{Failure: kind, Status: kind.Status()}, nil
}

// resolution is the request-local state of one depth-first search.
type resolution struct {
	engine *Engine
	req    *Request
	best   bestFailure
}

// walk visits a node. done=true means a handler was invoked and the
// search is committed; a false return with nil error means the subtree
// was exhausted and its failures are merged into the accumulator.
func (s *resolution) walk(ctx context.Context, n Node) (result *Result, done bool, err error) {
	switch node := n.(type) {
	case *Choice:
		for _, alt := range node.alts {
			result, done, err = s.walk(ctx, alt)
			if err != nil || done {
				return result, done, err
			}
		}

		return nil, false, nil
	case *Endpoint:
		return s.try(ctx, node)
	default:
		// Unreachable: the tree was validated at construction.
		return nil, false, fmt.Errorf("%w: %T", ErrUnknownNode, n)
	}
}

// try runs one endpoint candidate through the stage pipeline. The
// stage order is the correctness contract: each stage a candidate
// passes raises the rank of the failure it can report, which is what
// makes 415 outrank 404 when both occur in one tree.
func (s *resolution) try(ctx context.Context, ep *Endpoint) (*Result, bool, error) {
	req := s.req

	// Stage 1: path segments.
	params, ok := matchSegments(ep.segments, req.Segments)
	if !ok {
		s.best.merge(KindRouteNotFound)

		return nil, false, nil
	}

	// Stage 2: method.
	if ep.method != req.Method {
		s.best.merge(KindMethodNotAllowed)

		return nil, false, nil
	}

	// Stage 3: request content type. An absent header is not a
	// negotiation failure: the first declared codec is the default.
	requestType := ep.consumes[0]
	if ct := req.ContentType(); ct != "" {
		requestType = ""
		canonical := codec.CanonicalType(ct)
		for _, offered := range ep.consumes {
			if codec.CanonicalType(offered) == canonical {
				requestType = offered

				break
			}
		}
		if requestType == "" {
			s.best.merge(KindUnsupportedMediaType)

			return nil, false, nil
		}
	}

	// Stage 4: body decode. Decoder diagnostics are discarded here;
	// the dispatch boundary exposes only the status code.
	var decoded any
	if ep.input != nil {
		body, err := req.Body()
		if err != nil {
			return nil, false, err
		}

		decoder, err := s.engine.registry.MustLookup(requestType)
		if err != nil {
			// Unreachable: consumes lists are validated at construction.
			return nil, false, err
		}

		target := ep.input()
		if err := decoder.Unmarshal(body, target); err != nil {
			s.engine.logger.Debug("body decode rejected",
				"endpoint", ep.Pattern(),
				"content_type", requestType,
				"error", err,
			)
			s.best.merge(KindBodyUndecodable)

			return nil, false, nil
		}
		decoded = target
	}

	// Stage 5: authorization.
	if ep.authorize != nil {
		allow, err := ep.authorize(ctx, req)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrAuthorizeHook, err)
		}
		if !allow {
			s.best.merge(KindUnauthorized)

			return nil, false, nil
		}
	}

	// Stage 6: forbidden.
	if ep.forbid != nil {
		allow, err := ep.forbid(ctx, req)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrForbidHook, err)
		}
		if !allow {
			s.best.merge(KindForbidden)

			return nil, false, nil
		}
	}

	// Stage 7: response negotiation. Accept first, then the declared
	// Accept-Language, Accept-Charset, and Accept-Encoding offer lists
	// in that order. All share the not-acceptable rank.
	responseType := negotiateMediaType(req.Header.Get("Accept"), ep.produces)
	if responseType == "" {
		s.best.merge(KindNotAcceptable)

		return nil, false, nil
	}
	if len(ep.languages) > 0 && negotiateTokens(req.Header.Get("Accept-Language"), ep.languages) == "" {
		s.best.merge(KindNotAcceptable)

		return nil, false, nil
	}
	if len(ep.charsets) > 0 && negotiateTokens(req.Header.Get("Accept-Charset"), ep.charsets) == "" {
		s.best.merge(KindNotAcceptable)

		return nil, false, nil
	}
	if len(ep.encodings) > 0 && negotiateTokens(req.Header.Get("Accept-Encoding"), ep.encodings) == "" {
		s.best.merge(KindNotAcceptable)

		return nil, false, nil
	}

	encoder, err := s.engine.registry.MustLookup(responseType)
	if err != nil {
		// Unreachable: produces lists are validated at construction.
		return nil, false, err
	}

	// Commitment point: the handler runs exactly once and its outcome
	// is final. No sibling is tried after this, whatever it returns.
	call := &Call{Request: req, Params: params, Body: decoded}
	value, handlerErr := ep.handler(ctx, call)
	if handlerErr != nil {
		return &Result{
			Endpoint:   ep,
			Params:     params,
			HandlerErr: handlerErr,
			Encoder:    encoder,
			Status:     problem.StatusOf(handlerErr),
		}, true, nil
	}

	return &Result{
		Endpoint: ep,
		Params:   params,
		Value:    value,
		Encoder:  encoder,
		Status:   ep.status,
	}, true, nil
}

// matchSegments matches a request path against an endpoint's segment
// specs, binding capture values. Pure: no side effects, never fails
// with an error.
func matchSegments(specs []Segment, segments []string) (map[string]string, bool) {
	if len(specs) != len(segments) {
		return nil, false
	}

	var params map[string]string
	for i, spec := range specs {
		if !spec.match(segments[i]) {
			return nil, false
		}
		if spec.IsCapture() {
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[spec.Name()] = segments[i]
		}
	}

	return params, true
}
