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
	"net/http"
	"strings"

	"github.com/codedmart/servant/codec"
)

// Node is one alternative in the route tree: either an *Endpoint leaf
// or a *Choice of sub-trees. The tree is built once at startup and is
// then read-only, so it may be shared across arbitrarily many
// concurrent resolutions without synchronization.
type Node interface {
	isNode()
}

// Choice groups alternatives that are tried in declaration order.
// Choices nest arbitrarily, mirroring nested path/method/body
// alternatives in the API description.
type Choice struct {
	alts []Node
}

// OneOf builds a Choice over the given alternatives.
//
// Example:
//
//	tree := dispatch.OneOf(
//	    dispatch.NewEndpoint(http.MethodPost, "items", createItem),
//	    dispatch.NewEndpoint(http.MethodGet, "items/{id}", getItem),
//	)
func OneOf(alts ...Node) *Choice {
	return &Choice{alts: alts}
}

// Alternatives returns the choice's sub-trees in declaration order.
func (c *Choice) Alternatives() []Node { return c.alts }

func (c *Choice) isNode() {}

// Endpoint is one terminal route+method+codec combination with a
// handler. Endpoints are immutable after construction; dispatch never
// mutates them.
type Endpoint struct {
	segments []Segment
	method   string

	// Ordered content-type identifiers. The first entry of each list is
	// the default selected when the corresponding request header is
	// absent.
	consumes []string
	produces []string

	// Optional Accept-* offer lists. Empty means "not negotiated".
	languages []string
	charsets  []string
	encodings []string

	authorize AccessFunc
	forbid    AccessFunc
	handler   HandlerFunc
	input     func() any
	status    int
}

// EndpointOption configures an Endpoint at construction time.
type EndpointOption func(*Endpoint)

// NewEndpoint creates an endpoint for the given method and route
// pattern. The pattern uses "{name}" for capture segments; see
// [ParseSegments].
//
// Defaults: request and response content types are application/json,
// and the success status is 201 for POST and 200 otherwise.
//
// Example:
//
//	ep := dispatch.NewEndpoint(http.MethodPost, "home/{t}", handler,
//	    dispatch.WithConsumes(codec.MIMEJSON),
//	    dispatch.WithProduces(codec.MIMEJSON, codec.MIMEText),
//	    dispatch.WithInput(func() any { return new(Order) }),
//	)
func NewEndpoint(method, pattern string, handler HandlerFunc, opts ...EndpointOption) *Endpoint {
	ep := &Endpoint{
		segments: ParseSegments(pattern),
		method:   method,
		consumes: []string{codec.MIMEJSON},
		produces: []string{codec.MIMEJSON},
		handler:  handler,
	}
	for _, opt := range opts {
		opt(ep)
	}
	if ep.status == 0 {
		ep.status = defaultStatus(method)
	}

	return ep
}

func (ep *Endpoint) isNode() {}

// WithConsumes sets the request content types the endpoint accepts, in
// preference order. The first entry is the default when the request has
// no Content-Type header.
func WithConsumes(contentTypes ...string) EndpointOption {
	return func(ep *Endpoint) {
		ep.consumes = contentTypes
	}
}

// WithProduces sets the response content types the endpoint can encode,
// in preference order. The first entry is the default when the request
// has no Accept header.
func WithProduces(contentTypes ...string) EndpointOption {
	return func(ep *Endpoint) {
		ep.produces = contentTypes
	}
}

// WithLanguages sets the Accept-Language offers for the endpoint. When
// set, a request with an Accept-Language header matching none of the
// offers is rejected as not acceptable; an absent header selects the
// first offer.
func WithLanguages(languages ...string) EndpointOption {
	return func(ep *Endpoint) {
		ep.languages = languages
	}
}

// WithCharsets sets the Accept-Charset offers for the endpoint.
func WithCharsets(charsets ...string) EndpointOption {
	return func(ep *Endpoint) {
		ep.charsets = charsets
	}
}

// WithEncodings sets the Accept-Encoding offers for the endpoint.
func WithEncodings(encodings ...string) EndpointOption {
	return func(ep *Endpoint) {
		ep.encodings = encodings
	}
}

// WithAuthorize sets the endpoint's authorization hook. A deny decision
// rejects the candidate as unauthorized (401).
func WithAuthorize(hook AccessFunc) EndpointOption {
	return func(ep *Endpoint) {
		ep.authorize = hook
	}
}

// WithForbid sets the endpoint's forbidden hook. A deny decision
// rejects the candidate as forbidden (403). The hook runs after the
// authorization hook.
func WithForbid(hook AccessFunc) EndpointOption {
	return func(ep *Endpoint) {
		ep.forbid = hook
	}
}

// WithInput declares the endpoint's request body prototype. The factory
// is called once per dispatch to allocate a fresh decode target; the
// decoded value is handed to the handler as Call.Body.
//
// Endpoints without a declared input skip body decoding entirely.
func WithInput(factory func() any) EndpointOption {
	return func(ep *Endpoint) {
		ep.input = factory
	}
}

// WithStatus overrides the success status code used when the handler
// returns a value without an error.
func WithStatus(status int) EndpointOption {
	return func(ep *Endpoint) {
		ep.status = status
	}
}

// Method returns the endpoint's HTTP method.
func (ep *Endpoint) Method() string { return ep.method }

// Pattern returns the endpoint's route template, e.g. "/home/{t}".
// Useful as a low-cardinality label for logs and metrics.
func (ep *Endpoint) Pattern() string {
	if len(ep.segments) == 0 {
		return "/"
	}
	parts := make([]string, len(ep.segments))
	for i, seg := range ep.segments {
		parts[i] = seg.String()
	}

	return "/" + strings.Join(parts, "/")
}

// SuccessStatus returns the status code used for successful handler
// results.
func (ep *Endpoint) SuccessStatus() int { return ep.status }

// validate checks the endpoint's configuration against the codec
// registry. Called by engine construction so misdeclared endpoints fail
// at startup rather than at request time.
func (ep *Endpoint) validate(registry *codec.Registry) error {
	if ep.method == "" {
		return fmt.Errorf("%w: endpoint %s", ErrEndpointMethodEmpty, ep.Pattern())
	}
	if ep.handler == nil {
		return fmt.Errorf("%w: endpoint %s %s", ErrEndpointHandlerNil, ep.method, ep.Pattern())
	}
	if len(ep.consumes) == 0 {
		return fmt.Errorf("%w: endpoint %s %s", ErrEndpointNoRequestCodec, ep.method, ep.Pattern())
	}
	if len(ep.produces) == 0 {
		return fmt.Errorf("%w: endpoint %s %s", ErrEndpointNoResponseCodec, ep.method, ep.Pattern())
	}

	for _, ct := range ep.consumes {
		if _, err := registry.MustLookup(ct); err != nil {
			return fmt.Errorf("endpoint %s %s consumes: %w", ep.method, ep.Pattern(), err)
		}
	}
	for _, ct := range ep.produces {
		if _, err := registry.MustLookup(ct); err != nil {
			return fmt.Errorf("endpoint %s %s produces: %w", ep.method, ep.Pattern(), err)
		}
	}

	seen := make(map[string]bool, len(ep.segments))
	for _, seg := range ep.segments {
		if !seg.IsCapture() {
			continue
		}
		if seen[seg.Name()] {
			return fmt.Errorf("%w: %q in endpoint %s %s", ErrDuplicateCapture, seg.Name(), ep.method, ep.Pattern())
		}
		seen[seg.Name()] = true
	}

	return nil
}

// defaultStatus returns the conventional success status for a method:
// 201 for POST, 200 otherwise.
func defaultStatus(method string) int {
	if method == http.MethodPost {
		return http.StatusCreated
	}

	return http.StatusOK
}
