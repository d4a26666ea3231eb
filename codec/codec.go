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

// Package codec provides the content-type codec registry used by the
// dispatch engine to decode request bodies and encode response values.
//
// A Codec pairs an encoder and a decoder under a single content-type
// identifier. A Registry maps identifiers to codecs; lookups normalize
// media type parameters and case, so "application/json; charset=utf-8"
// resolves the codec registered as "application/json".
//
// JSON and plain text are built in. Additional formats live in
// subpackages (yaml, toml, msgpack, proto) and register themselves into
// a Registry explicitly:
//
//	registry := codec.NewRegistry()
//	yaml.Register(registry)
//	msgpack.Register(registry)
package codec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownContentType indicates that no codec is registered for a
// content-type identifier.
var ErrUnknownContentType = errors.New("no codec registered for content type")

// Codec pairs an encoder and a decoder for one content-type identifier.
//
// Marshal serializes a value to bytes; Unmarshal deserializes bytes into
// the value pointed to by out. Implementations must be safe for
// concurrent use.
type Codec interface {
	// ContentType returns the canonical content-type identifier,
	// e.g. "application/json".
	ContentType() string

	// Marshal serializes v to bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes data into out, which must be a pointer.
	Unmarshal(data []byte, out any) error
}

// Registry maps content-type identifiers to codecs.
//
// A Registry is mutated only during setup; once handed to a dispatch
// engine it must be treated as read-only and is then safe for concurrent
// use without synchronization.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry creates a registry containing the given codecs.
//
// Example:
//
//	registry := codec.NewRegistry(codec.JSON(), codec.Text())
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: make(map[string]Codec, len(codecs))}
	for _, c := range codecs {
		r.Register(c)
	}

	return r
}

// Default returns a registry with the built-in JSON and plain-text
// codecs registered.
func Default() *Registry {
	return NewRegistry(JSON(), Text())
}

// Register adds a codec under its canonical content type, replacing any
// codec previously registered for the same identifier.
func (r *Registry) Register(c Codec) {
	r.codecs[CanonicalType(c.ContentType())] = c
}

// Lookup returns the codec registered for the given content type.
// Media type parameters and case are ignored.
func (r *Registry) Lookup(contentType string) (Codec, bool) {
	c, ok := r.codecs[CanonicalType(contentType)]

	return c, ok
}

// MustLookup returns the codec registered for the given content type and
// errors if none exists. Used by the dispatch engine during startup
// validation so unknown identifiers fail at construction, not at request
// time.
func (r *Registry) MustLookup(contentType string) (Codec, error) {
	c, ok := r.Lookup(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, contentType)
	}

	return c, nil
}

// Types returns the canonical identifiers of all registered codecs.
// Order is unspecified.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.codecs))
	for t := range r.codecs {
		types = append(types, t)
	}

	return types
}

// CanonicalType normalizes a content-type identifier for registry
// lookups: parameters are stripped, surrounding whitespace removed, and
// the media type lowercased.
//
//	CanonicalType("Application/JSON; charset=utf-8") // "application/json"
func CanonicalType(contentType string) string {
	if semicolon := strings.IndexByte(contentType, ';'); semicolon != -1 {
		contentType = contentType[:semicolon]
	}

	return strings.ToLower(strings.TrimSpace(contentType))
}
