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
	"regexp"
	"strings"
)

// Compiled patterns for typed capture annotations.
var (
	intPattern   = regexp.MustCompile(`^-?\d+$`)
	uintPattern  = regexp.MustCompile(`^\d+$`)
	floatPattern = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
	uuidPattern  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)
)

// constraintPatterns maps annotation names to validation patterns.
var constraintPatterns = map[string]*regexp.Regexp{
	"int":    intPattern,
	"uint":   uintPattern,
	"float":  floatPattern,
	"uuid":   uuidPattern,
	"string": nil,
}

// Segment is one path segment spec: either a literal that must match
// exactly, or a named capture that matches a segment and binds its raw
// value for the handler.
//
// A plain capture matches any segment value. A typed capture
// additionally constrains the value's shape, so "home/{t:int}" refuses
// "home/nonexistent" structurally — the candidate fails as
// route-not-found, not as a later-stage error.
type Segment struct {
	value      string
	annotation string
	capture    bool
	constraint *regexp.Regexp // nil = unconstrained
}

// Lit creates a literal segment matched by exact string equality.
func Lit(value string) Segment {
	return Segment{value: value}
}

// Capture creates an unconstrained capture segment. It matches any
// segment value and binds it under the given name.
//
// Example:
//
//	dispatch.Capture("id") // matches "5", binds params["id"] = "5"
func Capture(name string) Segment {
	return Segment{value: name, capture: true}
}

// TypedCapture creates a capture constrained by a type annotation:
// "int", "uint", "float", "uuid", or "string" (unconstrained). Unknown
// annotations are treated as "string", keeping the annotation for
// documentation only.
//
// Example:
//
//	dispatch.TypedCapture("t", "int") // matches "5", refuses "nonexistent"
func TypedCapture(name, annotation string) Segment {
	return Segment{
		value:      name,
		annotation: annotation,
		capture:    true,
		constraint: constraintPatterns[strings.ToLower(annotation)],
	}
}

// IsCapture reports whether the segment is a capture.
func (s Segment) IsCapture() bool { return s.capture }

// Name returns the capture name, or the literal value for literal
// segments.
func (s Segment) Name() string { return s.value }

// match checks one request path segment against the spec. Pure and
// total: no side effects, never errors.
func (s Segment) match(value string) bool {
	if !s.capture {
		return s.value == value
	}
	if s.constraint != nil {
		return s.constraint.MatchString(value)
	}

	return true
}

// String renders the segment in route template form.
func (s Segment) String() string {
	if !s.capture {
		return s.value
	}
	if s.annotation != "" {
		return "{" + s.value + ":" + s.annotation + "}"
	}

	return "{" + s.value + "}"
}

// ParseSegments splits a route pattern into segment specs. Segments
// wrapped in braces are captures; a colon inside the braces separates
// the capture name from an optional type annotation.
//
//	ParseSegments("home/{t:int}") // [Lit("home"), TypedCapture("t", "int")]
//
// Leading and trailing slashes are ignored; the empty pattern (or "/")
// yields no segments and matches only the empty path.
func ParseSegments(pattern string) []Segment {
	parts := SplitPath(pattern)
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if len(part) >= 2 && part[0] == '{' && part[len(part)-1] == '}' {
			name := part[1 : len(part)-1]
			if name, annotation, ok := strings.Cut(name, ":"); ok {
				segments = append(segments, TypedCapture(name, annotation))
			} else {
				segments = append(segments, Capture(name))
			}

			continue
		}
		segments = append(segments, Lit(part))
	}

	return segments
}

// SplitPath splits a request path into its segments, dropping leading
// and trailing slashes. "/" and "" both split to no segments.
func SplitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}
