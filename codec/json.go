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

package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMultipleJSONValues indicates that a request body contained more
// than a single top-level JSON value.
var ErrMultipleJSONValues = errors.New("body must contain a single JSON value")

// MIMEJSON is the canonical content type for the JSON codec.
const MIMEJSON = "application/json"

// jsonCodec implements Codec for application/json.
type jsonCodec struct {
	disallowUnknown bool
}

// JSONOption configures the JSON codec.
type JSONOption func(*jsonCodec)

// WithDisallowUnknownFields makes decoding fail when the body contains
// fields not present in the target struct.
func WithDisallowUnknownFields() JSONOption {
	return func(c *jsonCodec) {
		c.disallowUnknown = true
	}
}

// JSON returns the application/json codec.
//
// Decoding rejects trailing data after the first JSON value, so bodies
// like `{}{}` fail rather than silently dropping the second value.
//
// Example:
//
//	registry := codec.NewRegistry(codec.JSON(codec.WithDisallowUnknownFields()))
func JSON(opts ...JSONOption) Codec {
	c := &jsonCodec{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *jsonCodec) ContentType() string { return MIMEJSON }

func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *jsonCodec) Unmarshal(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if c.disallowUnknown {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	// Reject trailing content after the first value.
	if dec.More() {
		return ErrMultipleJSONValues
	}
	if _, err := dec.Token(); err != io.EOF {
		return ErrMultipleJSONValues
	}

	return nil
}
