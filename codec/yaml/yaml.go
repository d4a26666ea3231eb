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

// Package yaml adds application/yaml support to the codec registry,
// using gopkg.in/yaml.v3 for parsing.
//
// Example:
//
//	registry := codec.Default()
//	yaml.Register(registry)
package yaml

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/codedmart/servant/codec"
)

// MIMEYAML is the canonical content type for the YAML codec.
const MIMEYAML = "application/yaml"

// Option configures the YAML codec.
type Option func(*yamlCodec)

// WithStrict enables strict parsing: unknown fields in the body cause a
// decode error.
func WithStrict() Option {
	return func(c *yamlCodec) {
		c.strict = true
	}
}

type yamlCodec struct {
	strict bool
}

// New returns the application/yaml codec.
func New(opts ...Option) codec.Codec {
	c := &yamlCodec{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Register adds the YAML codec to the given registry.
func Register(r *codec.Registry, opts ...Option) {
	r.Register(New(opts...))
}

func (c *yamlCodec) ContentType() string { return MIMEYAML }

func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (c *yamlCodec) Unmarshal(data []byte, out any) error {
	if c.strict {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("yaml decode: %w", err)
		}

		return nil
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}

	return nil
}
