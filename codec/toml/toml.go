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

// Package toml adds application/toml support to the codec registry,
// using github.com/BurntSushi/toml for parsing.
//
// Example:
//
//	registry := codec.Default()
//	toml.Register(registry)
package toml

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/codedmart/servant/codec"
)

// MIMETOML is the canonical content type for the TOML codec.
const MIMETOML = "application/toml"

type tomlCodec struct{}

// New returns the application/toml codec.
func New() codec.Codec {
	return tomlCodec{}
}

// Register adds the TOML codec to the given registry.
func Register(r *codec.Registry) {
	r.Register(New())
}

func (tomlCodec) ContentType() string { return MIMETOML }

func (tomlCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("toml encode: %w", err)
	}

	return buf.Bytes(), nil
}

func (tomlCodec) Unmarshal(data []byte, out any) error {
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("toml decode: %w", err)
	}

	return nil
}
