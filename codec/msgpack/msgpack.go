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

// Package msgpack adds application/msgpack support to the codec
// registry, using github.com/vmihailenco/msgpack/v5.
//
// MessagePack is a compact binary alternative to JSON, useful for
// service-to-service APIs where payload size matters.
//
// Example:
//
//	registry := codec.Default()
//	msgpack.Register(registry)
package msgpack

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/codedmart/servant/codec"
)

// MIMEMsgpack is the canonical content type for the MessagePack codec.
const MIMEMsgpack = "application/msgpack"

type msgpackCodec struct{}

// New returns the application/msgpack codec.
func New() codec.Codec {
	return msgpackCodec{}
}

// Register adds the MessagePack codec to the given registry.
func Register(r *codec.Registry) {
	r.Register(New())
}

func (msgpackCodec) ContentType() string { return MIMEMsgpack }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("msgpack encode: %w", err)
	}

	return data, nil
}

func (msgpackCodec) Unmarshal(data []byte, out any) error {
	if err := msgpack.Unmarshal(data, out); err != nil {
		return fmt.Errorf("msgpack decode: %w", err)
	}

	return nil
}
