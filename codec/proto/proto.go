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

// Package proto adds application/x-protobuf support to the codec
// registry, using google.golang.org/protobuf.
//
// Unlike the other codecs, protobuf requires both encode and decode
// targets to implement proto.Message; other values produce an error.
//
// Example:
//
//	registry := codec.Default()
//	proto.Register(registry)
package proto

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/codedmart/servant/codec"
)

// MIMEProtobuf is the canonical content type for the protobuf codec.
const MIMEProtobuf = "application/x-protobuf"

// ErrNotProtoMessage indicates that a value handed to the protobuf
// codec does not implement proto.Message.
var ErrNotProtoMessage = errors.New("value does not implement proto.Message")

type protoCodec struct{}

// New returns the application/x-protobuf codec.
func New() codec.Codec {
	return protoCodec{}
}

// Register adds the protobuf codec to the given registry.
func Register(r *codec.Registry) {
	r.Register(New())
}

func (protoCodec) ContentType() string { return MIMEProtobuf }

func (protoCodec) Marshal(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotProtoMessage, v)
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("proto encode: %w", err)
	}

	return data, nil
}

func (protoCodec) Unmarshal(data []byte, out any) error {
	msg, ok := out.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrNotProtoMessage, out)
	}

	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("proto decode: %w", err)
	}

	return nil
}
