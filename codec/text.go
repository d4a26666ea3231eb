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
	"errors"
	"fmt"
)

// ErrTextTarget indicates that the plain-text codec was asked to decode
// into an unsupported target type.
var ErrTextTarget = errors.New("text decode target must be *string, *[]byte, or *any")

// MIMEText is the canonical content type for the plain-text codec.
const MIMEText = "text/plain"

// textCodec implements Codec for text/plain.
type textCodec struct{}

// Text returns the text/plain codec.
//
// Encoding accepts string, []byte, error, fmt.Stringer, and falls back
// to fmt.Sprint for other values. Decoding fills *string, *[]byte, or
// *any targets with the raw body.
func Text() Codec {
	return textCodec{}
}

func (textCodec) ContentType() string { return MIMEText }

func (textCodec) Marshal(v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	case error:
		return []byte(t.Error()), nil
	case fmt.Stringer:
		return []byte(t.String()), nil
	default:
		return fmt.Appendf(nil, "%v", v), nil
	}
}

func (textCodec) Unmarshal(data []byte, out any) error {
	switch t := out.(type) {
	case *string:
		*t = string(data)
	case *[]byte:
		*t = append((*t)[:0], data...)
	case *any:
		*t = string(data)
	default:
		return fmt.Errorf("%w: got %T", ErrTextTarget, out)
	}

	return nil
}
