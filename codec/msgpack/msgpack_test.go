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

package msgpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codedmart/servant/codec"
)

type payload struct {
	Name  string `msgpack:"name"`
	Count int    `msgpack:"count"`
}

func TestMsgpackRoundTrip(t *testing.T) {
	t.Parallel()

	c := New()
	assert.Equal(t, MIMEMsgpack, c.ContentType())

	data, err := c.Marshal(payload{Name: "order", Count: 3})
	require.NoError(t, err)

	var out payload
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, payload{Name: "order", Count: 3}, out)
}

func TestMsgpackDecodeError(t *testing.T) {
	t.Parallel()

	var out payload
	// 0xc1 is the one byte the MessagePack spec reserves as never used.
	assert.Error(t, New().Unmarshal([]byte{0xc1}, &out))
}

func TestMsgpackRegister(t *testing.T) {
	t.Parallel()

	registry := codec.Default()
	Register(registry)

	_, ok := registry.Lookup(MIMEMsgpack)
	assert.True(t, ok)
}
