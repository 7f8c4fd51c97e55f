// Copyright 2026 The Provdir Authors
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

package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretCipher_SealOpenRoundTrip(t *testing.T) {
	c, err := NewSecretCipher("test-master-secret")
	require.NoError(t, err)

	sealed, err := c.Seal("the-client-secret")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "the-client-secret")

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "the-client-secret", opened)
}

func TestSecretCipher_SealIsRandomized(t *testing.T) {
	c, err := NewSecretCipher("test-master-secret")
	require.NoError(t, err)

	a, err := c.Seal("secret")
	require.NoError(t, err)
	b, err := c.Seal("secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSecretCipher_WrongMasterSecretFails(t *testing.T) {
	c1, err := NewSecretCipher("master-one")
	require.NoError(t, err)
	c2, err := NewSecretCipher("master-two")
	require.NoError(t, err)

	sealed, err := c1.Seal("secret")
	require.NoError(t, err)

	_, err = c2.Open(sealed)
	assert.Error(t, err)
}

func TestSecretCipher_RequiresMasterSecret(t *testing.T) {
	_, err := NewSecretCipher("")
	assert.Error(t, err)
}

func TestSecretCipher_RejectsTruncatedInput(t *testing.T) {
	c, err := NewSecretCipher("test-master-secret")
	require.NoError(t, err)

	_, err = c.Open([]byte("short"))
	assert.Error(t, err)
}
