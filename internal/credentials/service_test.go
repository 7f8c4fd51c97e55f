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

package credentials_test

import (
	"context"
	"testing"

	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/credentials"
	"github.com/provdir/provdir/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *credentials.Service {
	t.Helper()
	cipher, err := credentials.NewSecretCipher("test-master-secret")
	require.NoError(t, err)
	return credentials.NewService(memory.NewCredentialStore(), cipher, audit.NopLogger{})
}

func TestRegistry_IssueAndFetch(t *testing.T) {
	ctx := context.Background()
	registry := newRegistry(t)

	issued, err := registry.Issue(ctx, "c_api@acme_no")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ClientID)
	assert.NotEmpty(t, issued.ClientSecret)

	fetched, err := registry.Fetch(ctx, issued.ClientID)
	require.NoError(t, err)
	assert.Equal(t, issued.ClientSecret, fetched.ClientSecret)
}

func TestRegistry_IssueRequiresLabel(t *testing.T) {
	registry := newRegistry(t)

	_, err := registry.Issue(context.Background(), "")
	assert.Error(t, err)
}

func TestRegistry_IssuedPairsAreUnique(t *testing.T) {
	ctx := context.Background()
	registry := newRegistry(t)

	a, err := registry.Issue(ctx, "c_one@acme_no")
	require.NoError(t, err)
	b, err := registry.Issue(ctx, "c_two@acme_no")
	require.NoError(t, err)

	assert.NotEqual(t, a.ClientID, b.ClientID)
	assert.NotEqual(t, a.ClientSecret, b.ClientSecret)
}

func TestRegistry_Revoke(t *testing.T) {
	ctx := context.Background()
	registry := newRegistry(t)

	issued, err := registry.Issue(ctx, "c_api@acme_no")
	require.NoError(t, err)

	require.NoError(t, registry.Revoke(ctx, issued.ClientID))

	_, err = registry.Fetch(ctx, issued.ClientID)
	assert.ErrorIs(t, err, credentials.ErrCredentialNotFound)
}
