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

package client_test

import (
	"context"
	"testing"

	"github.com/provdir/provdir/internal/asset"
	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/client"
	"github.com/provdir/provdir/internal/credentials"
	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/organisation"
	"github.com/provdir/provdir/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    directory.Store
	assets   *asset.Service
	registry *credentials.Service
	clients  *client.Service
	org      *organisation.Organisation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewEntryStore()
	assets := asset.NewService(store)
	orgs := organisation.NewService(store, "ou=organisations,o=provdir", assets, audit.NopLogger{})

	cipher, err := credentials.NewSecretCipher("test-master-secret")
	require.NoError(t, err)
	registry := credentials.NewService(memory.NewCredentialStore(), cipher, audit.NopLogger{})
	hasher := credentials.NewPasswordHasher(1024, 1, 1, 16, 32)

	org := &organisation.Organisation{Name: "acme_no"}
	require.NoError(t, orgs.Create(ctx, org))

	return &fixture{
		store:    store,
		assets:   assets,
		registry: registry,
		clients:  client.NewService(store, registry, assets, hasher, audit.NopLogger{}),
		org:      org,
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cl := &client.Client{Name: "api", ShortDescription: "API client"}
	require.NoError(t, f.clients.Create(ctx, cl, f.org))

	assert.Equal(t, directory.DN("cn=api,ou=clients,ou=acme_no,ou=organisations,o=provdir"), cl.DN)
	assert.Equal(t, "acme.no", cl.AssetID)
	assert.NotEmpty(t, cl.ClientID)

	// The credential pair is fetchable via the registry
	credential, err := f.registry.Fetch(ctx, cl.ClientID)
	require.NoError(t, err)
	assert.NotEmpty(t, credential.ClientSecret)

	// The primary asset lists the client as a member
	primary, err := f.assets.GetPrimary(ctx, f.org)
	require.NoError(t, err)
	assert.Contains(t, primary.Clients, cl.DN)
}

func TestService_Create_RequiresName(t *testing.T) {
	f := newFixture(t)
	err := f.clients.Create(context.Background(), &client.Client{}, f.org)
	assert.Error(t, err)
}

func TestService_GetBySimpleName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cl := &client.Client{Name: "api"}
	require.NoError(t, f.clients.Create(ctx, cl, f.org))

	got, err := f.clients.GetBySimpleName(ctx, "api", f.org)
	require.NoError(t, err)
	assert.Equal(t, cl.DN, got.DN)
	assert.Equal(t, cl.ClientID, got.ClientID)

	_, err = f.clients.GetBySimpleName(ctx, "missing", f.org)
	assert.ErrorIs(t, err, client.ErrClientNotFound)
}

func TestService_ResetPasswordAndSecret(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cl := &client.Client{Name: "api"}
	require.NoError(t, f.clients.Create(ctx, cl, f.org))

	require.NoError(t, f.clients.ResetPassword(ctx, cl, "new-password"))
	assert.NotEmpty(t, cl.PasswordHash)
	assert.NotEqual(t, "new-password", cl.PasswordHash)

	stored, err := f.clients.GetByDN(ctx, cl.DN)
	require.NoError(t, err)
	assert.Equal(t, cl.PasswordHash, stored.PasswordHash)

	secret, err := f.clients.Secret(ctx, cl)
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cl := &client.Client{Name: "api"}
	require.NoError(t, f.clients.Create(ctx, cl, f.org))

	require.NoError(t, f.clients.Delete(ctx, cl))

	_, err := f.clients.GetByDN(ctx, cl.DN)
	assert.ErrorIs(t, err, client.ErrClientNotFound)

	// The credential is revoked
	_, err = f.registry.Fetch(ctx, cl.ClientID)
	assert.ErrorIs(t, err, credentials.ErrCredentialNotFound)

	// The primary asset no longer references the client
	primary, err := f.assets.GetPrimary(ctx, f.org)
	require.NoError(t, err)
	assert.NotContains(t, primary.Clients, cl.DN)
}

func TestService_Delete_ClearsComponentMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cl := &client.Client{Name: "api"}
	require.NoError(t, f.clients.Create(ctx, cl, f.org))

	comp := &testComponent{
		Name:    "events",
		Clients: []directory.DN{cl.DN},
		DN:      directory.DN("ou=events,ou=components,o=provdir"),
	}
	entry, err := directory.NewEntry(comp)
	require.NoError(t, err)
	require.NoError(t, f.store.CreateEntry(ctx, entry))
	cl.Components = []directory.DN{comp.DN}
	require.NoError(t, f.clients.Update(ctx, cl))

	require.NoError(t, f.clients.Delete(ctx, cl))

	stored, err := f.store.GetEntry(ctx, comp.DN)
	require.NoError(t, err)
	decoded := &testComponent{}
	require.NoError(t, stored.Decode(decoded))
	assert.Empty(t, decoded.Clients)
}

type testComponent struct {
	Name    string         `json:"name"`
	Clients []directory.DN `json:"clients"`
	DN      directory.DN   `json:"-"`
}

func (c *testComponent) GetDN() directory.DN       { return c.DN }
func (c *testComponent) SetDN(dn directory.DN)     { c.DN = dn }
func (c *testComponent) EntryName() string         { return c.Name }
func (c *testComponent) EntryKind() directory.Kind { return directory.KindComponent }
