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

package component_test

import (
	"context"
	"testing"

	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/client"
	"github.com/provdir/provdir/internal/component"
	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const componentBase = directory.DN("ou=components,o=provdir")

func newService(t *testing.T) (*component.Service, directory.Store) {
	t.Helper()
	store := memory.NewEntryStore()
	return component.NewService(store, componentBase, audit.NopLogger{}), store
}

func newTestClient(t *testing.T, store directory.Store, name string) *client.Client {
	t.Helper()
	cl := &client.Client{
		Name: name,
		DN:   directory.DN("cn=" + name + ",ou=clients,ou=acme_no,ou=organisations,o=provdir"),
	}
	entry, err := directory.NewEntry(cl)
	require.NoError(t, err)
	require.NoError(t, store.CreateEntry(context.Background(), entry))
	return cl
}

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	c := &component.Component{Name: "events", Description: "Event delivery"}
	require.NoError(t, svc.Create(ctx, c))
	assert.Equal(t, directory.DN("ou=events,ou=components,o=provdir"), c.DN)

	got, err := svc.GetByName(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, c.DN, got.DN)
	assert.Equal(t, "Event delivery", got.Description)

	_, err = svc.GetByName(ctx, "missing")
	assert.ErrorIs(t, err, component.ErrComponentNotFound)
}

func TestService_CreateExistingIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	first := &component.Component{Name: "events", Description: "original"}
	require.NoError(t, svc.Create(ctx, first))

	second := &component.Component{Name: "events", Description: "replacement"}
	require.NoError(t, svc.Create(ctx, second))

	got, err := svc.GetByName(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, "original", got.Description)
}

func TestService_SetupAdoptsExistingComponent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	existing := &component.Component{Name: "events"}
	require.NoError(t, svc.Create(ctx, existing))

	c := &component.Component{Name: "events"}
	require.NoError(t, svc.Setup(ctx, c))
	assert.Equal(t, existing.DN, c.DN)
	assert.Equal(t, existing.Name, c.Name)
}

func TestService_LinkAndUnlinkClient(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	c := &component.Component{Name: "events"}
	require.NoError(t, svc.Create(ctx, c))
	cl := newTestClient(t, store, "api")

	require.NoError(t, svc.LinkClient(ctx, c, cl))

	got, err := svc.GetByDN(ctx, c.DN)
	require.NoError(t, err)
	assert.True(t, got.HasClient(cl.DN))
	assert.True(t, cl.HasComponent(c.DN))

	// Linking again must not duplicate the membership
	require.NoError(t, svc.LinkClient(ctx, c, cl))
	got, err = svc.GetByDN(ctx, c.DN)
	require.NoError(t, err)
	assert.Len(t, got.Clients, 1)
	assert.Len(t, cl.Components, 1)

	require.NoError(t, svc.UnlinkClient(ctx, c, cl))
	got, err = svc.GetByDN(ctx, c.DN)
	require.NoError(t, err)
	assert.False(t, got.HasClient(cl.DN))
	assert.False(t, cl.HasComponent(c.DN))
}

func TestService_Delete_ClearsMemberReferences(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	c := &component.Component{Name: "events"}
	require.NoError(t, svc.Create(ctx, c))
	cl := newTestClient(t, store, "api")
	require.NoError(t, svc.LinkClient(ctx, c, cl))

	require.NoError(t, svc.Delete(ctx, c))

	_, err := svc.GetByDN(ctx, c.DN)
	assert.ErrorIs(t, err, component.ErrComponentNotFound)

	entry, err := store.GetEntry(ctx, cl.DN)
	require.NoError(t, err)
	stored := &client.Client{}
	require.NoError(t, entry.Decode(stored))
	assert.Empty(t, stored.Components)
}
