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

package provisioning_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/provdir/provdir/internal/asset"
	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/client"
	"github.com/provdir/provdir/internal/component"
	"github.com/provdir/provdir/internal/credentials"
	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/organisation"
	"github.com/provdir/provdir/internal/provisioning"
	"github.com/provdir/provdir/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store      directory.Store
	orgs       *organisation.Service
	clients    *client.Service
	components *component.Service
	workflow   *provisioning.Workflow
	org        *organisation.Organisation
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
	clients := client.NewService(store, registry, assets, hasher, audit.NopLogger{})
	components := component.NewService(store, "ou=components,o=provdir", audit.NopLogger{})

	org := &organisation.Organisation{Name: "acme_no"}
	require.NoError(t, orgs.Create(ctx, org))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		store:      store,
		orgs:       orgs,
		clients:    clients,
		components: components,
		workflow:   provisioning.NewWorkflow(orgs, clients, components, logger),
		org:        org,
	}
}

func strptr(s string) *string { return &s }

func TestWorkflow_HandleCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	reply, err := f.workflow.HandleCreate(ctx, &provisioning.ClientRequest{
		OrgID:            "acme_no",
		Name:             "api",
		Note:             strptr("managed"),
		ShortDescription: strptr("API client"),
	})
	require.NoError(t, err)

	assert.True(t, reply.Successful)
	assert.Equal(t, "api", reply.Username)
	assert.Len(t, reply.Password, 32)
	assert.NotEmpty(t, reply.ClientID)
	assert.NotEmpty(t, reply.ClientSecret)
	assert.Equal(t, "acme_no", reply.OrgID)

	cl, err := f.clients.GetBySimpleName(ctx, "api", f.org)
	require.NoError(t, err)
	assert.Equal(t, "managed", cl.Note)
	assert.Equal(t, "API client", cl.ShortDescription)
}

func TestWorkflow_HandleCreate_UnknownOrganisationSoftFails(t *testing.T) {
	f := newFixture(t)

	reply, err := f.workflow.HandleCreate(context.Background(), &provisioning.ClientRequest{
		OrgID: "nobody_no",
		Name:  "api",
	})
	require.NoError(t, err)

	assert.False(t, reply.Successful)
	assert.Equal(t, "organisation nobody_no not found", reply.ErrorMessage)
	assert.Empty(t, reply.Password)
}

func TestWorkflow_HandleCreate_RedeliveryConverges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := &provisioning.ClientRequest{OrgID: "acme_no", Name: "api"}
	first, err := f.workflow.HandleCreate(ctx, req)
	require.NoError(t, err)
	second, err := f.workflow.HandleCreate(ctx, req)
	require.NoError(t, err)

	// Same client, same credential pair, rotated password
	assert.Equal(t, first.Username, second.Username)
	assert.Equal(t, first.ClientID, second.ClientID)
	assert.NotEqual(t, first.Password, second.Password)

	all, err := f.clients.GetAll(ctx, f.org)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWorkflow_HandleCreate_LinksComponents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	comp := &component.Component{Name: "events"}
	require.NoError(t, f.components.Create(ctx, comp))

	reply, err := f.workflow.HandleCreate(ctx, &provisioning.ClientRequest{
		OrgID:      "acme_no",
		Name:       "api",
		Components: []string{"events"},
	})
	require.NoError(t, err)
	assert.True(t, reply.Successful)

	cl, err := f.clients.GetBySimpleName(ctx, "api", f.org)
	require.NoError(t, err)
	assert.True(t, cl.HasComponent(comp.DN))

	stored, err := f.components.GetByName(ctx, "events")
	require.NoError(t, err)
	assert.True(t, stored.HasClient(cl.DN))
}

func TestWorkflow_HandleCreate_UnlinksUnrequestedComponents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	events := &component.Component{Name: "events"}
	require.NoError(t, f.components.Create(ctx, events))
	billing := &component.Component{Name: "billing"}
	require.NoError(t, f.components.Create(ctx, billing))

	_, err := f.workflow.HandleCreate(ctx, &provisioning.ClientRequest{
		OrgID:      "acme_no",
		Name:       "api",
		Components: []string{"events"},
	})
	require.NoError(t, err)

	// A redelivery naming a different set replaces the membership
	_, err = f.workflow.HandleCreate(ctx, &provisioning.ClientRequest{
		OrgID:      "acme_no",
		Name:       "api",
		Components: []string{"billing"},
	})
	require.NoError(t, err)

	cl, err := f.clients.GetBySimpleName(ctx, "api", f.org)
	require.NoError(t, err)
	assert.False(t, cl.HasComponent(events.DN))
	assert.True(t, cl.HasComponent(billing.DN))

	stored, err := f.components.GetByName(ctx, "events")
	require.NoError(t, err)
	assert.False(t, stored.HasClient(cl.DN))
}

func TestWorkflow_HandleCreate_ProvisionsExistingShell(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// A client entry created without a credential pair
	shell := &client.Client{
		Name: "api",
		DN:   f.org.ClientBase().Child("cn", "api"),
	}
	entry, err := directory.NewEntry(shell)
	require.NoError(t, err)
	require.NoError(t, f.store.CreateEntry(ctx, entry))

	reply, err := f.workflow.HandleCreate(ctx, &provisioning.ClientRequest{OrgID: "acme_no", Name: "api"})
	require.NoError(t, err)
	assert.True(t, reply.Successful)
	assert.NotEmpty(t, reply.ClientID)
	assert.NotEmpty(t, reply.ClientSecret)
	assert.Equal(t, "acme_no", reply.OrgID)

	cl, err := f.clients.GetBySimpleName(ctx, "api", f.org)
	require.NoError(t, err)
	assert.Equal(t, reply.ClientID, cl.ClientID)
	assert.Equal(t, "acme.no", cl.AssetID)
}

func TestWorkflow_HandleCreate_UnknownComponentFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.HandleCreate(context.Background(), &provisioning.ClientRequest{
		OrgID:      "acme_no",
		Name:       "api",
		Components: []string{"no-such-component"},
	})
	assert.Error(t, err)
}

func TestWorkflow_HandleUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.workflow.HandleCreate(ctx, &provisioning.ClientRequest{OrgID: "acme_no", Name: "api"})
	require.NoError(t, err)

	reply, err := f.workflow.HandleUpdate(ctx, &provisioning.ClientRequest{
		OrgID: "acme_no",
		Name:  "api",
		Note:  strptr("updated"),
	})
	require.NoError(t, err)

	// The reply carries the current client id and secret but never a password
	assert.False(t, reply.Successful)
	assert.Empty(t, reply.Password)
	assert.Equal(t, "api", reply.Username)
	assert.Equal(t, created.ClientID, reply.ClientID)
	assert.Equal(t, created.ClientSecret, reply.ClientSecret)
	assert.Equal(t, "acme_no", reply.OrgID)

	cl, err := f.clients.GetBySimpleName(ctx, "api", f.org)
	require.NoError(t, err)
	assert.Equal(t, "updated", cl.Note)
}

func TestWorkflow_UpdateAndGetRepliesMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.workflow.HandleCreate(ctx, &provisioning.ClientRequest{OrgID: "acme_no", Name: "api"})
	require.NoError(t, err)

	updated, err := f.workflow.HandleUpdate(ctx, &provisioning.ClientRequest{OrgID: "acme_no", Name: "api"})
	require.NoError(t, err)
	got, err := f.workflow.HandleGet(ctx, &provisioning.ClientRequest{OrgID: "acme_no", Name: "api"})
	require.NoError(t, err)

	assert.Equal(t, got, updated)
}

func TestWorkflow_HandleUpdate_MissingClientErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.HandleUpdate(context.Background(), &provisioning.ClientRequest{
		OrgID: "acme_no",
		Name:  "missing",
	})
	assert.ErrorIs(t, err, client.ErrClientNotFound)
}

func TestWorkflow_HandleUpdate_MissingOrganisationErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.HandleUpdate(context.Background(), &provisioning.ClientRequest{
		OrgID: "nobody_no",
		Name:  "api",
	})
	assert.ErrorIs(t, err, organisation.ErrOrganisationNotFound)
}

func TestWorkflow_HandleDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.workflow.HandleCreate(ctx, &provisioning.ClientRequest{OrgID: "acme_no", Name: "api"})
	require.NoError(t, err)

	reply, err := f.workflow.HandleDelete(ctx, &provisioning.ClientRequest{OrgID: "acme_no", Name: "api"})
	require.NoError(t, err)
	assert.Equal(t, &provisioning.ClientReply{}, reply)

	_, err = f.clients.GetBySimpleName(ctx, "api", f.org)
	assert.ErrorIs(t, err, client.ErrClientNotFound)
}

func TestWorkflow_HandleDelete_MissingClientErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.HandleDelete(context.Background(), &provisioning.ClientRequest{
		OrgID: "acme_no",
		Name:  "missing",
	})
	assert.ErrorIs(t, err, client.ErrClientNotFound)
}

func TestWorkflow_HandleGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.workflow.HandleCreate(ctx, &provisioning.ClientRequest{OrgID: "acme_no", Name: "api"})
	require.NoError(t, err)

	reply, err := f.workflow.HandleGet(ctx, &provisioning.ClientRequest{OrgID: "acme_no", Name: "api"})
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, created.Username, reply.Username)
	assert.Equal(t, created.ClientID, reply.ClientID)
	assert.Equal(t, created.ClientSecret, reply.ClientSecret)
	assert.Equal(t, "acme_no", reply.OrgID)
	assert.Empty(t, reply.Password)
}

func TestWorkflow_HandleGet_AbsentClientYieldsNilReply(t *testing.T) {
	f := newFixture(t)

	reply, err := f.workflow.HandleGet(context.Background(), &provisioning.ClientRequest{
		OrgID: "acme_no",
		Name:  "missing",
	})
	require.NoError(t, err)
	assert.Nil(t, reply)
}
