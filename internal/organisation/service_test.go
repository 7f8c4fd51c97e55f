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

package organisation_test

import (
	"context"
	"testing"

	"github.com/provdir/provdir/internal/asset"
	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/organisation"
	"github.com/provdir/provdir/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T) (*organisation.Service, *asset.Service) {
	t.Helper()
	store := memory.NewEntryStore()
	assets := asset.NewService(store)
	orgs := organisation.NewService(store, "ou=organisations,o=provdir", assets, audit.NopLogger{})
	return orgs, assets
}

func TestService_Create_BootstrapsPrimaryAsset(t *testing.T) {
	ctx := context.Background()
	orgs, assets := newServices(t)

	org := &organisation.Organisation{Name: "acme_no", DisplayName: "Acme", OrgNumber: "987654321"}
	require.NoError(t, orgs.Create(ctx, org))

	assert.Equal(t, directory.DN("ou=acme_no,ou=organisations,o=provdir"), org.DN)
	assert.Equal(t, "acme.no", org.PrimaryAssetID)

	primary, err := assets.GetPrimary(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, "acme.no", primary.AssetID)
	assert.True(t, primary.Primary)
	assert.Equal(t, directory.DN("ou=acme.no,ou=assets,ou=acme_no,ou=organisations,o=provdir"), primary.DN)
}

func TestService_Create_RequiresName(t *testing.T) {
	orgs, _ := newServices(t)
	err := orgs.Create(context.Background(), &organisation.Organisation{})
	assert.Error(t, err)
}

func TestService_GetAndGetByDN(t *testing.T) {
	ctx := context.Background()
	orgs, _ := newServices(t)

	org := &organisation.Organisation{Name: "acme_no"}
	require.NoError(t, orgs.Create(ctx, org))

	got, err := orgs.Get(ctx, "acme_no")
	require.NoError(t, err)
	assert.Equal(t, org.DN, got.DN)
	assert.Equal(t, "acme.no", got.PrimaryAssetID)

	byDN, err := orgs.GetByDN(ctx, org.DN)
	require.NoError(t, err)
	assert.Equal(t, got.Name, byDN.Name)

	_, err = orgs.Get(ctx, "missing_no")
	assert.ErrorIs(t, err, organisation.ErrOrganisationNotFound)
}

func TestService_GetAll(t *testing.T) {
	ctx := context.Background()
	orgs, _ := newServices(t)

	require.NoError(t, orgs.Create(ctx, &organisation.Organisation{Name: "acme_no"}))
	require.NoError(t, orgs.Create(ctx, &organisation.Organisation{Name: "globex_com"}))

	all, err := orgs.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	orgs, _ := newServices(t)

	org := &organisation.Organisation{Name: "acme_no"}
	require.NoError(t, orgs.Create(ctx, org))

	org.DisplayName = "Acme Norway"
	require.NoError(t, orgs.Update(ctx, org))

	got, err := orgs.Get(ctx, "acme_no")
	require.NoError(t, err)
	assert.Equal(t, "Acme Norway", got.DisplayName)

	require.NoError(t, orgs.Delete(ctx, org))
	_, err = orgs.Get(ctx, "acme_no")
	assert.ErrorIs(t, err, organisation.ErrOrganisationNotFound)
}
