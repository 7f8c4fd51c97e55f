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

package asset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/organisation"
)

var (
	ErrAssetNotFound  = errors.New("asset not found")
	ErrNoPrimaryAsset = errors.New("organisation has no primary asset")
)

// Service provides asset management under an organisation's asset subtree.
type Service struct {
	store directory.Store
}

// NewService creates a new asset service.
func NewService(store directory.Store) *Service {
	return &Service{store: store}
}

// CreatePrimary creates the organisation's primary asset and returns its
// asset id. The id is the organisation name in dotted form ("acme_no" owns
// "acme.no"). Implements organisation.PrimaryAssetCreator.
func (s *Service) CreatePrimary(ctx context.Context, org *organisation.Organisation) (string, error) {
	asset := &Asset{
		AssetID:     strings.ReplaceAll(org.Name, "_", "."),
		Name:        org.Name,
		Description: fmt.Sprintf("Primary asset for %s", org.Name),
		Primary:     true,
	}
	asset.DN = org.AssetBase().Child("ou", asset.AssetID)

	entry, err := directory.NewEntry(asset)
	if err != nil {
		return "", err
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return "", err
	}
	return asset.AssetID, nil
}

// GetPrimary returns the organisation's primary asset.
func (s *Service) GetPrimary(ctx context.Context, org *organisation.Organisation) (*Asset, error) {
	assets, err := s.GetAll(ctx, org)
	if err != nil {
		return nil, err
	}
	for _, asset := range assets {
		if asset.Primary {
			return asset, nil
		}
	}
	return nil, ErrNoPrimaryAsset
}

// Get returns the asset with the given id under the organisation.
func (s *Service) Get(ctx context.Context, assetID string, org *organisation.Organisation) (*Asset, error) {
	entry, err := s.store.GetEntryByUniqueName(ctx, assetID, org.AssetBase(), directory.KindAsset)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	asset := &Asset{}
	if err := entry.Decode(asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// GetAll lists the organisation's assets.
func (s *Service) GetAll(ctx context.Context, org *organisation.Organisation) ([]*Asset, error) {
	entries, err := s.store.GetAll(ctx, org.AssetBase(), directory.KindAsset)
	if err != nil {
		return nil, err
	}
	assets := make([]*Asset, 0, len(entries))
	for _, entry := range entries {
		asset := &Asset{}
		if err := entry.Decode(asset); err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// Update persists changed asset attributes.
func (s *Service) Update(ctx context.Context, asset *Asset) error {
	entry, err := directory.NewEntry(asset)
	if err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, entry)
}

// LinkAdapter records an adapter on the asset's member list. The adapter side
// of the link is maintained by the adapter service.
func (s *Service) LinkAdapter(ctx context.Context, asset *Asset, adapterDN directory.DN) error {
	asset.Adapters = appendDN(asset.Adapters, adapterDN)
	return s.Update(ctx, asset)
}

// LinkClient records a client on the asset's member list.
func (s *Service) LinkClient(ctx context.Context, asset *Asset, clientDN directory.DN) error {
	asset.Clients = appendDN(asset.Clients, clientDN)
	return s.Update(ctx, asset)
}

// UnlinkFromAll drops every reference to the given DN from the assets under
// assetBase. Used when a client or adapter entry is deleted.
func (s *Service) UnlinkFromAll(ctx context.Context, assetBase directory.DN, ref directory.DN) error {
	entries, err := s.store.GetAll(ctx, assetBase, directory.KindAsset)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := directory.RemoveListValue(ctx, s.store, entry.DN, "adapters", ref.String()); err != nil {
			return err
		}
		if err := directory.RemoveListValue(ctx, s.store, entry.DN, "clients", ref.String()); err != nil {
			return err
		}
	}
	return nil
}

func appendDN(list []directory.DN, dn directory.DN) []directory.DN {
	for _, existing := range list {
		if existing == dn {
			return list
		}
	}
	return append(list, dn)
}
