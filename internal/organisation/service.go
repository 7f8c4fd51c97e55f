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

package organisation

import (
	"context"
	"errors"
	"fmt"

	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/directory"
)

var ErrOrganisationNotFound = errors.New("organisation not found")

// PrimaryAssetCreator bootstraps the organisation's primary asset. Implemented
// by the asset service; declared here so the asset package can depend on this
// one without a cycle.
type PrimaryAssetCreator interface {
	CreatePrimary(ctx context.Context, org *Organisation) (assetID string, err error)
}

// Service provides organisation management over the directory store. It owns
// the DN policy for the organisation subtree.
type Service struct {
	store       directory.Store
	base        directory.DN
	assets      PrimaryAssetCreator
	auditLogger audit.Logger
}

// NewService creates a new organisation service. base is the subtree all
// organisations live under, e.g. "ou=organisations,o=provdir".
func NewService(store directory.Store, base directory.DN, assets PrimaryAssetCreator, auditLogger audit.Logger) *Service {
	return &Service{
		store:       store,
		base:        base,
		assets:      assets,
		auditLogger: auditLogger,
	}
}

// Create persists a new organisation and bootstraps its primary asset.
func (s *Service) Create(ctx context.Context, org *Organisation) error {
	if org.Name == "" {
		return errors.New("organisation name is required")
	}

	org.DN = s.base.Child("ou", org.Name)
	entry, err := directory.NewEntry(org)
	if err != nil {
		return err
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to create organisation %q: %w", org.Name, err)
	}

	assetID, err := s.assets.CreatePrimary(ctx, org)
	if err != nil {
		return fmt.Errorf("failed to create primary asset for %q: %w", org.Name, err)
	}
	org.PrimaryAssetID = assetID
	if err := s.Update(ctx, org); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeOrganisationCreated,
		OrgID:    org.Name,
		Resource: org.DN.String(),
	})
	return nil
}

// Get returns the organisation with the given name, or ErrOrganisationNotFound.
func (s *Service) Get(ctx context.Context, name string) (*Organisation, error) {
	entry, err := s.store.GetEntryByUniqueName(ctx, name, s.base, directory.KindOrganisation)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrOrganisationNotFound
	}
	if err != nil {
		return nil, err
	}
	org := &Organisation{}
	if err := entry.Decode(org); err != nil {
		return nil, err
	}
	return org, nil
}

// GetByDN returns the organisation at dn, or ErrOrganisationNotFound.
func (s *Service) GetByDN(ctx context.Context, dn directory.DN) (*Organisation, error) {
	entry, err := s.store.GetEntry(ctx, dn)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrOrganisationNotFound
	}
	if err != nil {
		return nil, err
	}
	org := &Organisation{}
	if err := entry.Decode(org); err != nil {
		return nil, err
	}
	return org, nil
}

// GetAll lists every organisation.
func (s *Service) GetAll(ctx context.Context) ([]*Organisation, error) {
	entries, err := s.store.GetAll(ctx, s.base, directory.KindOrganisation)
	if err != nil {
		return nil, err
	}
	orgs := make([]*Organisation, 0, len(entries))
	for _, entry := range entries {
		org := &Organisation{}
		if err := entry.Decode(org); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}

// Update persists changed organisation attributes.
func (s *Service) Update(ctx context.Context, org *Organisation) error {
	entry, err := directory.NewEntry(org)
	if err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, entry)
}

// Delete removes the organisation entry. Entries below it are not cascaded;
// callers are expected to tear down clients and adapters first.
func (s *Service) Delete(ctx context.Context, org *Organisation) error {
	if err := s.store.DeleteEntry(ctx, org.DN); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeOrganisationDeleted,
		OrgID:    org.Name,
		Resource: org.DN.String(),
	})
	return nil
}
