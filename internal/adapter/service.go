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

package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/provdir/provdir/internal/asset"
	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/credentials"
	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/organisation"
)

var ErrAdapterNotFound = errors.New("adapter not found")

// Service provides adapter management. Adapters follow the client lifecycle
// for credentials but link to the organisation's primary asset on creation.
type Service struct {
	store       directory.Store
	registry    credentials.Registry
	assets      *asset.Service
	hasher      *credentials.PasswordHasher
	auditLogger audit.Logger
}

// NewService creates a new adapter service.
func NewService(store directory.Store, registry credentials.Registry, assets *asset.Service, hasher *credentials.PasswordHasher, auditLogger audit.Logger) *Service {
	return &Service{
		store:       store,
		registry:    registry,
		assets:      assets,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Create persists a new adapter under the organisation, issues its credential
// pair and links it to the organisation's primary asset on both sides.
func (s *Service) Create(ctx context.Context, a *Adapter, org *organisation.Organisation) error {
	if a.Name == "" {
		return errors.New("adapter name is required")
	}

	a.DN = org.AdapterBase().Child("cn", a.Name)

	credential, err := s.registry.Issue(ctx, credentialLabel(a.Name))
	if err != nil {
		return fmt.Errorf("failed to issue credential for adapter %q: %w", a.Name, err)
	}
	a.ClientID = credential.ClientID

	primary, err := s.assets.GetPrimary(ctx, org)
	if err != nil && !errors.Is(err, asset.ErrNoPrimaryAsset) {
		return err
	}
	if primary != nil && !a.HasAsset(primary.DN) {
		a.Assets = append(a.Assets, primary.DN)
	}

	entry, err := directory.NewEntry(a)
	if err != nil {
		return err
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to create adapter %q: %w", a.Name, err)
	}

	if primary != nil {
		if err := s.assets.LinkAdapter(ctx, primary, a.DN); err != nil {
			return err
		}
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAdapterCreated,
		OrgID:    org.Name,
		Resource: a.DN.String(),
		Metadata: map[string]any{"client_id": a.ClientID},
	})
	return nil
}

// GetBySimpleName returns the adapter with the given name under the
// organisation, or ErrAdapterNotFound.
func (s *Service) GetBySimpleName(ctx context.Context, name string, org *organisation.Organisation) (*Adapter, error) {
	entry, err := s.store.GetEntryByUniqueName(ctx, name, org.AdapterBase(), directory.KindAdapter)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrAdapterNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(entry)
}

// GetByDN returns the adapter at dn, or ErrAdapterNotFound.
func (s *Service) GetByDN(ctx context.Context, dn directory.DN) (*Adapter, error) {
	entry, err := s.store.GetEntry(ctx, dn)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrAdapterNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(entry)
}

// GetAll lists the organisation's adapters.
func (s *Service) GetAll(ctx context.Context, org *organisation.Organisation) ([]*Adapter, error) {
	entries, err := s.store.GetAll(ctx, org.AdapterBase(), directory.KindAdapter)
	if err != nil {
		return nil, err
	}
	result := make([]*Adapter, 0, len(entries))
	for _, entry := range entries {
		a, err := decode(entry)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

// Update persists changed adapter attributes.
func (s *Service) Update(ctx context.Context, a *Adapter) error {
	entry, err := directory.NewEntry(a)
	if err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, entry)
}

// Delete revokes the adapter's credential, removes the adapter from every
// asset it is linked to, then deletes the entry.
func (s *Service) Delete(ctx context.Context, a *Adapter) error {
	if a.ClientID != "" {
		if err := s.registry.Revoke(ctx, a.ClientID); err != nil {
			return fmt.Errorf("failed to revoke credential for %q: %w", a.Name, err)
		}
	}

	for _, assetDN := range a.Assets {
		if err := directory.RemoveListValue(ctx, s.store, assetDN, "adapters", a.DN.String()); err != nil {
			return err
		}
	}

	if err := s.store.DeleteEntry(ctx, a.DN); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAdapterDeleted,
		Resource: a.DN.String(),
		Metadata: map[string]any{"client_id": a.ClientID},
	})
	return nil
}

// ResetPassword replaces the adapter's password hash and persists the entry.
func (s *Service) ResetPassword(ctx context.Context, a *Adapter, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	if err := s.Update(ctx, a); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePasswordReset,
		Resource: a.DN.String(),
	})
	return nil
}

// Secret fetches the adapter's secret from the credential registry.
func (s *Service) Secret(ctx context.Context, a *Adapter) (string, error) {
	credential, err := s.registry.Fetch(ctx, a.ClientID)
	if err != nil {
		return "", err
	}
	return credential.ClientSecret, nil
}

func decode(entry *directory.Entry) (*Adapter, error) {
	a := &Adapter{}
	if err := entry.Decode(a); err != nil {
		return nil, err
	}
	return a, nil
}

func credentialLabel(name string) string {
	return "a_" + strings.NewReplacer("@", "_", ".", "_").Replace(name)
}
