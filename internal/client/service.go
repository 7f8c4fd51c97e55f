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

package client

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

var ErrClientNotFound = errors.New("client not found")

// Service provides client management: directory CRUD, credential issuance
// and password resets. It owns the DN policy for the client subtree.
type Service struct {
	store       directory.Store
	registry    credentials.Registry
	assets      *asset.Service
	hasher      *credentials.PasswordHasher
	auditLogger audit.Logger
}

// NewService creates a new client service.
func NewService(store directory.Store, registry credentials.Registry, assets *asset.Service, hasher *credentials.PasswordHasher, auditLogger audit.Logger) *Service {
	return &Service{
		store:       store,
		registry:    registry,
		assets:      assets,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Create persists a new client under the organisation: assigns its DN, issues
// a credential pair, inherits the primary asset id and links the client to
// the primary asset. The writes are sequential and non-transactional; a
// failure mid-way leaves the earlier writes committed.
func (s *Service) Create(ctx context.Context, c *Client, org *organisation.Organisation) error {
	if c.Name == "" {
		return errors.New("client name is required")
	}

	c.DN = org.ClientBase().Child("cn", c.Name)

	credential, err := s.registry.Issue(ctx, credentialLabel(c.Name, org.Name))
	if err != nil {
		return fmt.Errorf("failed to issue credential for client %q: %w", c.Name, err)
	}
	c.ClientID = credential.ClientID

	primary, err := s.assets.GetPrimary(ctx, org)
	if err != nil && !errors.Is(err, asset.ErrNoPrimaryAsset) {
		return err
	}
	if primary != nil {
		c.AssetID = primary.AssetID
	}

	entry, err := directory.NewEntry(c)
	if err != nil {
		return err
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to create client %q: %w", c.Name, err)
	}

	if primary != nil {
		if err := s.assets.LinkClient(ctx, primary, c.DN); err != nil {
			return err
		}
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeClientCreated,
		OrgID:    org.Name,
		Resource: c.DN.String(),
		Metadata: map[string]any{"client_id": c.ClientID},
	})
	return nil
}

// Provision issues a credential pair for a client entry that exists without
// one and persists the client. Used when a client shell was created ahead of
// its first provisioning request.
func (s *Service) Provision(ctx context.Context, c *Client, org *organisation.Organisation) error {
	credential, err := s.registry.Issue(ctx, credentialLabel(c.Name, org.Name))
	if err != nil {
		return fmt.Errorf("failed to issue credential for client %q: %w", c.Name, err)
	}
	c.ClientID = credential.ClientID

	var primary *asset.Asset
	if c.AssetID == "" {
		primary, err = s.assets.GetPrimary(ctx, org)
		if err != nil && !errors.Is(err, asset.ErrNoPrimaryAsset) {
			return err
		}
		if primary != nil {
			c.AssetID = primary.AssetID
		}
	}

	if err := s.Update(ctx, c); err != nil {
		return err
	}
	if primary != nil {
		if err := s.assets.LinkClient(ctx, primary, c.DN); err != nil {
			return err
		}
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeClientCreated,
		OrgID:    org.Name,
		Resource: c.DN.String(),
		Metadata: map[string]any{"client_id": c.ClientID},
	})
	return nil
}

// GetBySimpleName returns the client with the given name under the
// organisation, or ErrClientNotFound.
func (s *Service) GetBySimpleName(ctx context.Context, name string, org *organisation.Organisation) (*Client, error) {
	entry, err := s.store.GetEntryByUniqueName(ctx, name, org.ClientBase(), directory.KindClient)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(entry)
}

// GetByDN returns the client at dn, or ErrClientNotFound.
func (s *Service) GetByDN(ctx context.Context, dn directory.DN) (*Client, error) {
	entry, err := s.store.GetEntry(ctx, dn)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(entry)
}

// GetAll lists the organisation's clients.
func (s *Service) GetAll(ctx context.Context, org *organisation.Organisation) ([]*Client, error) {
	entries, err := s.store.GetAll(ctx, org.ClientBase(), directory.KindClient)
	if err != nil {
		return nil, err
	}
	result := make([]*Client, 0, len(entries))
	for _, entry := range entries {
		c, err := decode(entry)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// Update persists changed client attributes.
func (s *Service) Update(ctx context.Context, c *Client) error {
	entry, err := directory.NewEntry(c)
	if err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, entry)
}

// Delete revokes the client's credential, cleans up every back-reference held
// by components, access packages and assets, then deletes the entry.
// Revocation comes first so a partial failure can never leave a live
// credential pointing at a deleted entry; the inverse orphan (a revoked
// credential with a surviving entry) is repaired by retrying.
func (s *Service) Delete(ctx context.Context, c *Client) error {
	if c.ClientID != "" {
		if err := s.registry.Revoke(ctx, c.ClientID); err != nil {
			return fmt.Errorf("failed to revoke credential for %q: %w", c.Name, err)
		}
	}

	ref := c.DN.String()
	for _, componentDN := range c.Components {
		if err := directory.RemoveListValue(ctx, s.store, componentDN, "clients", ref); err != nil {
			return err
		}
	}
	for _, packageDN := range packageRefs(c) {
		if err := directory.RemoveListValue(ctx, s.store, packageDN, "clients", ref); err != nil {
			return err
		}
	}

	// The organisation DN sits two levels above cn=<name>,ou=clients.
	orgDN := c.DN.Parent().Parent()
	if !orgDN.IsZero() {
		if err := s.assets.UnlinkFromAll(ctx, orgDN.Child("ou", "assets"), c.DN); err != nil {
			return err
		}
	}

	if err := s.store.DeleteEntry(ctx, c.DN); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeClientDeleted,
		Resource: c.DN.String(),
		Metadata: map[string]any{"client_id": c.ClientID},
	})
	return nil
}

// ResetPassword replaces the client's password hash and persists the entry.
func (s *Service) ResetPassword(ctx context.Context, c *Client, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	if err := s.Update(ctx, c); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePasswordReset,
		Resource: c.DN.String(),
	})
	return nil
}

// Secret fetches the client's secret from the credential registry.
func (s *Service) Secret(ctx context.Context, c *Client) (string, error) {
	credential, err := s.registry.Fetch(ctx, c.ClientID)
	if err != nil {
		return "", err
	}
	return credential.ClientSecret, nil
}

func decode(entry *directory.Entry) (*Client, error) {
	c := &Client{}
	if err := entry.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

// packageRefs collects the current and any stale package DNs without
// duplicates.
func packageRefs(c *Client) []directory.DN {
	refs := make([]directory.DN, 0, len(c.AccessPackages)+1)
	seen := make(map[directory.DN]bool)
	if !c.AccessPackage.IsZero() {
		refs = append(refs, c.AccessPackage)
		seen[c.AccessPackage] = true
	}
	for _, dn := range c.AccessPackages {
		if !seen[dn] {
			refs = append(refs, dn)
			seen[dn] = true
		}
	}
	return refs
}

func credentialLabel(clientName, orgName string) string {
	sanitize := strings.NewReplacer("@", "_", ".", "_")
	return fmt.Sprintf("c_%s@%s", sanitize.Replace(clientName), sanitize.Replace(orgName))
}
