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

package contact

import (
	"context"
	"errors"

	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/directory"
)

var ErrContactNotFound = errors.New("contact not found")

// Service provides contact management under a flat base shared by all
// organisations.
type Service struct {
	store       directory.Store
	base        directory.DN
	auditLogger audit.Logger
}

// NewService creates a new contact service. base is the subtree contacts live
// under, e.g. "ou=contacts,o=provdir".
func NewService(store directory.Store, base directory.DN, auditLogger audit.Logger) *Service {
	return &Service{
		store:       store,
		base:        base,
		auditLogger: auditLogger,
	}
}

// Create persists a new contact keyed by its national identity number.
func (s *Service) Create(ctx context.Context, c *Contact) error {
	if c.NIN == "" {
		return errors.New("contact nin is required")
	}

	c.DN = s.base.Child("cn", c.NIN)

	entry, err := directory.NewEntry(c)
	if err != nil {
		return err
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeContactCreated,
		Resource: c.DN.String(),
	})
	return nil
}

// Get returns the contact with the given national identity number.
func (s *Service) Get(ctx context.Context, nin string) (*Contact, error) {
	entry, err := s.store.GetEntry(ctx, s.base.Child("cn", nin))
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(entry)
}

// GetAll lists every contact.
func (s *Service) GetAll(ctx context.Context) ([]*Contact, error) {
	entries, err := s.store.GetAll(ctx, s.base, directory.KindContact)
	if err != nil {
		return nil, err
	}
	result := make([]*Contact, 0, len(entries))
	for _, entry := range entries {
		c, err := decode(entry)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// Update persists changed contact attributes.
func (s *Service) Update(ctx context.Context, c *Contact) error {
	entry, err := directory.NewEntry(c)
	if err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, entry)
}

// Delete removes the contact entry.
func (s *Service) Delete(ctx context.Context, c *Contact) error {
	return s.store.DeleteEntry(ctx, c.DN)
}

// AddRole grants the role if the contact does not already carry it.
func (s *Service) AddRole(ctx context.Context, c *Contact, role string) error {
	if c.HasRole(role) {
		return nil
	}
	c.Roles = append(c.Roles, role)
	return s.Update(ctx, c)
}

// RemoveRole revokes the role.
func (s *Service) RemoveRole(ctx context.Context, c *Contact, role string) error {
	kept := c.Roles[:0]
	for _, r := range c.Roles {
		if r != role {
			kept = append(kept, r)
		}
	}
	c.Roles = kept
	return s.Update(ctx, c)
}

func decode(entry *directory.Entry) (*Contact, error) {
	c := &Contact{}
	if err := entry.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}
