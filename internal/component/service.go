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

package component

import (
	"context"
	"errors"
	"fmt"

	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/client"
	"github.com/provdir/provdir/internal/directory"
)

var ErrComponentNotFound = errors.New("component not found")

// Service provides component management and the client-component side of the
// mirrored membership relation. Components live under a flat base shared by
// all organisations.
type Service struct {
	store       directory.Store
	base        directory.DN
	auditLogger audit.Logger
}

// NewService creates a new component service. base is the subtree components
// live under, e.g. "ou=components,o=provdir".
func NewService(store directory.Store, base directory.DN, auditLogger audit.Logger) *Service {
	return &Service{
		store:       store,
		base:        base,
		auditLogger: auditLogger,
	}
}

// Setup assigns the component's DN: a component that already exists under the
// base keeps its stored DN and canonical name, a new one gets a fresh DN.
func (s *Service) Setup(ctx context.Context, c *Component) error {
	existing, err := s.GetByName(ctx, c.Name)
	if errors.Is(err, ErrComponentNotFound) {
		c.DN = s.base.Child("ou", c.Name)
		return nil
	}
	if err != nil {
		return err
	}
	c.DN = existing.DN
	c.Name = existing.Name
	return nil
}

// Create persists a new component, keeping an existing one untouched.
func (s *Service) Create(ctx context.Context, c *Component) error {
	if err := s.Setup(ctx, c); err != nil {
		return err
	}
	entry, err := directory.NewEntry(c)
	if err != nil {
		return err
	}
	err = s.store.CreateEntry(ctx, entry)
	if errors.Is(err, directory.ErrEntryExists) {
		return nil
	}
	return err
}

// GetByName returns the component with the given logical name, or
// ErrComponentNotFound.
func (s *Service) GetByName(ctx context.Context, name string) (*Component, error) {
	entry, err := s.store.GetEntryByUniqueName(ctx, name, s.base, directory.KindComponent)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrComponentNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(entry)
}

// GetByDN returns the component at dn, or ErrComponentNotFound.
func (s *Service) GetByDN(ctx context.Context, dn directory.DN) (*Component, error) {
	entry, err := s.store.GetEntry(ctx, dn)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrComponentNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(entry)
}

// GetAll lists every component.
func (s *Service) GetAll(ctx context.Context) ([]*Component, error) {
	entries, err := s.store.GetAll(ctx, s.base, directory.KindComponent)
	if err != nil {
		return nil, err
	}
	result := make([]*Component, 0, len(entries))
	for _, entry := range entries {
		c, err := decode(entry)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// Update persists changed component attributes.
func (s *Service) Update(ctx context.Context, c *Component) error {
	entry, err := directory.NewEntry(c)
	if err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, entry)
}

// Delete removes the component entry after clearing the membership reference
// on every member client.
func (s *Service) Delete(ctx context.Context, c *Component) error {
	for _, clientDN := range c.Clients {
		if err := directory.RemoveListValue(ctx, s.store, clientDN, "components", c.DN.String()); err != nil {
			return err
		}
	}
	return s.store.DeleteEntry(ctx, c.DN)
}

// LinkClient adds the client to the component's member list and the component
// to the client's membership list, persisting both sides.
func (s *Service) LinkClient(ctx context.Context, c *Component, cl *client.Client) error {
	if !c.HasClient(cl.DN) {
		c.Clients = append(c.Clients, cl.DN)
	}
	if !cl.HasComponent(c.DN) {
		cl.Components = append(cl.Components, c.DN)
	}

	if err := s.Update(ctx, c); err != nil {
		return err
	}
	if err := s.persistClient(ctx, cl); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeComponentLinked,
		Resource: c.DN.String(),
		Metadata: map[string]any{"client": cl.DN.String()},
	})
	return nil
}

// UnlinkClient removes the mirrored membership references on both sides. The
// client DN is dropped from the component's member list only once the client
// no longer lists the component.
func (s *Service) UnlinkClient(ctx context.Context, c *Component, cl *client.Client) error {
	kept := cl.Components[:0]
	for _, dn := range cl.Components {
		if dn != c.DN {
			kept = append(kept, dn)
		}
	}
	cl.Components = kept

	if !cl.HasComponent(c.DN) {
		members := c.Clients[:0]
		for _, dn := range c.Clients {
			if dn != cl.DN {
				members = append(members, dn)
			}
		}
		c.Clients = members
	}

	if err := s.persistClient(ctx, cl); err != nil {
		return err
	}
	if err := s.Update(ctx, c); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeComponentUnlinked,
		Resource: c.DN.String(),
		Metadata: map[string]any{"client": cl.DN.String()},
	})
	return nil
}

func (s *Service) persistClient(ctx context.Context, cl *client.Client) error {
	entry, err := directory.NewEntry(cl)
	if err != nil {
		return err
	}
	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist client %s: %w", cl.DN, err)
	}
	return nil
}

func decode(entry *directory.Entry) (*Component, error) {
	c := &Component{}
	if err := entry.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}
