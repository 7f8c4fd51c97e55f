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

package access

import (
	"context"
	"errors"

	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/client"
	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/organisation"
)

var ErrPackageNotFound = errors.New("access package not found")

// Service provides access package management and the membership
// synchronizer. The store offers no transactions, so the synchronizer
// restores the mirrored invariant with a fixed sequence of single-entry
// writes; concurrent edits of the same entities race and the last writer
// wins. That lost-update window is accepted and not masked.
type Service struct {
	store       directory.Store
	clients     *client.Service
	auditLogger audit.Logger
}

// NewService creates a new access package service.
func NewService(store directory.Store, clients *client.Service, auditLogger audit.Logger) *Service {
	return &Service{
		store:       store,
		clients:     clients,
		auditLogger: auditLogger,
	}
}

// Add persists a new package under the organisation's access subtree and
// records the self link.
func (s *Service) Add(ctx context.Context, pkg *Package, org *organisation.Organisation) error {
	pkg.DN = org.AccessBase().Child("ou", pkg.Name)

	entry, err := directory.NewEntry(pkg)
	if err != nil {
		return err
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return err
	}

	pkg.Self = pkg.DN
	return s.update(ctx, pkg)
}

// Get returns the package with the given name under the organisation.
func (s *Service) Get(ctx context.Context, name string, org *organisation.Organisation) (*Package, error) {
	entry, err := s.store.GetEntryByUniqueName(ctx, name, org.AccessBase(), directory.KindAccessPackage)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(entry)
}

// GetByDN returns the package at dn, or ErrPackageNotFound.
func (s *Service) GetByDN(ctx context.Context, dn directory.DN) (*Package, error) {
	entry, err := s.store.GetEntry(ctx, dn)
	if errors.Is(err, directory.ErrEntryNotFound) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(entry)
}

// GetAll lists the organisation's access packages.
func (s *Service) GetAll(ctx context.Context, org *organisation.Organisation) ([]*Package, error) {
	entries, err := s.store.GetAll(ctx, org.AccessBase(), directory.KindAccessPackage)
	if err != nil {
		return nil, err
	}
	result := make([]*Package, 0, len(entries))
	for _, entry := range entries {
		pkg, err := decode(entry)
		if err != nil {
			return nil, err
		}
		result = append(result, pkg)
	}
	return result, nil
}

// Update reconciles the edited member set against the persisted one and then
// persists the package itself, last, so the member clients are already
// consistent when the new member list becomes visible.
func (s *Service) Update(ctx context.Context, pkg *Package) error {
	previous, err := s.GetByDN(ctx, pkg.DN)
	if err != nil {
		return err
	}
	if err := s.reconcile(ctx, pkg, previous.Clients); err != nil {
		return err
	}
	return s.update(ctx, pkg)
}

// reconcile brings every client affected by a membership edit back in sync
// with the package's desired member set.
//
// Clients that disappeared from the set get their package reference cleared.
// Clients that appeared get the package set as their reference; any other
// package still naming them through the client's own stale reference list is
// loaded and cleaned, which is what guarantees a client is never a forgotten
// member of a package other than its current one. Member DNs that no longer
// resolve to a client are skipped: the entry was already deleted and there is
// nothing left to unlink.
func (s *Service) reconcile(ctx context.Context, pkg *Package, previousMembers []directory.DN) error {
	previous := make(map[directory.DN]bool, len(previousMembers))
	for _, dn := range previousMembers {
		previous[dn] = true
	}

	for _, dn := range previousMembers {
		if pkg.HasClient(dn) {
			continue
		}
		cl, err := s.clients.GetByDN(ctx, dn)
		if errors.Is(err, client.ErrClientNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		cl.AccessPackage = ""
		cl.AccessPackages = nil
		if err := s.clients.Update(ctx, cl); err != nil {
			return err
		}
	}

	for _, dn := range pkg.Clients {
		cl, err := s.clients.GetByDN(ctx, dn)
		if errors.Is(err, client.ErrClientNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		if !previous[dn] {
			if err := s.removeFromStalePackages(ctx, cl, pkg.DN); err != nil {
				return err
			}
		}

		cl.AccessPackage = pkg.DN
		cl.AccessPackages = []directory.DN{pkg.DN}
		if err := s.clients.Update(ctx, cl); err != nil {
			return err
		}
	}
	return nil
}

// removeFromStalePackages drops the client from the member list of every
// package the client still references, except the one it is being linked to.
func (s *Service) removeFromStalePackages(ctx context.Context, cl *client.Client, keep directory.DN) error {
	for _, staleDN := range cl.AccessPackages {
		if staleDN == keep {
			continue
		}
		stale, err := s.GetByDN(ctx, staleDN)
		if errors.Is(err, ErrPackageNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		stale.RemoveClient(cl.DN)
		if err := s.update(ctx, stale); err != nil {
			return err
		}
	}
	if !cl.AccessPackage.IsZero() && cl.AccessPackage != keep {
		stale, err := s.GetByDN(ctx, cl.AccessPackage)
		if err == nil {
			stale.RemoveClient(cl.DN)
			if err := s.update(ctx, stale); err != nil {
				return err
			}
		} else if !errors.Is(err, ErrPackageNotFound) {
			return err
		}
	}
	return nil
}

// LinkClient is the single-edge form of the invariant restoration: it adds
// the client to the package and points the client back, persisting both
// sides immediately.
func (s *Service) LinkClient(ctx context.Context, pkg *Package, cl *client.Client) error {
	if err := s.removeFromStalePackages(ctx, cl, pkg.DN); err != nil {
		return err
	}

	pkg.AddClient(cl.DN)
	cl.AccessPackage = pkg.DN
	cl.AccessPackages = []directory.DN{pkg.DN}

	if err := s.update(ctx, pkg); err != nil {
		return err
	}
	if err := s.clients.Update(ctx, cl); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePackageLinked,
		Resource: pkg.DN.String(),
		Metadata: map[string]any{"client": cl.DN.String()},
	})
	return nil
}

// UnlinkClient removes the mirrored membership on both sides.
func (s *Service) UnlinkClient(ctx context.Context, pkg *Package, cl *client.Client) error {
	pkg.RemoveClient(cl.DN)
	cl.AccessPackage = ""
	cl.AccessPackages = nil

	if err := s.update(ctx, pkg); err != nil {
		return err
	}
	if err := s.clients.Update(ctx, cl); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePackageUnlinked,
		Resource: pkg.DN.String(),
		Metadata: map[string]any{"client": cl.DN.String()},
	})
	return nil
}

// Remove deletes the package after clearing every member's back-reference.
func (s *Service) Remove(ctx context.Context, pkg *Package) error {
	for _, dn := range pkg.Clients {
		cl, err := s.clients.GetByDN(ctx, dn)
		if errors.Is(err, client.ErrClientNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		cl.AccessPackage = ""
		cl.AccessPackages = nil
		if err := s.clients.Update(ctx, cl); err != nil {
			return err
		}
	}
	return s.store.DeleteEntry(ctx, pkg.DN)
}

func (s *Service) update(ctx context.Context, pkg *Package) error {
	entry, err := directory.NewEntry(pkg)
	if err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, entry)
}

func decode(entry *directory.Entry) (*Package, error) {
	pkg := &Package{}
	if err := entry.Decode(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}
