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

package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrEntryNotFound = errors.New("directory entry not found")
	ErrEntryExists   = errors.New("directory entry already exists")
)

// Kind identifies the entity type stored in an entry. Lookups are scoped by
// kind so that entities of different types can never shadow each other.
type Kind string

const (
	KindOrganisation  Kind = "organisation"
	KindClient        Kind = "client"
	KindAccessPackage Kind = "access-package"
	KindComponent     Kind = "component"
	KindAdapter       Kind = "adapter"
	KindAsset         Kind = "asset"
	KindContact       Kind = "contact"
)

// Entry is the raw persisted form of a directory object: its DN, kind, the
// name that is unique within its subtree, and a JSON attribute payload. The
// store has no knowledge of entity semantics beyond this shape, and it offers
// no multi-entry transactions.
type Entry struct {
	DN         DN
	Kind       Kind
	Name       string
	Attributes []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Object is implemented by every entity persisted in the directory. The DN is
// carried outside the attribute payload; services assign it once at creation
// time according to their own DN policy.
type Object interface {
	GetDN() DN
	SetDN(DN)
	EntryName() string
	EntryKind() Kind
}

// Store is the contract the directory layer requires from the backing entry
// store. Implementations are externally synchronized shared resources: two
// concurrent writers to the same DN race and the last write wins.
type Store interface {
	// GetEntry returns the entry at dn, or ErrEntryNotFound.
	GetEntry(ctx context.Context, dn DN) (*Entry, error)

	// GetEntryByUniqueName returns the entry of the given kind whose name
	// attribute equals name within the subtree rooted at base, or
	// ErrEntryNotFound.
	GetEntryByUniqueName(ctx context.Context, name string, base DN, kind Kind) (*Entry, error)

	// GetAll lists every entry of the given kind in the subtree rooted at
	// base.
	GetAll(ctx context.Context, base DN, kind Kind) ([]*Entry, error)

	// CreateEntry persists a new entry. Returns ErrEntryExists if the DN is
	// taken.
	CreateEntry(ctx context.Context, entry *Entry) error

	// UpdateEntry replaces the attributes of an existing entry.
	UpdateEntry(ctx context.Context, entry *Entry) error

	// DeleteEntry removes the entry at dn. Deleting an absent entry is not an
	// error. Back-references held by other entries are not cascaded; the
	// deleting operation is responsible for cleaning them up.
	DeleteEntry(ctx context.Context, dn DN) error
}

// NewEntry serializes obj into a storable entry. The object's DN must already
// be assigned.
func NewEntry(obj Object) (*Entry, error) {
	if obj.GetDN().IsZero() {
		return nil, fmt.Errorf("cannot build entry for %q: no DN assigned", obj.EntryName())
	}
	attrs, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal entry attributes: %w", err)
	}
	return &Entry{
		DN:         obj.GetDN(),
		Kind:       obj.EntryKind(),
		Name:       obj.EntryName(),
		Attributes: attrs,
	}, nil
}

// Decode unmarshals the entry's attributes into obj and restores its DN.
func (e *Entry) Decode(obj Object) error {
	if err := json.Unmarshal(e.Attributes, obj); err != nil {
		return fmt.Errorf("decode %s entry %s: %w", e.Kind, e.DN, err)
	}
	obj.SetDN(e.DN)
	return nil
}

// RemoveListValue loads the entry at dn, removes value from the named JSON
// list attribute and persists the entry. A missing entry or an attribute that
// does not contain the value is a no-op: the reference was already cleaned up.
// This is the attribute-level edit used to drop dangling back-references
// without the caller knowing the full entity shape.
func RemoveListValue(ctx context.Context, store Store, dn DN, attr, value string) error {
	entry, err := store.GetEntry(ctx, dn)
	if errors.Is(err, ErrEntryNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(entry.Attributes, &attrs); err != nil {
		return fmt.Errorf("decode entry %s: %w", dn, err)
	}
	raw, ok := attrs[attr]
	if !ok {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("attribute %q of %s is not a list: %w", attr, dn, err)
	}

	kept := values[:0]
	for _, v := range values {
		if v != value {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(values) {
		return nil
	}

	updated, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	attrs[attr] = updated
	entry.Attributes, err = json.Marshal(attrs)
	if err != nil {
		return err
	}
	return store.UpdateEntry(ctx, entry)
}
