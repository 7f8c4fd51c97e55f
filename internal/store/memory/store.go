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

// Package memory provides in-memory implementations of the directory store
// and the credential record store. Used for local development and tests;
// everything is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/provdir/provdir/internal/directory"
)

// EntryStore implements directory.Store backed by a map.
type EntryStore struct {
	mu      sync.RWMutex
	entries map[directory.DN]*directory.Entry
}

// NewEntryStore creates an empty in-memory entry store.
func NewEntryStore() *EntryStore {
	return &EntryStore{entries: make(map[directory.DN]*directory.Entry)}
}

func (s *EntryStore) GetEntry(ctx context.Context, dn directory.DN) (*directory.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[dn]
	if !ok {
		return nil, directory.ErrEntryNotFound
	}
	return cloneEntry(entry), nil
}

func (s *EntryStore) GetEntryByUniqueName(ctx context.Context, name string, base directory.DN, kind directory.Kind) (*directory.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.Kind == kind && entry.Name == name && entry.DN.Under(base) {
			return cloneEntry(entry), nil
		}
	}
	return nil, directory.ErrEntryNotFound
}

func (s *EntryStore) GetAll(ctx context.Context, base directory.DN, kind directory.Kind) ([]*directory.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*directory.Entry
	for _, entry := range s.entries {
		if entry.Kind == kind && entry.DN.Under(base) {
			result = append(result, cloneEntry(entry))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DN < result[j].DN })
	return result, nil
}

func (s *EntryStore) CreateEntry(ctx context.Context, entry *directory.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.DN]; ok {
		return directory.ErrEntryExists
	}
	stored := cloneEntry(entry)
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.entries[entry.DN] = stored
	return nil
}

func (s *EntryStore) UpdateEntry(ctx context.Context, entry *directory.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[entry.DN]
	if !ok {
		return directory.ErrEntryNotFound
	}
	stored := cloneEntry(entry)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	s.entries[entry.DN] = stored
	return nil
}

func (s *EntryStore) DeleteEntry(ctx context.Context, dn directory.DN) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, dn)
	return nil
}

func cloneEntry(e *directory.Entry) *directory.Entry {
	clone := *e
	clone.Attributes = append([]byte(nil), e.Attributes...)
	return &clone
}
