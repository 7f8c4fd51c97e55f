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

package memory

import (
	"context"
	"sync"

	"github.com/provdir/provdir/internal/credentials"
)

// CredentialStore implements credentials.Repository backed by a map.
type CredentialStore struct {
	mu      sync.RWMutex
	records map[string]*credentials.Record
}

// NewCredentialStore creates an empty in-memory credential record store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{records: make(map[string]*credentials.Record)}
}

func (s *CredentialStore) Create(ctx context.Context, record *credentials.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	s.records[record.ClientID] = &clone
	return nil
}

func (s *CredentialStore) Get(ctx context.Context, clientID string) (*credentials.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[clientID]
	if !ok {
		return nil, credentials.ErrCredentialNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *CredentialStore) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, clientID)
	return nil
}
