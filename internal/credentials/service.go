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

package credentials

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/provdir/provdir/internal/audit"
)

// Service implements Registry on top of a record repository, encrypting
// secrets with a SecretCipher.
type Service struct {
	repo        Repository
	cipher      *SecretCipher
	auditLogger audit.Logger
}

// NewService creates a new credential registry service.
func NewService(repo Repository, cipher *SecretCipher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		cipher:      cipher,
		auditLogger: auditLogger,
	}
}

// Issue creates and persists a fresh credential pair.
func (s *Service) Issue(ctx context.Context, label string) (*Credential, error) {
	if label == "" {
		return nil, errors.New("credential label is required")
	}

	credential := &Credential{
		ClientID:     uuid.NewString(),
		ClientSecret: generateSecret(),
	}

	sealed, err := s.cipher.Seal(credential.ClientSecret)
	if err != nil {
		return nil, err
	}
	record := &Record{
		ClientID:  credential.ClientID,
		Label:     label,
		SecretEnc: sealed,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store credential for %q: %w", label, err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeCredentialIssued,
		Resource: label,
		Metadata: map[string]any{"client_id": credential.ClientID},
	})
	return credential, nil
}

// Fetch returns the credential pair for a client id.
func (s *Service) Fetch(ctx context.Context, clientID string) (*Credential, error) {
	record, err := s.repo.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	secret, err := s.cipher.Open(record.SecretEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal secret for %s: %w", clientID, err)
	}
	return &Credential{ClientID: record.ClientID, ClientSecret: secret}, nil
}

// Revoke removes the credential pair.
func (s *Service) Revoke(ctx context.Context, clientID string) error {
	if err := s.repo.Delete(ctx, clientID); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeCredentialRevoked,
		Metadata: map[string]any{"client_id": clientID},
	})
	return nil
}

func generateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
