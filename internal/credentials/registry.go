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

// Package credentials implements the credential registry: it issues, fetches
// and revokes the OAuth-style client id / client secret pair that
// authenticates a provisioned client or adapter.
package credentials

import (
	"context"
	"errors"
	"time"
)

var ErrCredentialNotFound = errors.New("credential not found")

// Credential is an issued client id / client secret pair.
type Credential struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Registry is the contract the provisioning layer requires from the
// credential registry.
type Registry interface {
	// Issue creates a fresh credential pair under the given label.
	Issue(ctx context.Context, label string) (*Credential, error)

	// Fetch returns the credential pair for a client id, or
	// ErrCredentialNotFound.
	Fetch(ctx context.Context, clientID string) (*Credential, error)

	// Revoke permanently invalidates the credential pair. Revoking an unknown
	// client id is not an error.
	Revoke(ctx context.Context, clientID string) error
}

// Record is the persisted form of a credential: the secret is stored
// encrypted, never in the clear.
type Record struct {
	ClientID  string
	Label     string
	SecretEnc []byte
	CreatedAt time.Time
}

// Repository defines the interface for credential record storage.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	Get(ctx context.Context, clientID string) (*Record, error)
	Delete(ctx context.Context, clientID string) error
}
