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

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/provdir/provdir/internal/credentials"
)

// CredentialRepository implements credentials.Repository
type CredentialRepository struct {
	db *DB
}

// NewCredentialRepository creates a new credential record repository
func NewCredentialRepository(db *DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create stores a new credential record
func (r *CredentialRepository) Create(ctx context.Context, record *credentials.Record) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO credentials (client_id, label, secret_enc, created_at)
		VALUES ($1, $2, $3, $4)
	`, record.ClientID, record.Label, record.SecretEnc, record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create credential record: %w", err)
	}
	return nil
}

// Get retrieves a credential record by client id
func (r *CredentialRepository) Get(ctx context.Context, clientID string) (*credentials.Record, error) {
	var record credentials.Record
	err := r.db.pool.QueryRow(ctx, `
		SELECT client_id, label, secret_enc, created_at
		FROM credentials
		WHERE client_id = $1
	`, clientID).Scan(&record.ClientID, &record.Label, &record.SecretEnc, &record.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, credentials.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential record: %w", err)
	}
	return &record, nil
}

// Delete removes a credential record
func (r *CredentialRepository) Delete(ctx context.Context, clientID string) error {
	_, err := r.db.pool.Exec(ctx, `
		DELETE FROM credentials WHERE client_id = $1
	`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete credential record: %w", err)
	}
	return nil
}
