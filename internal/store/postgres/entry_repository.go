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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/provdir/provdir/internal/directory"
)

// EntryRepository implements directory.Store on a single directory_entries
// table. Subtree scoping uses the DN suffix: every entry below base has a DN
// ending in ",<base>". There is deliberately no cross-row transaction support;
// callers sequence their writes and tolerate partial failure.
type EntryRepository struct {
	db *DB
}

// NewEntryRepository creates a new directory entry repository.
func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) GetEntry(ctx context.Context, dn directory.DN) (*directory.Entry, error) {
	var entry directory.Entry
	err := r.db.pool.QueryRow(ctx, `
		SELECT dn, kind, name, attributes, created_at, updated_at
		FROM directory_entries
		WHERE dn = $1
	`, string(dn)).Scan(&entry.DN, &entry.Kind, &entry.Name, &entry.Attributes, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry %s: %w", dn, err)
	}
	return &entry, nil
}

func (r *EntryRepository) GetEntryByUniqueName(ctx context.Context, name string, base directory.DN, kind directory.Kind) (*directory.Entry, error) {
	var entry directory.Entry
	err := r.db.pool.QueryRow(ctx, `
		SELECT dn, kind, name, attributes, created_at, updated_at
		FROM directory_entries
		WHERE kind = $1 AND name = $2 AND dn LIKE '%,' || $3
	`, string(kind), name, string(base)).Scan(&entry.DN, &entry.Kind, &entry.Name, &entry.Attributes, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get %s %q under %s: %w", kind, name, base, err)
	}
	return &entry, nil
}

func (r *EntryRepository) GetAll(ctx context.Context, base directory.DN, kind directory.Kind) ([]*directory.Entry, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT dn, kind, name, attributes, created_at, updated_at
		FROM directory_entries
		WHERE kind = $1 AND dn LIKE '%,' || $2
		ORDER BY dn
	`, string(kind), string(base))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entries under %s: %w", kind, base, err)
	}
	defer rows.Close()

	var entries []*directory.Entry
	for rows.Next() {
		var entry directory.Entry
		if err := rows.Scan(&entry.DN, &entry.Kind, &entry.Name, &entry.Attributes, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (r *EntryRepository) CreateEntry(ctx context.Context, entry *directory.Entry) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO directory_entries (dn, kind, name, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, string(entry.DN), string(entry.Kind), entry.Name, entry.Attributes)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return directory.ErrEntryExists
		}
		return fmt.Errorf("failed to create entry %s: %w", entry.DN, err)
	}
	return nil
}

func (r *EntryRepository) UpdateEntry(ctx context.Context, entry *directory.Entry) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE directory_entries
		SET name = $2, attributes = $3, updated_at = now()
		WHERE dn = $1
	`, string(entry.DN), entry.Name, entry.Attributes)

	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", entry.DN, err)
	}
	if tag.RowsAffected() == 0 {
		return directory.ErrEntryNotFound
	}
	return nil
}

func (r *EntryRepository) DeleteEntry(ctx context.Context, dn directory.DN) error {
	_, err := r.db.pool.Exec(ctx, `
		DELETE FROM directory_entries WHERE dn = $1
	`, string(dn))
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", dn, err)
	}
	return nil
}
