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

package audit

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Event types
const (
	TypeOrganisationCreated = "organisation_created"
	TypeOrganisationDeleted = "organisation_deleted"
	TypeClientCreated       = "client_created"
	TypeClientDeleted       = "client_deleted"
	TypeAdapterCreated      = "adapter_created"
	TypeAdapterDeleted      = "adapter_deleted"
	TypeCredentialIssued    = "credential_issued"
	TypeCredentialRevoked   = "credential_revoked"
	TypePasswordReset       = "password_reset"
	TypePackageLinked       = "package_linked"
	TypePackageUnlinked     = "package_unlinked"
	TypeComponentLinked     = "component_linked"
	TypeComponentUnlinked   = "component_unlinked"
	TypeContactCreated      = "contact_created"
)

// Event represents an auditable action
type Event struct {
	Type      string
	OrgID     string
	ActorID   string
	Resource  string
	Metadata  map[string]any
	Timestamp time.Time
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event)
}

// SlogLogger implements Logger using slog
type SlogLogger struct{}

// NewSlogLogger creates a new audit logger
func NewSlogLogger() *SlogLogger {
	return &SlogLogger{}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	attrs := []any{
		slog.String("audit_type", event.Type),
		slog.String("org_id", event.OrgID),
		slog.String("actor_id", event.ActorID),
		slog.String("resource", event.Resource),
		slog.Time("timestamp", event.Timestamp),
	}

	if len(event.Metadata) > 0 {
		group := []any{}
		for k, v := range event.Metadata {
			if isSecret(k) {
				group = append(group, slog.String(k, "[REDACTED]"))
				continue
			}
			group = append(group, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("metadata", group...))
	}

	slog.InfoContext(ctx, "audit_event", attrs...)
}

// isSecret reports whether a metadata key names a value that must never be
// written to the log in plaintext.
func isSecret(key string) bool {
	k := strings.ToLower(key)
	for _, needle := range []string{"password", "secret", "token", "key", "hash", "credential"} {
		if strings.Contains(k, needle) {
			return true
		}
	}
	return false
}

// NopLogger discards audit events. Used in tests.
type NopLogger struct{}

// Log implements Logger.
func (NopLogger) Log(ctx context.Context, event Event) {}
