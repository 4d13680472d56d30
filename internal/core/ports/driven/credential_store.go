package driven

import (
	"context"

	"github.com/quill-labs/qbconnect/internal/core/domain"
)

// CredentialStore persists OAuth credentials keyed by realm.
// Writes are upserts; records survive process restart and are only
// removed by explicit revocation.
type CredentialStore interface {
	// Upsert writes the credential, replacing any prior record for the
	// same realm. The write is atomic: readers never observe a record
	// mixing fields from two writes.
	Upsert(ctx context.Context, cred *domain.Credential) error

	// Get retrieves the credential for a realm.
	// Returns domain.ErrNotFound when the realm has never connected.
	Get(ctx context.Context, realmID string) (*domain.Credential, error)

	// Latest returns the most recently committed credential, for
	// single-tenant deployments that do not track realm IDs. Ordering is
	// by commit order, not by any timestamp column.
	// Returns domain.ErrNotFound when the store is empty.
	Latest(ctx context.Context) (*domain.Credential, error)

	// List returns secret-free summaries of all stored credentials.
	List(ctx context.Context) ([]*domain.CredentialSummary, error)

	// Delete revokes the stored credential for a realm.
	// Returns domain.ErrNotFound when no record exists.
	Delete(ctx context.Context, realmID string) error
}
