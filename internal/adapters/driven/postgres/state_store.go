package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quill-labs/qbconnect/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore implements driven.StateStore using PostgreSQL.
type StateStore struct {
	db *sql.DB
}

// NewStateStore creates a new PostgreSQL-backed OAuth state store.
func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// Save stores a new authorization state.
func (s *StateStore) Save(ctx context.Context, state *driven.AuthState) error {
	query := `
		INSERT INTO oauth_states (state, redirect_uri, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		state.State,
		state.RedirectURI,
		state.CreatedAt,
		state.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}

	return nil
}

// GetAndDelete atomically retrieves and deletes the state.
// DELETE ... RETURNING gives at-most-once consumption: of two
// concurrent validations for the same state, only one sees the row.
func (s *StateStore) GetAndDelete(ctx context.Context, state string) (*driven.AuthState, error) {
	query := `
		DELETE FROM oauth_states
		WHERE state = $1 AND expires_at > NOW()
		RETURNING state, redirect_uri, created_at, expires_at
	`

	var authState driven.AuthState
	err := s.db.QueryRowContext(ctx, query, state).Scan(
		&authState.State,
		&authState.RedirectURI,
		&authState.CreatedAt,
		&authState.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // State not found or expired
	}
	if err != nil {
		return nil, fmt.Errorf("get and delete oauth state: %w", err)
	}

	return &authState, nil
}

// Cleanup removes expired states.
func (s *StateStore) Cleanup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE expires_at < NOW()`)
	if err != nil {
		return fmt.Errorf("cleanup oauth states: %w", err)
	}

	return nil
}
