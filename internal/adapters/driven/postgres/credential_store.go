package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quill-labs/qbconnect/internal/core/domain"
	"github.com/quill-labs/qbconnect/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// credentialSecrets is the encrypted portion of a credential row.
type credentialSecrets struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CredentialStore implements driven.CredentialStore using PostgreSQL.
// Tokens are encrypted into a single blob, so a row is either the old
// record or the new one - never a mix. write_seq orders rows by commit
// for Latest lookups.
type CredentialStore struct {
	db        *sql.DB
	encryptor *SecretEncryptor
}

// NewCredentialStore creates a new PostgreSQL-backed credential store.
func NewCredentialStore(db *sql.DB, encryptor *SecretEncryptor) *CredentialStore {
	return &CredentialStore{
		db:        db,
		encryptor: encryptor,
	}
}

// Upsert writes the credential, replacing any prior record for the realm.
func (s *CredentialStore) Upsert(ctx context.Context, cred *domain.Credential) error {
	secretBlob, err := s.encryptor.Encrypt(credentialSecrets{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("encrypt credential: %w", err)
	}

	cred.UpdatedAt = time.Now()

	query := `
		INSERT INTO qbo_credentials (
			realm_id, secret_blob, token_type, obtained_at, expires_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (realm_id) DO UPDATE SET
			secret_blob = EXCLUDED.secret_blob,
			token_type = EXCLUDED.token_type,
			obtained_at = EXCLUDED.obtained_at,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at,
			write_seq = nextval('qbo_credentials_write_seq')
	`

	_, err = s.db.ExecContext(ctx, query,
		cred.RealmID,
		secretBlob,
		cred.TokenType,
		cred.ObtainedAt,
		cred.ExpiresAt,
		cred.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}

	return nil
}

// Get retrieves the credential for a realm with decrypted tokens.
func (s *CredentialStore) Get(ctx context.Context, realmID string) (*domain.Credential, error) {
	query := `
		SELECT realm_id, secret_blob, token_type, obtained_at, expires_at, updated_at
		FROM qbo_credentials
		WHERE realm_id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, realmID))
}

// Latest retrieves the most recently committed credential.
func (s *CredentialStore) Latest(ctx context.Context) (*domain.Credential, error) {
	query := `
		SELECT realm_id, secret_blob, token_type, obtained_at, expires_at, updated_at
		FROM qbo_credentials
		ORDER BY write_seq DESC
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query))
}

// List retrieves all credentials as summaries (no secrets).
func (s *CredentialStore) List(ctx context.Context) ([]*domain.CredentialSummary, error) {
	query := `
		SELECT realm_id, token_type, obtained_at, expires_at
		FROM qbo_credentials
		ORDER BY write_seq DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.CredentialSummary
	now := time.Now()
	for rows.Next() {
		var summary domain.CredentialSummary
		if err := rows.Scan(
			&summary.RealmID,
			&summary.TokenType,
			&summary.ObtainedAt,
			&summary.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		summary.Expired = now.After(summary.ExpiresAt)
		summaries = append(summaries, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return summaries, nil
}

// Delete removes the credential for a realm.
func (s *CredentialStore) Delete(ctx context.Context, realmID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM qbo_credentials WHERE realm_id = $1", realmID)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (s *CredentialStore) scanOne(row *sql.Row) (*domain.Credential, error) {
	var cred domain.Credential
	var secretBlob []byte

	err := row.Scan(
		&cred.RealmID,
		&secretBlob,
		&cred.TokenType,
		&cred.ObtainedAt,
		&cred.ExpiresAt,
		&cred.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}

	var secrets credentialSecrets
	if err := s.encryptor.Decrypt(secretBlob, &secrets); err != nil {
		return nil, fmt.Errorf("decrypt credential: %w", err)
	}
	cred.AccessToken = secrets.AccessToken
	cred.RefreshToken = secrets.RefreshToken

	return &cred, nil
}
