package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quill-labs/qbconnect/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.StateStore = (*StateStore)(nil)

// statePrefix namespaces state keys in Redis.
const statePrefix = "oauth:state:"

// StateStore implements driven.StateStore using Redis.
// Entries carry a key TTL, so expiry needs no sweeper, and GETDEL gives
// atomic single-use consumption.
type StateStore struct {
	client *redis.Client
}

// NewStateStore creates a new Redis-backed StateStore
func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

// Save stores a state with TTL based on ExpiresAt
func (s *StateStore) Save(ctx context.Context, state *driven.AuthState) error {
	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		// Already expired, don't save
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal oauth state: %w", err)
	}

	if err := s.client.Set(ctx, statePrefix+state.State, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}

	return nil
}

// GetAndDelete atomically retrieves and deletes the state via GETDEL.
func (s *StateStore) GetAndDelete(ctx context.Context, state string) (*driven.AuthState, error) {
	data, err := s.client.GetDel(ctx, statePrefix+state).Bytes()
	if err == redis.Nil {
		return nil, nil // State not found or expired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth state: %w", err)
	}

	var authState driven.AuthState
	if err := json.Unmarshal(data, &authState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal oauth state: %w", err)
	}

	// Guard against TTL drift on the key
	if time.Now().After(authState.ExpiresAt) {
		return nil, nil
	}

	return &authState, nil
}

// Cleanup is a no-op: Redis evicts expired keys via TTL.
func (s *StateStore) Cleanup(ctx context.Context) error {
	return nil
}
