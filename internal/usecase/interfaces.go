package usecase

import (
	"context"
	"time"

	"github.com/iho/ledgerd/internal/domain"
)

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() domain.Uint128
}

// Journal durably records committed batches and returns them on startup.
type Journal interface {
	Append(ctx context.Context, c *domain.Commit) error
	// Load returns every journaled account and transfer.
	Load(ctx context.Context) (*domain.Commit, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not succeed.
	Release(ctx context.Context, key string) error
}
