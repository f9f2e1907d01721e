// Package engine is an in-memory double-entry ledger. Batches are applied
// by a single writer through staged overlays; reads run concurrently and
// only ever see fully merged batches.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/iho/ledgerd/internal/domain"
)

const (
	// DefaultMaxBatchSize bounds CreateAccounts and CreateTransfers.
	DefaultMaxBatchSize = 8189
	// DefaultMaxQueryLimit bounds the limit of every query.
	DefaultMaxQueryLimit = 8189
)

// Clock supplies wall time for commit timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Journal durably records a batch before it becomes visible. An error
// rejects the batch.
type Journal interface {
	Append(ctx context.Context, c *domain.Commit) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.exec.clock = c }
}

// WithJournal makes every batch pass through j before merging.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithLimits overrides the batch size and query page size.
func WithLimits(maxBatch, maxQuery int) Option {
	return func(e *Engine) {
		if maxBatch > 0 {
			e.maxBatch = maxBatch
		}
		if maxQuery > 0 {
			e.maxLimit = uint32(maxQuery)
		}
	}
}

// Engine owns one ledger's state.
type Engine struct {
	writeMu sync.Mutex
	store   *Store
	exec    executor
	journal Journal

	maxBatch int
	maxLimit uint32
}

// New returns an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		store:    NewStore(),
		exec:     executor{clock: ClockFunc(time.Now)},
		maxBatch: DefaultMaxBatchSize,
		maxLimit: DefaultMaxQueryLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes committed state for point reads.
func (e *Engine) Store() *Store {
	return e.store
}

// MaxBatchSize is the largest accepted create batch.
func (e *Engine) MaxBatchSize() int {
	return e.maxBatch
}

// MaxQueryLimit is the largest accepted query limit.
func (e *Engine) MaxQueryLimit() uint32 {
	return e.maxLimit
}
