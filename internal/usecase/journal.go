package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerd/internal/domain"
	"github.com/iho/ledgerd/internal/infrastructure/metrics"
)

// MeteredJournal counts and logs journal appends.
type MeteredJournal struct {
	next    Journal
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewMeteredJournal wraps next.
func NewMeteredJournal(next Journal, m *metrics.Metrics, logger zerolog.Logger) *MeteredJournal {
	return &MeteredJournal{next: next, metrics: m, logger: logger}
}

// Append implements engine.Journal.
func (j *MeteredJournal) Append(ctx context.Context, c *domain.Commit) error {
	if err := j.next.Append(ctx, c); err != nil {
		j.metrics.JournalErrors.Inc()
		j.logger.Error().
			Err(err).
			Int("accounts", len(c.Accounts)).
			Int("transfers", len(c.Transfers)).
			Msg("journal append failed, batch rejected")
		return err
	}
	j.metrics.JournalAppends.Inc()
	return nil
}

// Load implements Journal.
func (j *MeteredJournal) Load(ctx context.Context) (*domain.Commit, error) {
	return j.next.Load(ctx)
}
