package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerd/internal/domain"
	"github.com/iho/ledgerd/internal/engine"
	"github.com/iho/ledgerd/internal/infrastructure/metrics"
)

var (
	// ErrInconsistentLedger is returned when the ledger is not balanced.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// LedgerUseCase exposes the ledger operations to the transport layer.
type LedgerUseCase struct {
	engine  *engine.Engine
	idGen   IDGenerator
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(eng *engine.Engine, idGen IDGenerator, m *metrics.Metrics, logger zerolog.Logger) *LedgerUseCase {
	return &LedgerUseCase{
		engine:  eng,
		idGen:   idGen,
		metrics: m,
		logger:  logger.With().Str("component", "ledger").Logger(),
	}
}

// GetID returns a fresh identifier for a caller-built record.
func (uc *LedgerUseCase) GetID(ctx context.Context) domain.Uint128 {
	return uc.idGen.Generate()
}

// CreateAccounts creates accounts and returns one result per item.
func (uc *LedgerUseCase) CreateAccounts(ctx context.Context, accounts []domain.Account) ([]domain.CreateResult, error) {
	start := time.Now()
	results, err := uc.engine.CreateAccounts(ctx, accounts)
	if err != nil {
		return nil, uc.batchError("account", len(accounts), err)
	}

	created := uc.record("account", results, time.Since(start))
	uc.metrics.AccountsCreated.Add(float64(created))
	return results, nil
}

// CreateTransfers executes transfers and returns one result per item.
func (uc *LedgerUseCase) CreateTransfers(ctx context.Context, transfers []domain.Transfer) ([]domain.CreateResult, error) {
	start := time.Now()
	results, err := uc.engine.CreateTransfers(ctx, transfers)
	if err != nil {
		return nil, uc.batchError("transfer", len(transfers), err)
	}

	created := uc.record("transfer", results, time.Since(start))
	uc.metrics.TransfersCreated.Add(float64(created))

	if created > 0 {
		ids := make([]domain.Uint128, 0, created)
		for i, r := range results {
			if r == domain.ResultOK {
				ids = append(ids, transfers[i].ID)
			}
		}
		for _, t := range uc.engine.LookupTransfers(ids) {
			uc.metrics.ObserveAmount(t.Amount)
		}
	}

	return results, nil
}

// LookupAccounts returns the accounts that exist.
func (uc *LedgerUseCase) LookupAccounts(ctx context.Context, ids []domain.Uint128) ([]domain.Account, error) {
	if err := uc.checkLookup(ids); err != nil {
		return nil, err
	}
	defer uc.observeQuery("lookup_accounts", time.Now())
	return uc.engine.LookupAccounts(ids), nil
}

// LookupTransfers returns the transfers that exist.
func (uc *LedgerUseCase) LookupTransfers(ctx context.Context, ids []domain.Uint128) ([]domain.Transfer, error) {
	if err := uc.checkLookup(ids); err != nil {
		return nil, err
	}
	defer uc.observeQuery("lookup_transfers", time.Now())
	return uc.engine.LookupTransfers(ids), nil
}

// GetAccountTransfers returns a page of an account's transfers.
func (uc *LedgerUseCase) GetAccountTransfers(ctx context.Context, filter domain.AccountFilter) ([]domain.Transfer, error) {
	defer uc.observeQuery("get_account_transfers", time.Now())
	return uc.engine.GetAccountTransfers(filter)
}

// GetAccountBalances returns a page of an account's balance history.
func (uc *LedgerUseCase) GetAccountBalances(ctx context.Context, filter domain.AccountFilter) ([]domain.AccountBalance, error) {
	defer uc.observeQuery("get_account_balances", time.Now())
	return uc.engine.GetAccountBalances(filter)
}

// QueryAccounts returns accounts matching the filter.
func (uc *LedgerUseCase) QueryAccounts(ctx context.Context, filter domain.QueryFilter) ([]domain.Account, error) {
	defer uc.observeQuery("query_accounts", time.Now())
	return uc.engine.QueryAccounts(filter)
}

// QueryTransfers returns transfers matching the filter.
func (uc *LedgerUseCase) QueryTransfers(ctx context.Context, filter domain.QueryFilter) ([]domain.Transfer, error) {
	defer uc.observeQuery("query_transfers", time.Now())
	return uc.engine.QueryTransfers(filter)
}

// CheckConsistency verifies that every ledger is balanced. The totals are
// returned with ErrInconsistentLedger when one is not.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) ([]engine.LedgerTotals, error) {
	totals := uc.engine.Totals()
	for _, t := range totals {
		if !t.Balanced() {
			uc.logger.Error().Uint32("ledger", t.Ledger).Msg("ledger out of balance")
			return totals, ErrInconsistentLedger
		}
	}
	return totals, nil
}

// Recover rebuilds the engine from the journal. It must run before the
// first write.
func (uc *LedgerUseCase) Recover(ctx context.Context, journal Journal) error {
	start := time.Now()

	c, err := journal.Load(ctx)
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}
	if err := uc.engine.Restore(c.Accounts, c.Transfers); err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}

	took := time.Since(start)
	uc.metrics.JournalReplayed.WithLabelValues("account").Add(float64(len(c.Accounts)))
	uc.metrics.JournalReplayed.WithLabelValues("transfer").Add(float64(len(c.Transfers)))
	uc.metrics.JournalReplayMillis.Set(float64(took.Milliseconds()))

	uc.logger.Info().
		Int("accounts", len(c.Accounts)).
		Int("transfers", len(c.Transfers)).
		Dur("duration", took).
		Msg("ledger recovered from journal")
	return nil
}

func (uc *LedgerUseCase) record(kind string, results []domain.CreateResult, took time.Duration) int {
	uc.metrics.ObserveResults(kind, results, took)

	created, failed := 0, 0
	for _, r := range results {
		switch {
		case r == domain.ResultOK:
			created++
		case !r.Succeeded():
			failed++
		}
	}

	uc.logger.Debug().
		Str("kind", kind).
		Int("size", len(results)).
		Int("created", created).
		Int("failed", failed).
		Dur("duration", took).
		Msg("batch processed")
	return created
}

func (uc *LedgerUseCase) batchError(kind string, size int, err error) error {
	if errors.Is(err, domain.ErrEmptyBatch) || errors.Is(err, domain.ErrBatchTooLarge) {
		return err
	}
	uc.logger.Error().Err(err).Str("kind", kind).Int("size", size).Msg("batch rejected")
	return fmt.Errorf("create %s batch: %w", kind, err)
}

func (uc *LedgerUseCase) checkLookup(ids []domain.Uint128) error {
	if len(ids) == 0 {
		return domain.ErrEmptyBatch
	}
	if len(ids) > uc.engine.MaxBatchSize() {
		return fmt.Errorf("%w: %d ids, max %d", domain.ErrBatchTooLarge, len(ids), uc.engine.MaxBatchSize())
	}
	return nil
}

func (uc *LedgerUseCase) observeQuery(op string, start time.Time) {
	uc.metrics.Queries.WithLabelValues(op).Inc()
	uc.metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
