package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerd/internal/domain"
	"github.com/iho/ledgerd/internal/infrastructure/postgres/generated"
)

type journalDB interface {
	pgxPool
	generated.DBTX
}

// JournalRepository implements usecase.Journal on PostgreSQL. Each committed
// batch is copied in one transaction; balances are not stored.
type JournalRepository struct {
	queries   *generated.Queries
	txManager *TxManager
	retrier   *Retrier
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool, retrier *Retrier) *JournalRepository {
	return newJournalRepository(pool, retrier)
}

func newJournalRepository(db journalDB, retrier *Retrier) *JournalRepository {
	return &JournalRepository{
		queries:   generated.New(db),
		txManager: newTxManagerWithPool(db),
		retrier:   retrier,
	}
}

// Append writes one committed batch.
func (r *JournalRepository) Append(ctx context.Context, c *domain.Commit) error {
	if c.Empty() {
		return nil
	}

	accounts := make([]generated.InsertAccountsParams, len(c.Accounts))
	for i := range c.Accounts {
		accounts[i] = accountToParams(&c.Accounts[i])
	}
	transfers := make([]generated.InsertTransfersParams, len(c.Transfers))
	for i := range c.Transfers {
		transfers[i] = transferToParams(&c.Transfers[i])
	}

	return r.retrier.Retry(ctx, func() error {
		return r.txManager.WithTx(ctx, func(tx pgx.Tx) error {
			q := r.queries.WithTx(tx)
			if len(accounts) > 0 {
				if _, err := q.InsertAccounts(ctx, accounts); err != nil {
					return fmt.Errorf("insert accounts: %w", err)
				}
			}
			if len(transfers) > 0 {
				if _, err := q.InsertTransfers(ctx, transfers); err != nil {
					return fmt.Errorf("insert transfers: %w", err)
				}
			}
			return nil
		})
	})
}

// Load returns every journaled account and transfer in timestamp order,
// read from one snapshot.
func (r *JournalRepository) Load(ctx context.Context) (*domain.Commit, error) {
	c := &domain.Commit{}

	err := r.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		q := r.queries.WithTx(tx)

		accountRows, err := q.ListAccounts(ctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		transferRows, err := q.ListTransfers(ctx)
		if err != nil {
			return fmt.Errorf("list transfers: %w", err)
		}

		c.Accounts = make([]domain.Account, len(accountRows))
		for i, row := range accountRows {
			if c.Accounts[i], err = rowToAccount(row); err != nil {
				return err
			}
		}
		c.Transfers = make([]domain.Transfer, len(transferRows))
		for i, row := range transferRows {
			if c.Transfers[i], err = rowToTransfer(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}
