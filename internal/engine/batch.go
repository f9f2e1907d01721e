package engine

import (
	"context"
	"fmt"

	"github.com/iho/ledgerd/internal/domain"
)

// CreateAccounts creates accounts in order and returns one result per item.
func (e *Engine) CreateAccounts(ctx context.Context, accounts []domain.Account) ([]domain.CreateResult, error) {
	return e.write(ctx, len(accounts),
		func(i int) bool { return accounts[i].Flags.Linked },
		func(s *stage, i int) domain.CreateResult { return e.exec.createAccount(s, accounts[i]) },
	)
}

// CreateTransfers executes transfers in order and returns one result per item.
func (e *Engine) CreateTransfers(ctx context.Context, transfers []domain.Transfer) ([]domain.CreateResult, error) {
	return e.write(ctx, len(transfers),
		func(i int) bool { return transfers[i].Flags.Linked },
		func(s *stage, i int) domain.CreateResult { return e.exec.createTransfer(s, transfers[i]) },
	)
}

func (e *Engine) write(
	ctx context.Context,
	n int,
	linked func(int) bool,
	apply func(*stage, int) domain.CreateResult,
) ([]domain.CreateResult, error) {
	if n == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if n > e.maxBatch {
		return nil, fmt.Errorf("%w: %d items, max %d", domain.ErrBatchTooLarge, n, e.maxBatch)
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	batch := newStage(e.store)
	results := runBatch(batch, n, linked, apply)
	if batch.empty() {
		return results, nil
	}

	if e.journal != nil {
		if err := e.journal.Append(ctx, batch.commit()); err != nil {
			return nil, fmt.Errorf("journal append: %w", err)
		}
	}

	e.store.apply(batch)
	return results, nil
}

// runBatch walks the items in order. A chain is a run of linked items
// closed by the first unlinked one; it executes in its own stage and is
// absorbed only if every item succeeds. The failing item keeps its code and
// the rest of the chain reports linked_chain_failed.
func runBatch(batch *stage, n int, linked func(int) bool, apply func(*stage, int) domain.CreateResult) []domain.CreateResult {
	results := make([]domain.CreateResult, n)

	for start := 0; start < n; {
		end := start
		for end < n-1 && linked(end) {
			end++
		}
		open := linked(end)

		if start == end && !open {
			results[start] = apply(batch, start)
			start++
			continue
		}

		chain := newStage(batch)
		failed := -1
		for i := start; i <= end; i++ {
			if open && i == end {
				results[i] = domain.ResultLinkedChainOpen
				failed = i
				break
			}
			results[i] = apply(chain, i)
			if !results[i].Succeeded() {
				failed = i
				break
			}
		}

		if failed < 0 {
			batch.absorb(chain)
		} else {
			for i := start; i <= end; i++ {
				if i != failed {
					results[i] = domain.ResultLinkedChainFailed
				}
			}
		}
		start = end + 1
	}

	return results
}
