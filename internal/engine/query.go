package engine

import (
	"math/big"
	"sort"

	"github.com/iho/ledgerd/internal/domain"
)

// LookupAccounts returns the accounts that exist, in request order.
func (e *Engine) LookupAccounts(ids []domain.Uint128) []domain.Account {
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()

	out := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		if a, ok := e.store.accounts[id]; ok {
			out = append(out, *a)
		}
	}
	return out
}

// LookupTransfers returns the transfers that exist, in request order.
func (e *Engine) LookupTransfers(ids []domain.Uint128) []domain.Transfer {
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()

	out := make([]domain.Transfer, 0, len(ids))
	for _, id := range ids {
		if t, ok := e.store.transfers[id]; ok {
			out = append(out, *t)
		}
	}
	return out
}

// GetAccountTransfers pages through the transfers touching one account.
func (e *Engine) GetAccountTransfers(f domain.AccountFilter) ([]domain.Transfer, error) {
	if err := f.Validate(e.maxLimit); err != nil {
		return nil, err
	}

	e.store.mu.RLock()
	defer e.store.mu.RUnlock()

	refs := e.store.accountTransfers[f.AccountID]
	debits, credits := f.IncludeDebits(), f.IncludeCredits()

	out := make([]domain.Transfer, 0, minInt(int(f.Limit), len(refs)))
	lo, hi := window(len(refs), func(i int) uint64 { return refs[i].timestamp }, f.TimestampMin, f.TimestampMax)
	walk(lo, hi, f.Flags.Reversed, func(i int) bool {
		ref := refs[i]
		if (ref.debit && !debits) || (!ref.debit && !credits) {
			return true
		}
		out = append(out, *e.store.transfers[ref.id])
		return len(out) < int(f.Limit)
	})
	return out, nil
}

// GetAccountBalances pages through an account's balance history. Accounts
// without the history flag have none.
func (e *Engine) GetAccountBalances(f domain.AccountFilter) ([]domain.AccountBalance, error) {
	if err := f.Validate(e.maxLimit); err != nil {
		return nil, err
	}

	e.store.mu.RLock()
	defer e.store.mu.RUnlock()

	hist := e.store.history[f.AccountID]
	out := make([]domain.AccountBalance, 0, minInt(int(f.Limit), len(hist)))
	lo, hi := window(len(hist), func(i int) uint64 { return hist[i].Timestamp }, f.TimestampMin, f.TimestampMax)
	walk(lo, hi, f.Flags.Reversed, func(i int) bool {
		out = append(out, hist[i])
		return len(out) < int(f.Limit)
	})
	return out, nil
}

// QueryAccounts scans accounts in timestamp order.
func (e *Engine) QueryAccounts(f domain.QueryFilter) ([]domain.Account, error) {
	if err := f.Validate(e.maxLimit); err != nil {
		return nil, err
	}

	e.store.mu.RLock()
	defer e.store.mu.RUnlock()

	order := e.store.accountOrder
	var out []domain.Account
	lo, hi := window(len(order), func(i int) uint64 { return e.store.accounts[order[i]].Timestamp }, f.TimestampMin, f.TimestampMax)
	walk(lo, hi, f.Reversed, func(i int) bool {
		a := e.store.accounts[order[i]]
		if f.MatchAccount(a) {
			out = append(out, *a)
		}
		return len(out) < int(f.Limit)
	})
	return out, nil
}

// QueryTransfers scans transfers in timestamp order.
func (e *Engine) QueryTransfers(f domain.QueryFilter) ([]domain.Transfer, error) {
	if err := f.Validate(e.maxLimit); err != nil {
		return nil, err
	}

	e.store.mu.RLock()
	defer e.store.mu.RUnlock()

	order := e.store.transferOrder
	var out []domain.Transfer
	lo, hi := window(len(order), func(i int) uint64 { return e.store.transfers[order[i]].Timestamp }, f.TimestampMin, f.TimestampMax)
	walk(lo, hi, f.Reversed, func(i int) bool {
		t := e.store.transfers[order[i]]
		if f.MatchTransfer(t) {
			out = append(out, *t)
		}
		return len(out) < int(f.Limit)
	})
	return out, nil
}

// LedgerTotals sums the counters of every account in one ledger.
type LedgerTotals struct {
	Ledger         uint32
	Accounts       int
	DebitsPending  *big.Int
	DebitsPosted   *big.Int
	CreditsPending *big.Int
	CreditsPosted  *big.Int
}

// Balanced reports whether debits equal credits, posted and pending.
func (t *LedgerTotals) Balanced() bool {
	return t.DebitsPosted.Cmp(t.CreditsPosted) == 0 && t.DebitsPending.Cmp(t.CreditsPending) == 0
}

// Totals returns per-ledger sums ordered by ledger.
func (e *Engine) Totals() []LedgerTotals {
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()

	byLedger := make(map[uint32]*LedgerTotals)
	for _, a := range e.store.accounts {
		t, ok := byLedger[a.Ledger]
		if !ok {
			t = &LedgerTotals{
				Ledger:         a.Ledger,
				DebitsPending:  new(big.Int),
				DebitsPosted:   new(big.Int),
				CreditsPending: new(big.Int),
				CreditsPosted:  new(big.Int),
			}
			byLedger[a.Ledger] = t
		}
		t.Accounts++
		t.DebitsPending.Add(t.DebitsPending, a.DebitsPending.Big())
		t.DebitsPosted.Add(t.DebitsPosted, a.DebitsPosted.Big())
		t.CreditsPending.Add(t.CreditsPending, a.CreditsPending.Big())
		t.CreditsPosted.Add(t.CreditsPosted, a.CreditsPosted.Big())
	}

	out := make([]LedgerTotals, 0, len(byLedger))
	for _, t := range byLedger {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ledger < out[j].Ledger })
	return out
}

// window returns the index range [lo, hi) of an ascending sequence whose
// timestamps fall in [tsMin, tsMax]. Zero bounds are open.
func window(n int, ts func(int) uint64, tsMin, tsMax uint64) (int, int) {
	lo := sort.Search(n, func(i int) bool { return ts(i) >= tsMin })
	hi := n
	if tsMax != 0 {
		hi = sort.Search(n, func(i int) bool { return ts(i) > tsMax })
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// walk visits [lo, hi) in either direction until fn returns false.
func walk(lo, hi int, reversed bool, fn func(int) bool) {
	if reversed {
		for i := hi - 1; i >= lo; i-- {
			if !fn(i) {
				return
			}
		}
		return
	}
	for i := lo; i < hi; i++ {
		if !fn(i) {
			return
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
