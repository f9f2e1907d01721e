package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/iho/ledgerd/internal/domain"
	"github.com/iho/ledgerd/internal/engine"
)

func id(v uint64) domain.Uint128 { return uint128.From64(v) }

func fixedClock() engine.Clock {
	return engine.ClockFunc(func() time.Time { return time.Unix(0, 1000) })
}

func newEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()
	return engine.New(append([]engine.Option{engine.WithClock(fixedClock())}, opts...)...)
}

func account(v uint64, flags domain.AccountFlags) domain.Account {
	return domain.Account{ID: id(v), Ledger: 1, Code: 10, Flags: flags}
}

func transfer(v, debit, credit, amount uint64) domain.Transfer {
	return domain.Transfer{ID: id(v), DebitAccountID: id(debit), CreditAccountID: id(credit), Amount: id(amount)}
}

func mustCreateAccounts(t *testing.T, e *engine.Engine, accounts ...domain.Account) {
	t.Helper()
	results, err := e.CreateAccounts(context.Background(), accounts)
	require.NoError(t, err)
	for i, r := range results {
		require.Truef(t, r.Succeeded(), "account %d: %s", i, r)
	}
}

func createTransfers(t *testing.T, e *engine.Engine, transfers ...domain.Transfer) []domain.CreateResult {
	t.Helper()
	results, err := e.CreateTransfers(context.Background(), transfers)
	require.NoError(t, err)
	require.Len(t, results, len(transfers))
	return results
}

func getAccount(t *testing.T, e *engine.Engine, v uint64) domain.Account {
	t.Helper()
	a, ok := e.Store().GetAccount(id(v))
	require.True(t, ok)
	return a
}

func TestCreateAccounts(t *testing.T) {
	e := newEngine(t)

	results, err := e.CreateAccounts(context.Background(), []domain.Account{
		account(1, domain.AccountFlags{}),
		account(2, domain.AccountFlags{History: true}),
		{ID: id(3), Ledger: 0, Code: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.CreateResult{domain.ResultOK, domain.ResultOK, domain.ResultInvalidLedgerOrCode}, results)

	a1, a2 := getAccount(t, e, 1), getAccount(t, e, 2)
	assert.Equal(t, uint64(1000), a1.Timestamp)
	assert.Equal(t, uint64(1001), a2.Timestamp)

	_, ok := e.Store().GetAccount(id(3))
	assert.False(t, ok)
}

func TestCreateAccountsIdempotency(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}))

	dup := account(1, domain.AccountFlags{})
	changed := account(1, domain.AccountFlags{History: true})
	results, err := e.CreateAccounts(context.Background(), []domain.Account{dup, changed})
	require.NoError(t, err)
	assert.Equal(t, []domain.CreateResult{domain.ResultIdempotentDuplicate, domain.ResultIDAlreadyExists}, results)
}

func TestCallLevelErrors(t *testing.T) {
	e := newEngine(t, engine.WithLimits(2, 5))

	_, err := e.CreateAccounts(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)

	_, err = e.CreateTransfers(context.Background(), make([]domain.Transfer, 3))
	assert.ErrorIs(t, err, domain.ErrBatchTooLarge)

	_, err = e.GetAccountTransfers(domain.AccountFilter{AccountID: id(1), Limit: 6})
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)

	_, err = e.GetAccountBalances(domain.AccountFilter{AccountID: id(1), Limit: 1, TimestampMin: 9, TimestampMax: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidTimestampRange)
}

func TestPendingThenPost(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}))

	t1 := transfer(10, 1, 2, 100)
	t1.Flags.Pending = true
	require.Equal(t, []domain.CreateResult{domain.ResultOK}, createTransfers(t, e, t1))

	a, b := getAccount(t, e, 1), getAccount(t, e, 2)
	assert.Equal(t, id(100), a.DebitsPending)
	assert.Equal(t, id(100), b.CreditsPending)
	assert.Equal(t, domain.PendingOpen, e.Store().PendingStatus(id(10)))

	t2 := domain.Transfer{ID: id(11), PendingID: id(10)}
	t2.Flags.PostPendingTransfer = true
	require.Equal(t, []domain.CreateResult{domain.ResultOK}, createTransfers(t, e, t2))

	a, b = getAccount(t, e, 1), getAccount(t, e, 2)
	assert.True(t, a.DebitsPending.IsZero())
	assert.Equal(t, id(100), a.DebitsPosted)
	assert.True(t, b.CreditsPending.IsZero())
	assert.Equal(t, id(100), b.CreditsPosted)
	assert.Equal(t, domain.PendingPosted, e.Store().PendingStatus(id(10)))

	posted, ok := e.Store().GetTransfer(id(11))
	require.True(t, ok)
	assert.Equal(t, id(1), posted.DebitAccountID)
	assert.Equal(t, id(2), posted.CreditAccountID)
	assert.Equal(t, id(100), posted.Amount)
	assert.Equal(t, uint32(1), posted.Ledger)

	// A second resolution fails and leaves balances alone.
	void := domain.Transfer{ID: id(12), PendingID: id(10)}
	void.Flags.VoidPendingTransfer = true
	again := domain.Transfer{ID: id(13), PendingID: id(10)}
	again.Flags.PostPendingTransfer = true
	assert.Equal(t, []domain.CreateResult{domain.ResultAlreadyResolved, domain.ResultAlreadyResolved}, createTransfers(t, e, void, again))
	assert.Equal(t, a, getAccount(t, e, 1))

	// Resubmitting the post is a duplicate, not a second resolution.
	assert.Equal(t, []domain.CreateResult{domain.ResultIdempotentDuplicate}, createTransfers(t, e, t2))
}

func TestVoidAndPartialPost(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}))

	p1 := transfer(10, 1, 2, 100)
	p1.Flags.Pending = true
	p2 := transfer(11, 1, 2, 50)
	p2.Flags.Pending = true
	require.Equal(t, []domain.CreateResult{domain.ResultOK, domain.ResultOK}, createTransfers(t, e, p1, p2))

	void := domain.Transfer{ID: id(20), PendingID: id(10)}
	void.Flags.VoidPendingTransfer = true
	tooMuch := domain.Transfer{ID: id(21), PendingID: id(11), Amount: id(51)}
	tooMuch.Flags.PostPendingTransfer = true
	partial := domain.Transfer{ID: id(22), PendingID: id(11), Amount: id(30)}
	partial.Flags.PostPendingTransfer = true
	missing := domain.Transfer{ID: id(23), PendingID: id(99)}
	missing.Flags.PostPendingTransfer = true
	notPending := domain.Transfer{ID: id(24), PendingID: id(20)}
	notPending.Flags.VoidPendingTransfer = true

	results := createTransfers(t, e, void, tooMuch, partial, missing, notPending)
	assert.Equal(t, []domain.CreateResult{
		domain.ResultOK,
		domain.ResultPendingAmountExceeded,
		domain.ResultOK,
		domain.ResultTransferNotFound,
		domain.ResultTransferNotPending,
	}, results)

	a := getAccount(t, e, 1)
	assert.True(t, a.DebitsPending.IsZero())
	assert.Equal(t, id(30), a.DebitsPosted)
	assert.Equal(t, domain.PendingVoided, e.Store().PendingStatus(id(10)))
}

func TestExceedsCredits(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e,
		account(1, domain.AccountFlags{DebitsMustNotExceedCredits: true}),
		account(2, domain.AccountFlags{}),
		account(3, domain.AccountFlags{CreditsMustNotExceedDebits: true}),
	)

	assert.Equal(t, []domain.CreateResult{domain.ResultExceedsCredits}, createTransfers(t, e, transfer(10, 1, 2, 1)))
	assert.Equal(t, []domain.CreateResult{domain.ResultExceedsDebits}, createTransfers(t, e, transfer(11, 2, 3, 1)))

	c := getAccount(t, e, 1)
	assert.True(t, c.DebitsPosted.IsZero())
	assert.True(t, c.DebitsPending.IsZero())
	_, ok := e.Store().GetTransfer(id(10))
	assert.False(t, ok)

	// Funding the account lets the same debit through.
	assert.Equal(t, []domain.CreateResult{domain.ResultOK, domain.ResultOK},
		createTransfers(t, e, transfer(12, 2, 1, 5), transfer(13, 1, 2, 5)))
}

func TestLinkedChainFailure(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{History: true}))

	first := transfer(10, 1, 2, 5)
	first.Flags.Linked = true
	second := transfer(11, 1, 99, 5)
	third := transfer(12, 1, 2, 7)

	results := createTransfers(t, e, first, second, third)
	assert.Equal(t, []domain.CreateResult{domain.ResultLinkedChainFailed, domain.ResultAccountNotFound, domain.ResultOK}, results)

	got := e.LookupTransfers([]domain.Uint128{id(10), id(11), id(12)})
	require.Len(t, got, 1)
	assert.Equal(t, id(12), got[0].ID)
	assert.Equal(t, id(7), getAccount(t, e, 1).DebitsPosted)

	balances, err := e.GetAccountBalances(domain.AccountFilter{AccountID: id(2), Limit: 10})
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, id(7), balances[0].CreditsPosted)
}

func TestLinkedChainCommitsAtomically(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}))

	pending := transfer(10, 1, 2, 40)
	pending.Flags.Pending, pending.Flags.Linked = true, true
	post := domain.Transfer{ID: id(11), PendingID: id(10)}
	post.Flags.PostPendingTransfer = true

	assert.Equal(t, []domain.CreateResult{domain.ResultOK, domain.ResultOK}, createTransfers(t, e, pending, post))
	assert.Equal(t, id(40), getAccount(t, e, 2).CreditsPosted)
}

func TestLinkedChainRollsBackResolution(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}))

	pending := transfer(10, 1, 2, 40)
	pending.Flags.Pending = true
	require.Equal(t, []domain.CreateResult{domain.ResultOK}, createTransfers(t, e, pending))

	post := domain.Transfer{ID: id(11), PendingID: id(10)}
	post.Flags.PostPendingTransfer, post.Flags.Linked = true, true
	bad := transfer(12, 1, 2, 0)

	assert.Equal(t, []domain.CreateResult{domain.ResultLinkedChainFailed, domain.ResultZeroAmountNotAllowed}, createTransfers(t, e, post, bad))
	assert.Equal(t, domain.PendingOpen, e.Store().PendingStatus(id(10)))
	assert.Equal(t, id(40), getAccount(t, e, 1).DebitsPending)
}

func TestLinkedChainOpen(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}))

	first := transfer(10, 1, 2, 1)
	first.Flags.Linked = true
	last := transfer(11, 1, 2, 1)
	last.Flags.Linked = true

	results := createTransfers(t, e, transfer(9, 1, 2, 1), first, last)
	assert.Equal(t, []domain.CreateResult{domain.ResultOK, domain.ResultLinkedChainFailed, domain.ResultLinkedChainOpen}, results)
	assert.Equal(t, id(1), getAccount(t, e, 1).DebitsPosted)
}

func TestTransferIdempotency(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{History: true}), account(2, domain.AccountFlags{}))

	tr := transfer(10, 1, 2, 5)
	require.Equal(t, []domain.CreateResult{domain.ResultOK}, createTransfers(t, e, tr))

	changed := transfer(10, 1, 2, 6)
	assert.Equal(t, []domain.CreateResult{domain.ResultIdempotentDuplicate, domain.ResultIDAlreadyExists}, createTransfers(t, e, tr, changed))

	assert.Equal(t, id(5), getAccount(t, e, 1).DebitsPosted)
	balances, err := e.GetAccountBalances(domain.AccountFilter{AccountID: id(1), Limit: 10})
	require.NoError(t, err)
	assert.Len(t, balances, 1)
}

func TestLedgerRules(t *testing.T) {
	e := newEngine(t)
	other := account(3, domain.AccountFlags{})
	other.Ledger = 2
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}), other)

	wrongLedger := transfer(11, 1, 2, 1)
	wrongLedger.Ledger = 7

	results := createTransfers(t, e, transfer(10, 1, 3, 1), wrongLedger, transfer(12, 1, 1, 1))
	assert.Equal(t, []domain.CreateResult{
		domain.ResultLedgerMismatch,
		domain.ResultLedgerMismatch,
		domain.ResultAccountsMustBeDifferent,
	}, results)
}

func TestBalancingDebit(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}))

	require.Equal(t, []domain.CreateResult{domain.ResultOK}, createTransfers(t, e, transfer(10, 2, 1, 30)))

	sweep := transfer(11, 1, 2, 100)
	sweep.Flags.BalancingDebit = true
	again := transfer(12, 1, 2, 100)
	again.Flags.BalancingDebit = true
	require.Equal(t, []domain.CreateResult{domain.ResultOK, domain.ResultOK}, createTransfers(t, e, sweep, again))

	got := e.LookupTransfers([]domain.Uint128{id(11), id(12)})
	require.Len(t, got, 2)
	assert.Equal(t, id(30), got[0].Amount)
	assert.True(t, got[1].Amount.IsZero())

	a := getAccount(t, e, 1)
	assert.Equal(t, a.CreditsPosted, a.DebitsPosted)

	// The resolved amount is below the request, which still counts as the same transfer.
	assert.Equal(t, []domain.CreateResult{domain.ResultIdempotentDuplicate}, createTransfers(t, e, sweep))
}

func TestBalancingCredit(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}))

	require.Equal(t, []domain.CreateResult{domain.ResultOK}, createTransfers(t, e, transfer(10, 2, 1, 30)))

	sweep := transfer(11, 2, 1, 100)
	sweep.Flags.BalancingCredit = true
	require.Equal(t, []domain.CreateResult{domain.ResultOK}, createTransfers(t, e, sweep))

	got, ok := e.Store().GetTransfer(id(11))
	require.True(t, ok)
	assert.True(t, got.Amount.IsZero())

	// Account 2 now has 30 more debits than credits; crediting it is capped at 30.
	refill := transfer(12, 1, 2, 100)
	refill.Flags.BalancingCredit = true
	require.Equal(t, []domain.CreateResult{domain.ResultOK}, createTransfers(t, e, refill))

	got, ok = e.Store().GetTransfer(id(12))
	require.True(t, ok)
	assert.Equal(t, id(30), got.Amount)

	b := getAccount(t, e, 2)
	assert.Equal(t, b.DebitsPosted, b.CreditsPosted)
}

func TestResolutionKeepsBalanceLimits(t *testing.T) {
	// Account 3 spends against an incoming reservation, so releasing that
	// reservation without posting it in full must fail.
	setup := func(t *testing.T) *engine.Engine {
		e := newEngine(t)
		mustCreateAccounts(t, e,
			account(1, domain.AccountFlags{}),
			account(2, domain.AccountFlags{}),
			account(3, domain.AccountFlags{DebitsMustNotExceedCredits: true}),
		)
		incoming := transfer(10, 2, 3, 100)
		incoming.Flags.Pending = true
		require.Equal(t, []domain.CreateResult{domain.ResultOK, domain.ResultOK},
			createTransfers(t, e, incoming, transfer(11, 3, 1, 100)))
		return e
	}

	t.Run("void", func(t *testing.T) {
		e := setup(t)
		before := getAccount(t, e, 3)

		void := domain.Transfer{ID: id(20), PendingID: id(10)}
		void.Flags.VoidPendingTransfer = true
		assert.Equal(t, []domain.CreateResult{domain.ResultExceedsCredits}, createTransfers(t, e, void))
		assert.Equal(t, before, getAccount(t, e, 3))
		assert.Equal(t, domain.PendingOpen, e.Store().PendingStatus(id(10)))
	})

	t.Run("partial post", func(t *testing.T) {
		e := setup(t)

		partial := domain.Transfer{ID: id(20), PendingID: id(10), Amount: id(40)}
		partial.Flags.PostPendingTransfer = true
		assert.Equal(t, []domain.CreateResult{domain.ResultExceedsCredits}, createTransfers(t, e, partial))
		assert.Equal(t, domain.PendingOpen, e.Store().PendingStatus(id(10)))
	})

	t.Run("full post", func(t *testing.T) {
		e := setup(t)

		post := domain.Transfer{ID: id(20), PendingID: id(10)}
		post.Flags.PostPendingTransfer = true
		require.Equal(t, []domain.CreateResult{domain.ResultOK}, createTransfers(t, e, post))

		c := getAccount(t, e, 3)
		exceeds, ok := c.ExceedsCredits()
		require.True(t, ok)
		assert.False(t, exceeds)
		assert.Equal(t, id(100), c.CreditsPosted)
	})
}

func TestTimestampsStrictlyIncrease(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}))

	createTransfers(t, e, transfer(10, 1, 2, 1), transfer(11, 1, 2, 1), transfer(12, 1, 2, 1))
	got := e.LookupTransfers([]domain.Uint128{id(10), id(11), id(12)})
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].Timestamp, got[i-1].Timestamp)
	}
	assert.Greater(t, got[0].Timestamp, getAccount(t, e, 2).Timestamp)
}

func TestDoubleEntryClosure(t *testing.T) {
	e := newEngine(t)
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}), account(3, domain.AccountFlags{}))

	p := transfer(12, 3, 1, 9)
	p.Flags.Pending = true
	createTransfers(t, e, transfer(10, 1, 2, 5), transfer(11, 2, 3, 3), p)

	totals := e.Totals()
	require.Len(t, totals, 1)
	assert.True(t, totals[0].Balanced())
	assert.Equal(t, 3, totals[0].Accounts)
	assert.Equal(t, "8", totals[0].DebitsPosted.String())
	assert.Equal(t, "9", totals[0].CreditsPending.String())
}

type recordingJournal struct {
	commits []*domain.Commit
	err     error
}

func (j *recordingJournal) Append(_ context.Context, c *domain.Commit) error {
	if j.err != nil {
		return j.err
	}
	j.commits = append(j.commits, c)
	return nil
}

func TestJournalFailureLeavesStoreUntouched(t *testing.T) {
	j := &recordingJournal{}
	e := newEngine(t, engine.WithJournal(j))
	mustCreateAccounts(t, e, account(1, domain.AccountFlags{}), account(2, domain.AccountFlags{}))
	require.Len(t, j.commits, 1)
	assert.Len(t, j.commits[0].Accounts, 2)

	j.err = errors.New("disk full")
	_, err := e.CreateTransfers(context.Background(), []domain.Transfer{transfer(10, 1, 2, 5)})
	require.Error(t, err)
	assert.ErrorIs(t, err, j.err)

	assert.True(t, getAccount(t, e, 1).DebitsPosted.IsZero())
	assert.Empty(t, e.LookupTransfers([]domain.Uint128{id(10)}))

	// Batches that commit nothing never reach the journal.
	j.err = nil
	results, err := e.CreateTransfers(context.Background(), []domain.Transfer{transfer(11, 1, 9, 5)})
	require.NoError(t, err)
	assert.Equal(t, []domain.CreateResult{domain.ResultAccountNotFound}, results)
	assert.Len(t, j.commits, 1)
}

func TestRestoreReplaysJournal(t *testing.T) {
	j := &recordingJournal{}
	src := newEngine(t, engine.WithJournal(j))
	mustCreateAccounts(t, src, account(1, domain.AccountFlags{History: true}), account(2, domain.AccountFlags{}))

	p := transfer(10, 1, 2, 50)
	p.Flags.Pending = true
	post := domain.Transfer{ID: id(11), PendingID: id(10), Amount: id(20)}
	post.Flags.PostPendingTransfer = true
	createTransfers(t, src, p, transfer(12, 2, 1, 5))
	createTransfers(t, src, post)

	var accounts []domain.Account
	var transfers []domain.Transfer
	for _, c := range j.commits {
		accounts = append(accounts, c.Accounts...)
		transfers = append(transfers, c.Transfers...)
	}

	dst := newEngine(t)
	require.NoError(t, dst.Restore(accounts, transfers))

	assert.Equal(t, getAccount(t, src, 1), getAccount(t, dst, 1))
	assert.Equal(t, getAccount(t, src, 2), getAccount(t, dst, 2))
	assert.Equal(t, domain.PendingPosted, dst.Store().PendingStatus(id(10)))

	filter := domain.AccountFilter{AccountID: id(1), Limit: 10}
	want, err := src.GetAccountBalances(filter)
	require.NoError(t, err)
	got, err := dst.GetAccountBalances(filter)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// New writes continue after the restored timestamps.
	createTransfers(t, dst, transfer(13, 1, 2, 1))
	tr, ok := dst.Store().GetTransfer(id(13))
	require.True(t, ok)
	assert.Greater(t, tr.Timestamp, getAccount(t, dst, 1).Timestamp)

	assert.ErrorIs(t, dst.Restore(accounts, transfers), engine.ErrNotEmpty)
}
