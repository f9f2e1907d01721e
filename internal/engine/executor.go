package engine

import (
	"fmt"

	"github.com/iho/ledgerd/internal/domain"
)

// executor applies single accounts and transfers to a stage. It never
// writes to the stage before every check for the item has passed.
type executor struct {
	clock Clock
}

// nextTimestamp is strictly greater than anything already staged.
func (x *executor) nextTimestamp(s view) uint64 {
	last := s.lastTimestamp()
	now := uint64(x.clock.Now().UnixNano())
	if now <= last {
		return last + 1
	}
	return now
}

func (x *executor) createAccount(s *stage, a domain.Account) domain.CreateResult {
	if r := domain.ValidateAccount(&a); r != domain.ResultOK {
		return r
	}

	if existing := s.account(a.ID); existing != nil {
		if a.SameAs(existing) {
			return domain.ResultIdempotentDuplicate
		}
		return domain.ResultIDAlreadyExists
	}

	a.Timestamp = x.nextTimestamp(s)
	s.insertAccount(a)
	return domain.ResultOK
}

func (x *executor) createTransfer(s *stage, t domain.Transfer) domain.CreateResult {
	res, r := domain.ValidateTransfer(&t)
	if r != domain.ResultOK {
		return r
	}

	if existing := s.transfer(t.ID); existing != nil {
		if t.SameAs(existing) {
			return domain.ResultIdempotentDuplicate
		}
		return domain.ResultIDAlreadyExists
	}

	t.Timestamp = x.nextTimestamp(s)
	if res.Kind == domain.ResolutionFresh {
		return x.fresh(s, t)
	}
	return x.resolve(s, t, res)
}

func (x *executor) fresh(s *stage, t domain.Transfer) domain.CreateResult {
	debit, credit := s.account(t.DebitAccountID), s.account(t.CreditAccountID)
	if debit == nil || credit == nil {
		return domain.ResultAccountNotFound
	}
	if debit.Ledger != credit.Ledger || (t.Ledger != 0 && t.Ledger != debit.Ledger) {
		return domain.ResultLedgerMismatch
	}
	t.Ledger = debit.Ledger

	dr, cr := *debit, *credit

	if t.Flags.BalancingDebit {
		t.Amount = domain.Min128(t.Amount, headroom(dr.CreditsPosted, dr.DebitsPosted, dr.DebitsPending))
	}
	if t.Flags.BalancingCredit {
		t.Amount = domain.Min128(t.Amount, headroom(cr.DebitsPosted, cr.CreditsPosted, cr.CreditsPending))
	}

	if !applyFresh(&dr, &cr, t.Amount, t.Flags.Pending) {
		return domain.ResultOverflow
	}

	if r := checkLimits(&dr, &cr); r != domain.ResultOK {
		return r
	}

	commitTransfer(s, t, &dr, &cr)
	if t.Flags.Pending {
		s.setPending(t.ID, domain.PendingOpen)
	}
	return domain.ResultOK
}

func (x *executor) resolve(s *stage, t domain.Transfer, res domain.Resolution) domain.CreateResult {
	p := s.transfer(res.PendingID)
	if p == nil {
		return domain.ResultTransferNotFound
	}
	if !p.Flags.Pending {
		return domain.ResultTransferNotPending
	}
	if s.pendingStatus(p.ID) != domain.PendingOpen {
		return domain.ResultAlreadyResolved
	}

	if (!t.DebitAccountID.IsZero() && !t.DebitAccountID.Equals(p.DebitAccountID)) ||
		(!t.CreditAccountID.IsZero() && !t.CreditAccountID.Equals(p.CreditAccountID)) ||
		(t.Ledger != 0 && t.Ledger != p.Ledger) ||
		(t.Code != 0 && t.Code != p.Code) {
		return domain.ResultPendingTransferMismatch
	}

	post := res.Kind == domain.ResolutionPost
	amount := t.Amount
	switch {
	case amount.IsZero():
		amount = p.Amount
	case post && amount.Cmp(p.Amount) > 0:
		return domain.ResultPendingAmountExceeded
	case !post && !amount.Equals(p.Amount):
		return domain.ResultPendingTransferMismatch
	}

	dr, cr := *s.account(p.DebitAccountID), *s.account(p.CreditAccountID)
	if !applyResolution(&dr, &cr, p.Amount, amount, post) {
		return domain.ResultOverflow
	}
	// Releasing a reservation drops pending amounts the limits counted on.
	if r := checkLimits(&dr, &cr); r != domain.ResultOK {
		return r
	}

	t.DebitAccountID, t.CreditAccountID = p.DebitAccountID, p.CreditAccountID
	t.Ledger = p.Ledger
	if t.Code == 0 {
		t.Code = p.Code
	}
	t.Amount = amount

	commitTransfer(s, t, &dr, &cr)
	if post {
		s.setPending(p.ID, domain.PendingPosted)
	} else {
		s.setPending(p.ID, domain.PendingVoided)
	}
	return domain.ResultOK
}

// checkLimits enforces the balance-limit flags on the updated endpoints.
func checkLimits(dr, cr *domain.Account) domain.CreateResult {
	if dr.Flags.DebitsMustNotExceedCredits {
		exceeds, ok := dr.ExceedsCredits()
		if !ok {
			return domain.ResultOverflow
		}
		if exceeds {
			return domain.ResultExceedsCredits
		}
	}
	if cr.Flags.CreditsMustNotExceedDebits {
		exceeds, ok := cr.ExceedsDebits()
		if !ok {
			return domain.ResultOverflow
		}
		if exceeds {
			return domain.ResultExceedsDebits
		}
	}
	return domain.ResultOK
}

// replayTransfer re-applies a journaled transfer without re-checking it.
func (x *executor) replayTransfer(s *stage, t domain.Transfer) error {
	if t.Timestamp <= s.lastTimestamp() {
		return fmt.Errorf("transfer %s: timestamp %d not after %d", domain.FormatID(t.ID), t.Timestamp, s.lastTimestamp())
	}

	debit, credit := s.account(t.DebitAccountID), s.account(t.CreditAccountID)
	if debit == nil || credit == nil {
		return fmt.Errorf("transfer %s: unknown account", domain.FormatID(t.ID))
	}
	dr, cr := *debit, *credit

	if t.Flags.PostPendingTransfer || t.Flags.VoidPendingTransfer {
		p := s.transfer(t.PendingID)
		if p == nil || s.pendingStatus(p.ID) != domain.PendingOpen {
			return fmt.Errorf("transfer %s: pending transfer %s not open", domain.FormatID(t.ID), domain.FormatID(t.PendingID))
		}
		post := t.Flags.PostPendingTransfer
		if !applyResolution(&dr, &cr, p.Amount, t.Amount, post) {
			return fmt.Errorf("transfer %s: balance overflow", domain.FormatID(t.ID))
		}
		commitTransfer(s, t, &dr, &cr)
		if post {
			s.setPending(p.ID, domain.PendingPosted)
		} else {
			s.setPending(p.ID, domain.PendingVoided)
		}
		return nil
	}

	if !applyFresh(&dr, &cr, t.Amount, t.Flags.Pending) {
		return fmt.Errorf("transfer %s: balance overflow", domain.FormatID(t.ID))
	}
	commitTransfer(s, t, &dr, &cr)
	if t.Flags.Pending {
		s.setPending(t.ID, domain.PendingOpen)
	}
	return nil
}

func commitTransfer(s *stage, t domain.Transfer, dr, cr *domain.Account) {
	s.putAccount(*dr)
	s.putAccount(*cr)
	s.insertTransfer(t)
	if dr.Flags.History {
		s.recordBalance(dr, t.Timestamp)
	}
	if cr.Flags.History {
		s.recordBalance(cr, t.Timestamp)
	}
}

// headroom is how much can move before own+pending reaches the counterpart.
func headroom(counterpart, own, pending domain.Uint128) domain.Uint128 {
	used, ok := domain.CheckedAdd(own, pending)
	if !ok {
		return domain.Uint128{}
	}
	return domain.SaturatingSub(counterpart, used)
}

func applyFresh(dr, cr *domain.Account, amount domain.Uint128, pending bool) bool {
	var ok1, ok2 bool
	if pending {
		dr.DebitsPending, ok1 = domain.CheckedAdd(dr.DebitsPending, amount)
		cr.CreditsPending, ok2 = domain.CheckedAdd(cr.CreditsPending, amount)
	} else {
		dr.DebitsPosted, ok1 = domain.CheckedAdd(dr.DebitsPosted, amount)
		cr.CreditsPosted, ok2 = domain.CheckedAdd(cr.CreditsPosted, amount)
	}
	return ok1 && ok2
}

// applyResolution releases the reserved amount and, for a post, books the
// posted amount.
func applyResolution(dr, cr *domain.Account, reserved, posted domain.Uint128, post bool) bool {
	var ok1, ok2 bool
	dr.DebitsPending, ok1 = domain.CheckedSub(dr.DebitsPending, reserved)
	cr.CreditsPending, ok2 = domain.CheckedSub(cr.CreditsPending, reserved)
	if !ok1 || !ok2 {
		return false
	}
	if !post {
		return true
	}
	dr.DebitsPosted, ok1 = domain.CheckedAdd(dr.DebitsPosted, posted)
	cr.CreditsPosted, ok2 = domain.CheckedAdd(cr.CreditsPosted, posted)
	return ok1 && ok2
}
