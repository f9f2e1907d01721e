package domain

// AccountFlags are fixed at creation. Linked only has meaning inside a batch.
type AccountFlags struct {
	Linked                     bool
	DebitsMustNotExceedCredits bool
	CreditsMustNotExceedDebits bool
	History                    bool
}

// Account is a ledger account with running debit and credit counters.
type Account struct {
	ID             Uint128
	DebitsPending  Uint128
	DebitsPosted   Uint128
	CreditsPending Uint128
	CreditsPosted  Uint128
	UserData128    Uint128
	UserData64     uint64
	UserData32     uint32
	Ledger         uint32
	Code           uint16
	Flags          AccountFlags
	Timestamp      uint64
}

// SameAs reports whether a resubmitted account carries the same payload as
// the stored one. Balances and the timestamp are engine-owned and ignored.
func (a *Account) SameAs(stored *Account) bool {
	return a.ID.Equals(stored.ID) &&
		a.UserData128.Equals(stored.UserData128) &&
		a.UserData64 == stored.UserData64 &&
		a.UserData32 == stored.UserData32 &&
		a.Ledger == stored.Ledger &&
		a.Code == stored.Code &&
		a.Flags.DebitsMustNotExceedCredits == stored.Flags.DebitsMustNotExceedCredits &&
		a.Flags.CreditsMustNotExceedDebits == stored.Flags.CreditsMustNotExceedDebits &&
		a.Flags.History == stored.Flags.History
}

// Snapshot captures the account's counters at the given timestamp.
func (a *Account) Snapshot(timestamp uint64) AccountBalance {
	return AccountBalance{
		DebitsPending:  a.DebitsPending,
		DebitsPosted:   a.DebitsPosted,
		CreditsPending: a.CreditsPending,
		CreditsPosted:  a.CreditsPosted,
		Timestamp:      timestamp,
	}
}

// ExceedsCredits reports whether pending plus posted debits are greater than
// pending plus posted credits. ok is false when a sum overflows.
func (a *Account) ExceedsCredits() (exceeds, ok bool) {
	debits, ok1 := CheckedAdd(a.DebitsPending, a.DebitsPosted)
	credits, ok2 := CheckedAdd(a.CreditsPending, a.CreditsPosted)
	if !ok1 || !ok2 {
		return false, false
	}
	return debits.Cmp(credits) > 0, true
}

// ExceedsDebits is the mirror of ExceedsCredits.
func (a *Account) ExceedsDebits() (exceeds, ok bool) {
	debits, ok1 := CheckedAdd(a.DebitsPending, a.DebitsPosted)
	credits, ok2 := CheckedAdd(a.CreditsPending, a.CreditsPosted)
	if !ok1 || !ok2 {
		return false, false
	}
	return credits.Cmp(debits) > 0, true
}

// AccountBalance is a point-in-time copy of an account's four counters,
// stamped with the transfer that produced it.
type AccountBalance struct {
	DebitsPending  Uint128
	DebitsPosted   Uint128
	CreditsPending Uint128
	CreditsPosted  Uint128
	Timestamp      uint64
}
