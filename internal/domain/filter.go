package domain

import "fmt"

// AccountFilterFlags select which side of an account's history is returned.
// Reserved is accepted on the wire and has no effect.
type AccountFilterFlags struct {
	Debits   bool
	Credits  bool
	Reserved bool
	Reversed bool
}

// AccountFilter bounds a query over one account's transfers or balances.
// Zero timestamps leave the range open on that side.
type AccountFilter struct {
	AccountID    Uint128
	TimestampMin uint64
	TimestampMax uint64
	Limit        uint32
	Flags        AccountFilterFlags
}

// Validate checks the filter against the engine's page size.
func (f *AccountFilter) Validate(maxLimit uint32) error {
	if f.AccountID.IsZero() {
		return ErrInvalidAccountID
	}
	return validateWindow(f.TimestampMin, f.TimestampMax, f.Limit, maxLimit)
}

// IncludeDebits reports whether transfers debiting the account match.
func (f *AccountFilter) IncludeDebits() bool {
	return f.Flags.Debits || !f.Flags.Credits
}

// IncludeCredits reports whether transfers crediting the account match.
func (f *AccountFilter) IncludeCredits() bool {
	return f.Flags.Credits || !f.Flags.Debits
}

// QueryFilter matches accounts or transfers on any non-zero field.
type QueryFilter struct {
	UserData128  Uint128
	UserData64   uint64
	UserData32   uint32
	Ledger       uint32
	Code         uint16
	TimestampMin uint64
	TimestampMax uint64
	Limit        uint32
	Reversed     bool
}

// Validate checks the filter against the engine's page size.
func (f *QueryFilter) Validate(maxLimit uint32) error {
	return validateWindow(f.TimestampMin, f.TimestampMax, f.Limit, maxLimit)
}

// MatchAccount reports whether the account carries every non-zero field.
func (f *QueryFilter) MatchAccount(a *Account) bool {
	return f.match(a.UserData128, a.UserData64, a.UserData32, a.Ledger, a.Code)
}

// MatchTransfer reports whether the transfer carries every non-zero field.
func (f *QueryFilter) MatchTransfer(t *Transfer) bool {
	return f.match(t.UserData128, t.UserData64, t.UserData32, t.Ledger, t.Code)
}

func (f *QueryFilter) match(ud128 Uint128, ud64 uint64, ud32 uint32, ledger uint32, code uint16) bool {
	if !f.UserData128.IsZero() && !f.UserData128.Equals(ud128) {
		return false
	}
	if f.UserData64 != 0 && f.UserData64 != ud64 {
		return false
	}
	if f.UserData32 != 0 && f.UserData32 != ud32 {
		return false
	}
	if f.Ledger != 0 && f.Ledger != ledger {
		return false
	}
	if f.Code != 0 && f.Code != code {
		return false
	}
	return true
}

func validateWindow(tsMin, tsMax uint64, limit, maxLimit uint32) error {
	if limit == 0 || limit > maxLimit {
		return fmt.Errorf("%w: got %d, max %d", ErrInvalidLimit, limit, maxLimit)
	}
	if tsMax != 0 && tsMin > tsMax {
		return fmt.Errorf("%w: %d > %d", ErrInvalidTimestampRange, tsMin, tsMax)
	}
	return nil
}
