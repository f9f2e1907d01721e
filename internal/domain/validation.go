package domain

// ValidateAccount checks an account's own fields. It does not consult the
// store, so duplicate ids are detected later.
func ValidateAccount(a *Account) CreateResult {
	switch {
	case a.Timestamp != 0:
		return ResultTimestampMustBeZero
	case a.ID.IsZero():
		return ResultIDMustNotBeZero
	case a.Ledger == 0 || a.Code == 0:
		return ResultInvalidLedgerOrCode
	case a.Flags.DebitsMustNotExceedCredits && a.Flags.CreditsMustNotExceedDebits:
		return ResultInvalidFlagsCombination
	case !a.DebitsPending.IsZero() || !a.DebitsPosted.IsZero() ||
		!a.CreditsPending.IsZero() || !a.CreditsPosted.IsZero():
		return ResultBalancesMustBeZero
	}
	return ResultOK
}

// ValidateTransfer checks a transfer's own fields and turns its flags into
// a Resolution. Account and pending-transfer lookups happen in the executor.
func ValidateTransfer(t *Transfer) (Resolution, CreateResult) {
	if t.Timestamp != 0 {
		return Resolution{}, ResultTimestampMustBeZero
	}
	if t.ID.IsZero() {
		return Resolution{}, ResultIDMustNotBeZero
	}

	f := t.Flags
	if f.PostPendingTransfer && f.VoidPendingTransfer {
		return Resolution{}, ResultInvalidFlagsCombination
	}

	if f.PostPendingTransfer || f.VoidPendingTransfer {
		if f.Pending || f.Balancing() {
			return Resolution{}, ResultInvalidFlagsCombination
		}
		if t.PendingID.IsZero() {
			return Resolution{}, ResultPendingIDRequired
		}
		kind := ResolutionPost
		if f.VoidPendingTransfer {
			kind = ResolutionVoid
		}
		return Resolution{Kind: kind, PendingID: t.PendingID}, ResultOK
	}

	switch {
	case !t.PendingID.IsZero():
		return Resolution{}, ResultInvalidFlagsCombination
	case t.DebitAccountID.IsZero() || t.CreditAccountID.IsZero():
		return Resolution{}, ResultAccountNotFound
	case t.DebitAccountID.Equals(t.CreditAccountID):
		return Resolution{}, ResultAccountsMustBeDifferent
	case t.Amount.IsZero() && !f.Balancing():
		return Resolution{}, ResultZeroAmountNotAllowed
	}

	return Resolution{Kind: ResolutionFresh}, ResultOK
}
