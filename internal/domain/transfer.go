package domain

// TransferFlags as submitted by the caller.
type TransferFlags struct {
	Linked              bool
	Pending             bool
	PostPendingTransfer bool
	VoidPendingTransfer bool
	BalancingDebit      bool
	BalancingCredit     bool
}

// Balancing reports whether either balancing flag is set.
func (f TransferFlags) Balancing() bool {
	return f.BalancingDebit || f.BalancingCredit
}

// Transfer moves Amount from the debit account to the credit account.
type Transfer struct {
	ID              Uint128
	DebitAccountID  Uint128
	CreditAccountID Uint128
	Amount          Uint128
	PendingID       Uint128
	UserData128     Uint128
	UserData64      uint64
	UserData32      uint32
	Ledger          uint32
	Code            uint16
	Flags           TransferFlags
	Timestamp       uint64
}

// ResolutionKind says what a transfer does to the ledger.
type ResolutionKind uint8

const (
	// ResolutionFresh moves funds, as pending or posted.
	ResolutionFresh ResolutionKind = iota
	// ResolutionPost posts a pending transfer.
	ResolutionPost
	// ResolutionVoid voids a pending transfer.
	ResolutionVoid
)

// Resolution is the validated form of a transfer's flags and pending_id.
// PendingID is only set for ResolutionPost and ResolutionVoid.
type Resolution struct {
	Kind      ResolutionKind
	PendingID Uint128
}

// PendingStatus tracks a pending transfer through its single transition.
type PendingStatus uint8

const (
	PendingNone PendingStatus = iota
	PendingOpen
	PendingPosted
	PendingVoided
)

func (s PendingStatus) String() string {
	switch s {
	case PendingOpen:
		return "pending"
	case PendingPosted:
		return "posted"
	case PendingVoided:
		return "voided"
	default:
		return "none"
	}
}

// SameAs reports whether a resubmitted transfer matches the committed one.
// Fields a post or void may omit match when left zero. A balancing transfer
// matches when its requested amount covers the resolved amount.
func (t *Transfer) SameAs(stored *Transfer) bool {
	if !t.ID.Equals(stored.ID) ||
		!t.PendingID.Equals(stored.PendingID) ||
		!t.UserData128.Equals(stored.UserData128) ||
		t.UserData64 != stored.UserData64 ||
		t.UserData32 != stored.UserData32 {
		return false
	}

	if !sameFlags(t.Flags, stored.Flags) {
		return false
	}

	resolving := t.Flags.PostPendingTransfer || t.Flags.VoidPendingTransfer
	if !matchOptional(t.DebitAccountID, stored.DebitAccountID, resolving) ||
		!matchOptional(t.CreditAccountID, stored.CreditAccountID, resolving) {
		return false
	}
	if t.Ledger != 0 && t.Ledger != stored.Ledger {
		return false
	}
	if t.Code != 0 && t.Code != stored.Code {
		return false
	}

	switch {
	case t.Flags.Balancing():
		return t.Amount.Cmp(stored.Amount) >= 0
	case resolving:
		return t.Amount.IsZero() || t.Amount.Equals(stored.Amount)
	default:
		return t.Amount.Equals(stored.Amount)
	}
}

func sameFlags(a, b TransferFlags) bool {
	a.Linked, b.Linked = false, false
	return a == b
}

func matchOptional(submitted, stored Uint128, optional bool) bool {
	if optional && submitted.IsZero() {
		return true
	}
	return submitted.Equals(stored)
}
