package domain

// CreateResult is the outcome of one item in a create batch.
type CreateResult uint8

const (
	ResultOK CreateResult = iota
	ResultIdempotentDuplicate
	ResultIDAlreadyExists
	ResultIDMustNotBeZero
	ResultTimestampMustBeZero
	ResultInvalidLedgerOrCode
	ResultInvalidFlagsCombination
	ResultBalancesMustBeZero
	ResultAccountsMustBeDifferent
	ResultAccountNotFound
	ResultLedgerMismatch
	ResultZeroAmountNotAllowed
	ResultPendingIDRequired
	ResultTransferNotFound
	ResultTransferNotPending
	ResultAlreadyResolved
	ResultPendingTransferMismatch
	ResultPendingAmountExceeded
	ResultExceedsCredits
	ResultExceedsDebits
	ResultOverflow
	ResultLinkedChainFailed
	ResultLinkedChainOpen
)

var resultNames = [...]string{
	ResultOK:                      "ok",
	ResultIdempotentDuplicate:     "idempotent_duplicate",
	ResultIDAlreadyExists:         "id_already_exists",
	ResultIDMustNotBeZero:         "id_must_not_be_zero",
	ResultTimestampMustBeZero:     "timestamp_must_be_zero",
	ResultInvalidLedgerOrCode:     "invalid_ledger_or_code",
	ResultInvalidFlagsCombination: "invalid_flags_combination",
	ResultBalancesMustBeZero:      "balances_must_be_zero",
	ResultAccountsMustBeDifferent: "accounts_must_be_different",
	ResultAccountNotFound:         "account_not_found",
	ResultLedgerMismatch:          "ledger_mismatch",
	ResultZeroAmountNotAllowed:    "zero_amount_not_allowed",
	ResultPendingIDRequired:       "pending_id_required",
	ResultTransferNotFound:        "transfer_not_found",
	ResultTransferNotPending:      "transfer_not_pending",
	ResultAlreadyResolved:         "already_resolved",
	ResultPendingTransferMismatch: "pending_transfer_mismatch",
	ResultPendingAmountExceeded:   "pending_amount_exceeded",
	ResultExceedsCredits:          "exceeds_credits",
	ResultExceedsDebits:           "exceeds_debits",
	ResultOverflow:                "overflow",
	ResultLinkedChainFailed:       "linked_chain_failed",
	ResultLinkedChainOpen:         "linked_chain_open",
}

func (r CreateResult) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "unknown"
}

// MarshalText encodes the result by name.
func (r CreateResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Succeeded is true for ResultOK and ResultIdempotentDuplicate.
func (r CreateResult) Succeeded() bool {
	return r == ResultOK || r == ResultIdempotentDuplicate
}

// CreateResults returns every known result in declaration order.
func CreateResults() []CreateResult {
	out := make([]CreateResult, len(resultNames))
	for i := range resultNames {
		out[i] = CreateResult(i)
	}
	return out
}
