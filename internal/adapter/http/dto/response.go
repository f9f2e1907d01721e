package dto

import (
	"time"

	"github.com/iho/ledgerd/internal/domain"
	"github.com/iho/ledgerd/internal/engine"
)

// IDResponse carries a freshly allocated identifier.
type IDResponse struct {
	ID string `json:"id"`
}

// ResultItem is the outcome of one item in a create batch.
type ResultItem struct {
	Index  int    `json:"index"`
	Result string `json:"result"`
}

// CreateResultsResponse is returned by the create endpoints, one entry per
// submitted item.
type CreateResultsResponse struct {
	Results []ResultItem `json:"results"`
}

// ResultsFromDomain converts per-item results.
func ResultsFromDomain(results []domain.CreateResult) *CreateResultsResponse {
	items := make([]ResultItem, len(results))
	for i, r := range results {
		items[i] = ResultItem{Index: i, Result: r.String()}
	}
	return &CreateResultsResponse{Results: items}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string       `json:"id"`
	DebitsPending  string       `json:"debits_pending"`
	DebitsPosted   string       `json:"debits_posted"`
	CreditsPending string       `json:"credits_pending"`
	CreditsPosted  string       `json:"credits_posted"`
	UserData128    string       `json:"user_data_128"`
	UserData64     uint64       `json:"user_data_64"`
	UserData32     uint32       `json:"user_data_32"`
	Ledger         uint32       `json:"ledger"`
	Code           uint16       `json:"code"`
	Flags          AccountFlags `json:"flags"`
	Timestamp      uint64       `json:"timestamp"`
	CreatedAt      string       `json:"created_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             domain.FormatID(a.ID),
		DebitsPending:  domain.FormatAmount(a.DebitsPending),
		DebitsPosted:   domain.FormatAmount(a.DebitsPosted),
		CreditsPending: domain.FormatAmount(a.CreditsPending),
		CreditsPosted:  domain.FormatAmount(a.CreditsPosted),
		UserData128:    domain.FormatID(a.UserData128),
		UserData64:     a.UserData64,
		UserData32:     a.UserData32,
		Ledger:         a.Ledger,
		Code:           a.Code,
		Flags:          AccountFlags(a.Flags),
		Timestamp:      a.Timestamp,
		CreatedAt:      FormatTimestamp(a.Timestamp),
	}
}

// AccountsResponse wraps a list of accounts.
type AccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
}

// AccountsFromDomain converts domain accounts to a response.
func AccountsFromDomain(accounts []domain.Account) *AccountsResponse {
	out := make([]*AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = AccountFromDomain(&accounts[i])
	}
	return &AccountsResponse{Accounts: out}
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID              string        `json:"id"`
	DebitAccountID  string        `json:"debit_account_id"`
	CreditAccountID string        `json:"credit_account_id"`
	Amount          string        `json:"amount"`
	PendingID       string        `json:"pending_id"`
	UserData128     string        `json:"user_data_128"`
	UserData64      uint64        `json:"user_data_64"`
	UserData32      uint32        `json:"user_data_32"`
	Ledger          uint32        `json:"ledger"`
	Code            uint16        `json:"code"`
	Flags           TransferFlags `json:"transfer_flags"`
	Timestamp       uint64        `json:"timestamp"`
	CreatedAt       string        `json:"created_at"`
}

// TransferFromDomain converts a domain transfer to a response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:              domain.FormatID(t.ID),
		DebitAccountID:  domain.FormatID(t.DebitAccountID),
		CreditAccountID: domain.FormatID(t.CreditAccountID),
		Amount:          domain.FormatAmount(t.Amount),
		PendingID:       domain.FormatID(t.PendingID),
		UserData128:     domain.FormatID(t.UserData128),
		UserData64:      t.UserData64,
		UserData32:      t.UserData32,
		Ledger:          t.Ledger,
		Code:            t.Code,
		Flags:           TransferFlags(t.Flags),
		Timestamp:       t.Timestamp,
		CreatedAt:       FormatTimestamp(t.Timestamp),
	}
}

// TransfersResponse wraps a list of transfers.
type TransfersResponse struct {
	Transfers []*TransferResponse `json:"transfers"`
}

// TransfersFromDomain converts domain transfers to a response.
func TransfersFromDomain(transfers []domain.Transfer) *TransfersResponse {
	out := make([]*TransferResponse, len(transfers))
	for i := range transfers {
		out[i] = TransferFromDomain(&transfers[i])
	}
	return &TransfersResponse{Transfers: out}
}

// AccountBalanceResponse is one historical balance snapshot.
type AccountBalanceResponse struct {
	DebitsPending  string `json:"debits_pending"`
	DebitsPosted   string `json:"debits_posted"`
	CreditsPending string `json:"credits_pending"`
	CreditsPosted  string `json:"credits_posted"`
	Timestamp      uint64 `json:"timestamp"`
	RecordedAt     string `json:"recorded_at"`
}

// AccountBalancesResponse wraps a list of balance snapshots.
type AccountBalancesResponse struct {
	AccountBalances []*AccountBalanceResponse `json:"account_balances"`
}

// BalancesFromDomain converts balance snapshots to a response.
func BalancesFromDomain(balances []domain.AccountBalance) *AccountBalancesResponse {
	out := make([]*AccountBalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = &AccountBalanceResponse{
			DebitsPending:  domain.FormatAmount(b.DebitsPending),
			DebitsPosted:   domain.FormatAmount(b.DebitsPosted),
			CreditsPending: domain.FormatAmount(b.CreditsPending),
			CreditsPosted:  domain.FormatAmount(b.CreditsPosted),
			Timestamp:      b.Timestamp,
			RecordedAt:     FormatTimestamp(b.Timestamp),
		}
	}
	return &AccountBalancesResponse{AccountBalances: out}
}

// LedgerTotalsResponse sums the counters of one ledger.
type LedgerTotalsResponse struct {
	Ledger         uint32 `json:"ledger"`
	Accounts       int    `json:"accounts"`
	DebitsPending  string `json:"debits_pending"`
	DebitsPosted   string `json:"debits_posted"`
	CreditsPending string `json:"credits_pending"`
	CreditsPosted  string `json:"credits_posted"`
	Balanced       bool   `json:"balanced"`
}

// ConsistencyResponse is returned by GET /ledger/consistency.
type ConsistencyResponse struct {
	Status     string                  `json:"status"`
	Consistent bool                    `json:"consistent"`
	Message    string                  `json:"message,omitempty"`
	Ledgers    []*LedgerTotalsResponse `json:"ledgers"`
}

// ConsistencyFromTotals builds the consistency report.
func ConsistencyFromTotals(totals []engine.LedgerTotals) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Status:     "consistent",
		Consistent: true,
		Ledgers:    make([]*LedgerTotalsResponse, len(totals)),
	}
	for i := range totals {
		t := &totals[i]
		balanced := t.Balanced()
		if !balanced {
			resp.Status = "inconsistent"
			resp.Consistent = false
		}
		resp.Ledgers[i] = &LedgerTotalsResponse{
			Ledger:         t.Ledger,
			Accounts:       t.Accounts,
			DebitsPending:  t.DebitsPending.String(),
			DebitsPosted:   t.DebitsPosted.String(),
			CreditsPending: t.CreditsPending.String(),
			CreditsPosted:  t.CreditsPosted.String(),
			Balanced:       balanced,
		}
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// FormatTimestamp renders engine nanoseconds as RFC3339Nano in UTC. Zero
// renders as an empty string.
func FormatTimestamp(ns uint64) string {
	if ns == 0 {
		return ""
	}
	return time.Unix(0, int64(ns)).UTC().Format(time.RFC3339Nano)
}
