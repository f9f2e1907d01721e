package dto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/iho/ledgerd/internal/domain"
)

// AccountFlags mirrors domain.AccountFlags on the wire.
type AccountFlags struct {
	Linked                     bool `json:"linked,omitempty"`
	DebitsMustNotExceedCredits bool `json:"debits_must_not_exceed_credits,omitempty"`
	CreditsMustNotExceedDebits bool `json:"credits_must_not_exceed_debits,omitempty"`
	History                    bool `json:"history,omitempty"`
}

// AccountInput is one account in a create request. Balances and timestamp
// are accepted so that the engine can reject non-zero values.
type AccountInput struct {
	ID             string       `json:"id"`
	DebitsPending  string       `json:"debits_pending,omitempty"`
	DebitsPosted   string       `json:"debits_posted,omitempty"`
	CreditsPending string       `json:"credits_pending,omitempty"`
	CreditsPosted  string       `json:"credits_posted,omitempty"`
	UserData128    string       `json:"user_data_128,omitempty"`
	UserData64     uint64       `json:"user_data_64,omitempty"`
	UserData32     uint32       `json:"user_data_32,omitempty"`
	Ledger         uint32       `json:"ledger"`
	Code           uint16       `json:"code"`
	Flags          AccountFlags `json:"flags"`
	Timestamp      uint64       `json:"timestamp,omitempty"`
}

// ToDomain converts the input to a domain account.
func (in *AccountInput) ToDomain() (domain.Account, error) {
	var (
		a   domain.Account
		err error
	)
	if a.ID, err = domain.ParseID(in.ID); err != nil {
		return a, fmt.Errorf("id: %w", err)
	}
	if a.UserData128, err = domain.ParseID(in.UserData128); err != nil {
		return a, fmt.Errorf("user_data_128: %w", err)
	}
	counters := []struct {
		name string
		raw  string
		dst  *domain.Uint128
	}{
		{"debits_pending", in.DebitsPending, &a.DebitsPending},
		{"debits_posted", in.DebitsPosted, &a.DebitsPosted},
		{"credits_pending", in.CreditsPending, &a.CreditsPending},
		{"credits_posted", in.CreditsPosted, &a.CreditsPosted},
	}
	for _, c := range counters {
		if *c.dst, err = domain.ParseAmount(c.raw); err != nil {
			return a, fmt.Errorf("%s: %w", c.name, err)
		}
	}
	a.UserData64 = in.UserData64
	a.UserData32 = in.UserData32
	a.Ledger = in.Ledger
	a.Code = in.Code
	a.Flags = domain.AccountFlags(in.Flags)
	a.Timestamp = in.Timestamp
	return a, nil
}

// CreateAccountsRequest is the body of POST /accounts/create.
type CreateAccountsRequest struct {
	Accounts []AccountInput `json:"accounts"`
}

// ToDomain converts every account, reporting the first malformed item.
func (r *CreateAccountsRequest) ToDomain() ([]domain.Account, error) {
	out := make([]domain.Account, len(r.Accounts))
	for i := range r.Accounts {
		a, err := r.Accounts[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("accounts[%d]: %w", i, err)
		}
		out[i] = a
	}
	return out, nil
}

// TransferFlags mirrors domain.TransferFlags on the wire.
type TransferFlags struct {
	Linked              bool `json:"linked,omitempty"`
	Pending             bool `json:"pending,omitempty"`
	PostPendingTransfer bool `json:"post_pending_transfer,omitempty"`
	VoidPendingTransfer bool `json:"void_pending_transfer,omitempty"`
	BalancingDebit      bool `json:"balancing_debit,omitempty"`
	BalancingCredit     bool `json:"balancing_credit,omitempty"`
}

// TransferInput is one transfer in a create request.
type TransferInput struct {
	ID              string        `json:"id"`
	DebitAccountID  string        `json:"debit_account_id,omitempty"`
	CreditAccountID string        `json:"credit_account_id,omitempty"`
	Amount          string        `json:"amount,omitempty"`
	PendingID       string        `json:"pending_id,omitempty"`
	UserData128     string        `json:"user_data_128,omitempty"`
	UserData64      uint64        `json:"user_data_64,omitempty"`
	UserData32      uint32        `json:"user_data_32,omitempty"`
	Ledger          uint32        `json:"ledger,omitempty"`
	Code            uint16        `json:"code,omitempty"`
	Flags           TransferFlags `json:"transfer_flags"`
	Timestamp       uint64        `json:"timestamp,omitempty"`
}

// ToDomain converts the input to a domain transfer.
func (in *TransferInput) ToDomain() (domain.Transfer, error) {
	var (
		t   domain.Transfer
		err error
	)
	ids := []struct {
		name string
		raw  string
		dst  *domain.Uint128
	}{
		{"id", in.ID, &t.ID},
		{"debit_account_id", in.DebitAccountID, &t.DebitAccountID},
		{"credit_account_id", in.CreditAccountID, &t.CreditAccountID},
		{"pending_id", in.PendingID, &t.PendingID},
		{"user_data_128", in.UserData128, &t.UserData128},
	}
	for _, id := range ids {
		if *id.dst, err = domain.ParseID(id.raw); err != nil {
			return t, fmt.Errorf("%s: %w", id.name, err)
		}
	}
	if t.Amount, err = domain.ParseAmount(in.Amount); err != nil {
		return t, fmt.Errorf("amount: %w", err)
	}
	t.UserData64 = in.UserData64
	t.UserData32 = in.UserData32
	t.Ledger = in.Ledger
	t.Code = in.Code
	t.Flags = domain.TransferFlags(in.Flags)
	t.Timestamp = in.Timestamp
	return t, nil
}

// CreateTransfersRequest is the body of POST /transfers/create.
type CreateTransfersRequest struct {
	Transfers []TransferInput `json:"transfers"`
}

// ToDomain converts every transfer, reporting the first malformed item.
func (r *CreateTransfersRequest) ToDomain() ([]domain.Transfer, error) {
	out := make([]domain.Transfer, len(r.Transfers))
	for i := range r.Transfers {
		t, err := r.Transfers[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("transfers[%d]: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// LookupAccountsRequest is the body of POST /accounts/lookup.
type LookupAccountsRequest struct {
	AccountIDs []string `json:"account_ids"`
}

// ToDomain parses the requested ids.
func (r *LookupAccountsRequest) ToDomain() ([]domain.Uint128, error) {
	return parseIDs("account_ids", r.AccountIDs)
}

// LookupTransfersRequest is the body of POST /transfers/lookup.
type LookupTransfersRequest struct {
	TransferIDs []string `json:"transfer_ids"`
}

// ToDomain parses the requested ids.
func (r *LookupTransfersRequest) ToDomain() ([]domain.Uint128, error) {
	return parseIDs("transfer_ids", r.TransferIDs)
}

func parseIDs(field string, raw []string) ([]domain.Uint128, error) {
	out := make([]domain.Uint128, len(raw))
	for i, s := range raw {
		id, err := domain.ParseID(s)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		out[i] = id
	}
	return out, nil
}

// AccountFilterFlags mirrors domain.AccountFilterFlags on the wire.
type AccountFilterFlags struct {
	Debits   bool `json:"debits,omitempty"`
	Credits  bool `json:"credits,omitempty"`
	Reserved bool `json:"reserved,omitempty"`
	Reversed bool `json:"reversed,omitempty"`
}

// TimeWindow carries the inclusive timestamp bounds of a filter. Each bound
// may be given as nanoseconds or as an RFC3339Nano string; the string wins
// when both are set.
type TimeWindow struct {
	TimestampMin     uint64 `json:"timestamp_min,omitempty"`
	TimestampMax     uint64 `json:"timestamp_max,omitempty"`
	TimestampMinTime string `json:"timestamp_min_time,omitempty"`
	TimestampMaxTime string `json:"timestamp_max_time,omitempty"`
}

func (w *TimeWindow) bounds() (uint64, uint64, error) {
	lo, err := resolveBound(w.TimestampMin, w.TimestampMinTime)
	if err != nil {
		return 0, 0, fmt.Errorf("timestamp_min_time: %w", err)
	}
	hi, err := resolveBound(w.TimestampMax, w.TimestampMaxTime)
	if err != nil {
		return 0, 0, fmt.Errorf("timestamp_max_time: %w", err)
	}
	return lo, hi, nil
}

// AccountFilter is the wire form of domain.AccountFilter.
type AccountFilter struct {
	AccountID string `json:"account_id"`
	TimeWindow
	Limit uint32             `json:"limit"`
	Flags AccountFilterFlags `json:"flags"`
}

// AccountFilterRequest is the body of POST /account/transfers and
// POST /account/balances.
type AccountFilterRequest struct {
	Filter AccountFilter `json:"filter"`
}

// ToDomain converts the filter.
func (r *AccountFilterRequest) ToDomain() (domain.AccountFilter, error) {
	var (
		f   domain.AccountFilter
		err error
	)
	if f.AccountID, err = domain.ParseID(r.Filter.AccountID); err != nil {
		return f, fmt.Errorf("account_id: %w", err)
	}
	if f.TimestampMin, f.TimestampMax, err = r.Filter.bounds(); err != nil {
		return f, err
	}
	f.Limit = r.Filter.Limit
	f.Flags = domain.AccountFilterFlags(r.Filter.Flags)
	return f, nil
}

// QueryFilterFlags carries the ordering flag of a query filter.
type QueryFilterFlags struct {
	Reversed bool `json:"reversed,omitempty"`
}

// QueryFilter is the wire form of domain.QueryFilter.
type QueryFilter struct {
	UserData128 string `json:"user_data_128,omitempty"`
	UserData64  uint64 `json:"user_data_64,omitempty"`
	UserData32  uint32 `json:"user_data_32,omitempty"`
	Ledger      uint32 `json:"ledger,omitempty"`
	Code        uint16 `json:"code,omitempty"`
	TimeWindow
	Limit uint32           `json:"limit"`
	Flags QueryFilterFlags `json:"flags"`
}

// QueryFilterRequest is the body of POST /accounts/query and
// POST /transfers/query.
type QueryFilterRequest struct {
	Filter QueryFilter `json:"filter"`
}

// ToDomain converts the filter.
func (r *QueryFilterRequest) ToDomain() (domain.QueryFilter, error) {
	var (
		f   domain.QueryFilter
		err error
	)
	if f.UserData128, err = domain.ParseID(r.Filter.UserData128); err != nil {
		return f, fmt.Errorf("user_data_128: %w", err)
	}
	if f.TimestampMin, f.TimestampMax, err = r.Filter.bounds(); err != nil {
		return f, err
	}
	f.UserData64 = r.Filter.UserData64
	f.UserData32 = r.Filter.UserData32
	f.Ledger = r.Filter.Ledger
	f.Code = r.Filter.Code
	f.Limit = r.Filter.Limit
	f.Reversed = r.Filter.Flags.Reversed
	return f, nil
}

// resolveBound picks the RFC3339Nano form of a bound when present. A bare
// integer string is read as nanoseconds.
func resolveBound(ns uint64, text string) (uint64, error) {
	if text == "" {
		return ns, nil
	}
	if v, err := strconv.ParseUint(text, 10, 64); err == nil {
		return v, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidTimestamp, err)
	}
	if ts.UnixNano() <= 0 {
		return 0, fmt.Errorf("%w: %s is before the epoch", domain.ErrInvalidTimestamp, text)
	}
	return uint64(ts.UnixNano()), nil
}
