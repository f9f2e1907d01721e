package handler

import (
	"context"
	"net/http"

	"github.com/iho/ledgerd/internal/adapter/http/dto"
	"github.com/iho/ledgerd/internal/domain"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccounts(ctx context.Context, accounts []domain.Account) ([]domain.CreateResult, error)
	LookupAccounts(ctx context.Context, ids []domain.Uint128) ([]domain.Account, error)
	QueryAccounts(ctx context.Context, filter domain.QueryFilter) ([]domain.Account, error)
	GetAccountTransfers(ctx context.Context, filter domain.AccountFilter) ([]domain.Transfer, error)
	GetAccountBalances(ctx context.Context, filter domain.AccountFilter) ([]domain.AccountBalance, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create submits a batch of accounts. Per-item failures are reported in the
// results list with status 200.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	accounts, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account", err.Error())
		return
	}

	results, err := h.accountUC.CreateAccounts(r.Context(), accounts)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResultsFromDomain(results))
}

// Lookup returns the accounts that exist among the requested ids.
func (h *AccountHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req dto.LookupAccountsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ids, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id", err.Error())
		return
	}

	accounts, err := h.accountUC.LookupAccounts(r.Context(), ids)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to lookup accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Query returns accounts matching a query filter.
func (h *AccountHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req dto.QueryFilterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	filter, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	accounts, err := h.accountUC.QueryAccounts(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to query accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Transfers returns the transfers touching one account.
func (h *AccountHandler) Transfers(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.accountFilter(w, r)
	if !ok {
		return
	}

	transfers, err := h.accountUC.GetAccountTransfers(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}

// Balances returns the recorded balance history of one account.
func (h *AccountHandler) Balances(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.accountFilter(w, r)
	if !ok {
		return
	}

	balances, err := h.accountUC.GetAccountBalances(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(balances))
}

func (h *AccountHandler) accountFilter(w http.ResponseWriter, r *http.Request) (domain.AccountFilter, bool) {
	var req dto.AccountFilterRequest
	if !decodeJSON(w, r, &req) {
		return domain.AccountFilter{}, false
	}

	filter, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return domain.AccountFilter{}, false
	}
	return filter, true
}
