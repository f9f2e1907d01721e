package handler

import (
	"context"
	"net/http"

	"github.com/iho/ledgerd/internal/adapter/http/dto"
	"github.com/iho/ledgerd/internal/domain"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	CreateTransfers(ctx context.Context, transfers []domain.Transfer) ([]domain.CreateResult, error)
	LookupTransfers(ctx context.Context, ids []domain.Uint128) ([]domain.Transfer, error)
	QueryTransfers(ctx context.Context, filter domain.QueryFilter) ([]domain.Transfer, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create submits a batch of transfers.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransfersRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	transfers, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer", err.Error())
		return
	}

	results, err := h.transferUC.CreateTransfers(r.Context(), transfers)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResultsFromDomain(results))
}

// Lookup returns the transfers that exist among the requested ids.
func (h *TransferHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req dto.LookupTransfersRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ids, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer id", err.Error())
		return
	}

	transfers, err := h.transferUC.LookupTransfers(r.Context(), ids)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to lookup transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}

// Query returns transfers matching a query filter.
func (h *TransferHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req dto.QueryFilterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	filter, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	transfers, err := h.transferUC.QueryTransfers(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to query transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}
