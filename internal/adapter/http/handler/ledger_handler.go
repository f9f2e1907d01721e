package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/ledgerd/internal/adapter/http/dto"
	"github.com/iho/ledgerd/internal/domain"
	"github.com/iho/ledgerd/internal/engine"
	"github.com/iho/ledgerd/internal/usecase"
)

// LedgerService defines the ledger-wide behavior needed by LedgerHandler.
type LedgerService interface {
	GetID(ctx context.Context) domain.Uint128
	CheckConsistency(ctx context.Context) ([]engine.LedgerTotals, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// GetID allocates a fresh identifier.
func (h *LedgerHandler) GetID(w http.ResponseWriter, r *http.Request) {
	id := h.ledgerUC.GetID(r.Context())
	writeJSON(w, http.StatusOK, dto.IDResponse{ID: domain.FormatID(id)})
}

// CheckConsistency checks that every ledger is balanced.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil && !errors.Is(err, usecase.ErrInconsistentLedger) {
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	resp := dto.ConsistencyFromTotals(totals)
	if err != nil {
		resp.Status = "inconsistent"
		resp.Consistent = false
		resp.Message = err.Error()
		writeJSON(w, http.StatusConflict, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
