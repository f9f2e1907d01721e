package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lukechampine.com/uint128"

	"github.com/iho/ledgerd/internal/adapter/http/dto"
	"github.com/iho/ledgerd/internal/domain"
)

type transferServiceStub struct {
	createFn func(ctx context.Context, transfers []domain.Transfer) ([]domain.CreateResult, error)
	lookupFn func(ctx context.Context, ids []domain.Uint128) ([]domain.Transfer, error)
	queryFn  func(ctx context.Context, filter domain.QueryFilter) ([]domain.Transfer, error)
}

func (s *transferServiceStub) CreateTransfers(ctx context.Context, transfers []domain.Transfer) ([]domain.CreateResult, error) {
	return s.createFn(ctx, transfers)
}

func (s *transferServiceStub) LookupTransfers(ctx context.Context, ids []domain.Uint128) ([]domain.Transfer, error) {
	return s.lookupFn(ctx, ids)
}

func (s *transferServiceStub) QueryTransfers(ctx context.Context, filter domain.QueryFilter) ([]domain.Transfer, error) {
	return s.queryFn(ctx, filter)
}

func TestTransferHandler_Create_Success(t *testing.T) {
	var captured []domain.Transfer
	handler := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, transfers []domain.Transfer) ([]domain.CreateResult, error) {
			captured = transfers
			return []domain.CreateResult{domain.ResultLinkedChainFailed, domain.ResultExceedsCredits}, nil
		},
	})

	req := postJSON(t, "/transfers/create", dto.CreateTransfersRequest{Transfers: []dto.TransferInput{
		{ID: "1", DebitAccountID: "a", CreditAccountID: "b", Amount: "10", Ledger: 1, Code: 1, Flags: dto.TransferFlags{Linked: true}},
		{ID: "2", DebitAccountID: "a", CreditAccountID: "b", Amount: "1000", Ledger: 1, Code: 1},
	}})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(captured) != 2 || !captured[0].Flags.Linked || !captured[1].Amount.Equals(uint128.From64(1000)) {
		t.Fatalf("unexpected transfers %+v", captured)
	}

	var resp dto.CreateResultsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Results[0].Result != domain.ResultLinkedChainFailed.String() || resp.Results[1].Result != domain.ResultExceedsCredits.String() {
		t.Fatalf("unexpected results %+v", resp.Results)
	}
}

func TestTransferHandler_Create_InvalidAmount(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{})

	req := postJSON(t, "/transfers/create", dto.CreateTransfersRequest{Transfers: []dto.TransferInput{{ID: "1", Amount: "1.5"}}})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Create_JournalFailure(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, transfers []domain.Transfer) ([]domain.CreateResult, error) {
			return nil, errors.New("journal append: connection refused")
		},
	})

	req := postJSON(t, "/transfers/create", dto.CreateTransfersRequest{Transfers: []dto.TransferInput{{ID: "1"}}})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestTransferHandler_Lookup(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		lookupFn: func(ctx context.Context, ids []domain.Uint128) ([]domain.Transfer, error) {
			return []domain.Transfer{{ID: ids[0], Amount: uint128.From64(10), Timestamp: 1}}, nil
		},
	})

	req := postJSON(t, "/transfers/lookup", dto.LookupTransfersRequest{TransferIDs: []string{"ff"}})
	rec := httptest.NewRecorder()

	handler.Lookup(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TransfersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transfers) != 1 || resp.Transfers[0].ID != "ff" || resp.Transfers[0].Amount != "10" {
		t.Fatalf("unexpected transfers %+v", resp.Transfers)
	}
}

func TestTransferHandler_Lookup_TooMany(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		lookupFn: func(ctx context.Context, ids []domain.Uint128) ([]domain.Transfer, error) {
			return nil, domain.ErrBatchTooLarge
		},
	})

	req := postJSON(t, "/transfers/lookup", dto.LookupTransfersRequest{TransferIDs: []string{"1"}})
	rec := httptest.NewRecorder()

	handler.Lookup(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Query(t *testing.T) {
	var captured domain.QueryFilter
	handler := NewTransferHandler(&transferServiceStub{
		queryFn: func(ctx context.Context, filter domain.QueryFilter) ([]domain.Transfer, error) {
			captured = filter
			return []domain.Transfer{}, nil
		},
	})

	req := postJSON(t, "/transfers/query", dto.QueryFilterRequest{Filter: dto.QueryFilter{
		UserData64: 42,
		Limit:      100,
		Flags:      dto.QueryFilterFlags{Reversed: true},
	}})
	rec := httptest.NewRecorder()

	handler.Query(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.UserData64 != 42 || !captured.Reversed {
		t.Fatalf("unexpected filter %+v", captured)
	}
}
