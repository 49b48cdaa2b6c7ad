package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/adapter/http/dto"
	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
)

type transactionServiceStub struct {
	postFn func(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error)
	voidFn func(ctx context.Context, input usecase.VoidTransactionInput) (*domain.Transaction, error)
	getFn  func(ctx context.Context, id string) (*domain.Transaction, error)
	listFn func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

func (s *transactionServiceStub) PostTransaction(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error) {
	return s.postFn(ctx, input)
}

func (s *transactionServiceStub) VoidTransaction(ctx context.Context, input usecase.VoidTransactionInput) (*domain.Transaction, error) {
	return s.voidFn(ctx, input)
}

func (s *transactionServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.listFn(ctx, input)
}

func TestTransactionHandler_Post_Success(t *testing.T) {
	var captured usecase.PostTransactionInput
	handler := NewTransactionHandler(&transactionServiceStub{
		postFn: func(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{
				ID:           "txn-1",
				Type:         input.Type,
				Amount:       input.Amount,
				BalanceAfter: input.Amount,
				Status:       domain.TransactionStatusCompleted,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.PostTransactionRequest{
		TrustAccountID: "ta-1",
		ClientLedgerID: "led-1",
		Type:           "deposit",
		Amount:         decimal.RequireFromString("100.50"),
		Description:    "retainer",
		Reference:      "WIRE-1",
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Post(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Type != domain.TransactionTypeDeposit {
		t.Errorf("expected deposit type, got %q", captured.Type)
	}
	if !captured.Amount.Equal(decimal.RequireFromString("100.50")) {
		t.Errorf("expected amount 100.50, got %s", captured.Amount)
	}
	if captured.Reference != "WIRE-1" {
		t.Errorf("expected reference WIRE-1, got %q", captured.Reference)
	}
}

func TestTransactionHandler_Post_InsufficientFunds(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		postFn: func(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error) {
			return nil, domain.ErrInsufficientTrustFunds
		},
	})

	body, _ := json.Marshal(dto.PostTransactionRequest{
		TrustAccountID: "ta-1",
		ClientLedgerID: "led-1",
		Type:           "withdrawal",
		Amount:         decimal.RequireFromString("9999"),
		Description:    "overdraft",
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Post(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransactionHandler_Void(t *testing.T) {
	var captured usecase.VoidTransactionInput
	originalID := "txn-1"
	handler := NewTransactionHandler(&transactionServiceStub{
		voidFn: func(ctx context.Context, input usecase.VoidTransactionInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{
				ID:                 "txn-2",
				Amount:             decimal.RequireFromString("250.00"),
				VoidsTransactionID: &originalID,
				Status:             domain.TransactionStatusCompleted,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.VoidTransactionRequest{Description: "issued in error"})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/transactions/txn-1/void", bytes.NewReader(body)), "id", "txn-1")
	rec := httptest.NewRecorder()

	handler.Void(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.TransactionID != "txn-1" {
		t.Errorf("expected transaction ID from URL, got %q", captured.TransactionID)
	}
	if captured.Description != "issued in error" {
		t.Errorf("expected description from body, got %q", captured.Description)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.VoidsTransactionID == nil || *resp.VoidsTransactionID != "txn-1" {
		t.Errorf("expected voids reference txn-1, got %v", resp.VoidsTransactionID)
	}
}

func TestTransactionHandler_Void_AlreadyVoid(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		voidFn: func(ctx context.Context, input usecase.VoidTransactionInput) (*domain.Transaction, error) {
			return nil, domain.ErrTransactionAlreadyVoid
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/transactions/txn-1/void", bytes.NewReader([]byte("{}"))), "id", "txn-1")
	rec := httptest.NewRecorder()

	handler.Void(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}
