package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/trustledger/internal/adapter/http/dto"
	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
)

// ClientLedgerService defines the behavior needed by ClientLedgerHandler.
type ClientLedgerService interface {
	CreateClientLedger(ctx context.Context, input usecase.CreateClientLedgerInput) (*domain.ClientLedger, error)
	GetClientLedger(ctx context.Context, id string) (*domain.ClientLedger, error)
	ListClientLedgers(ctx context.Context, input usecase.ListClientLedgersInput) ([]*domain.ClientLedger, error)
	CloseClientLedger(ctx context.Context, id string) (*domain.ClientLedger, error)
}

// ClientLedgerHandler handles client ledger HTTP requests.
type ClientLedgerHandler struct {
	ledgerUC  ClientLedgerService
	balanceUC *usecase.BalanceUseCase
}

// NewClientLedgerHandler creates a new ClientLedgerHandler.
func NewClientLedgerHandler(ledgerUC ClientLedgerService, balanceUC *usecase.BalanceUseCase) *ClientLedgerHandler {
	return &ClientLedgerHandler{ledgerUC: ledgerUC, balanceUC: balanceUC}
}

// Create opens a client ledger under a trust account.
func (h *ClientLedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateClientLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	ledger, err := h.ledgerUC.CreateClientLedger(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create client ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ClientLedgerFromDomain(ledger))
}

// Get retrieves a client ledger by ID.
func (h *ClientLedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing ledger ID", "")
		return
	}

	ledger, err := h.ledgerUC.GetClientLedger(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get client ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientLedgerFromDomain(ledger))
}

// ListByTrustAccount lists ledgers under a trust account.
func (h *ClientLedgerHandler) ListByTrustAccount(w http.ResponseWriter, r *http.Request) {
	trustAccountID := chi.URLParam(r, "id")
	if trustAccountID == "" {
		writeError(w, http.StatusBadRequest, "missing trust account ID", "")
		return
	}

	ledgers, err := h.ledgerUC.ListClientLedgers(r.Context(), usecase.ListClientLedgersInput{
		TrustAccountID: trustAccountID,
		Limit:          parseIntQuery(r, "limit", 20),
		Offset:         parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list client ledgers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListClientLedgersResponse{
		ClientLedgers: dto.ClientLedgersFromDomain(ledgers),
		Total:         int64(len(ledgers)),
	})
}

// Close closes a zero-balance client ledger.
func (h *ClientLedgerHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing ledger ID", "")
		return
	}

	ledger, err := h.ledgerUC.CloseClientLedger(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to close client ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientLedgerFromDomain(ledger))
}

// GetBalance returns the cached ledger balance, or the balance as of a
// point in time when the as_of query parameter is present.
func (h *ClientLedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing ledger ID", "")
		return
	}

	asOf, hasAsOf, err := parseTimeQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of parameter", err.Error())
		return
	}

	if hasAsOf {
		balance, err := h.balanceUC.GetBalanceAsOf(r.Context(), id, asOf)
		if err != nil {
			writeError(w, mapDomainError(err), "failed to get historical balance", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, dto.BalanceResponse{ID: id, Balance: balance, AsOf: &asOf})
		return
	}

	balance, err := h.balanceUC.GetClientLedgerBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get ledger balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{ID: id, Balance: balance})
}

// Verify recomputes the ledger balance from its transaction rows. A
// mismatch with the cached balance returns 409 with both values.
func (h *ClientLedgerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing ledger ID", "")
		return
	}

	balance, err := h.balanceUC.RecomputeBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "balance verification failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{ID: id, Balance: balance})
}
