package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/adapter/http/dto"
	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
)

// TrustAccountService defines the behavior needed by TrustAccountHandler.
type TrustAccountService interface {
	CreateTrustAccount(ctx context.Context, input usecase.CreateTrustAccountInput) (*domain.TrustAccount, error)
	GetTrustAccount(ctx context.Context, id string) (*domain.TrustAccount, error)
	ListTrustAccounts(ctx context.Context, input usecase.ListTrustAccountsInput) ([]*domain.TrustAccount, error)
	CloseTrustAccount(ctx context.Context, id string) (*domain.TrustAccount, error)
	FreezeTrustAccount(ctx context.Context, id string) (*domain.TrustAccount, error)
	UnfreezeTrustAccount(ctx context.Context, id string) (*domain.TrustAccount, error)
}

// TrustAccountBalanceService resolves the pooled account balance.
type TrustAccountBalanceService interface {
	GetTrustAccountBalance(ctx context.Context, trustAccountID string) (decimal.Decimal, error)
}

// TrustAccountHandler handles trust account HTTP requests.
type TrustAccountHandler struct {
	accountUC TrustAccountService
	balanceUC TrustAccountBalanceService
}

// NewTrustAccountHandler creates a new TrustAccountHandler.
func NewTrustAccountHandler(accountUC TrustAccountService, balanceUC TrustAccountBalanceService) *TrustAccountHandler {
	return &TrustAccountHandler{accountUC: accountUC, balanceUC: balanceUC}
}

// Create opens a new trust account for the acting firm.
func (h *TrustAccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTrustAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor, ok := domain.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity", "")
		return
	}

	account, err := h.accountUC.CreateTrustAccount(r.Context(), req.ToUseCaseInput(actor.FirmID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create trust account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TrustAccountFromDomain(account))
}

// Get retrieves a trust account by ID.
func (h *TrustAccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing trust account ID", "")
		return
	}

	account, err := h.accountUC.GetTrustAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get trust account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TrustAccountFromDomain(account))
}

// List lists the acting firm's trust accounts.
func (h *TrustAccountHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := domain.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity", "")
		return
	}

	accounts, err := h.accountUC.ListTrustAccounts(r.Context(), usecase.ListTrustAccountsInput{
		FirmID: actor.FirmID,
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list trust accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTrustAccountsResponse{
		TrustAccounts: dto.TrustAccountsFromDomain(accounts),
		Total:         int64(len(accounts)),
	})
}

// Close closes an empty trust account.
func (h *TrustAccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountUC.CloseTrustAccount, "failed to close trust account")
}

// Freeze suspends all postings on a trust account.
func (h *TrustAccountHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountUC.FreezeTrustAccount, "failed to freeze trust account")
}

// Unfreeze returns a frozen trust account to active.
func (h *TrustAccountHandler) Unfreeze(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountUC.UnfreezeTrustAccount, "failed to unfreeze trust account")
}

// GetBalance returns the pooled balance: the sum of active client ledger
// balances.
func (h *TrustAccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing trust account ID", "")
		return
	}

	balance, err := h.balanceUC.GetTrustAccountBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get trust account balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{ID: id, Balance: balance})
}

func (h *TrustAccountHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id string) (*domain.TrustAccount, error),
	failureMessage string,
) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing trust account ID", "")
		return
	}

	account, err := op(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), failureMessage, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TrustAccountFromDomain(account))
}
