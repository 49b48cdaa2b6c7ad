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

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	Reconcile(ctx context.Context, input usecase.ReconcileInput) (*domain.Reconciliation, error)
	GetReconciliation(ctx context.Context, id string) (*domain.Reconciliation, error)
	GetReconciliationHistory(ctx context.Context, input usecase.GetReconciliationHistoryInput) ([]*domain.Reconciliation, error)
}

// ReconciliationHandler handles reconciliation HTTP requests.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// Run reconciles a trust account against an imported bank statement. A
// discrepancy outcome is still a 201: the attempt is recorded either way.
func (h *ReconciliationHandler) Run(w http.ResponseWriter, r *http.Request) {
	trustAccountID := chi.URLParam(r, "id")
	if trustAccountID == "" {
		writeError(w, http.StatusBadRequest, "missing trust account ID", "")
		return
	}

	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	reconciliation, err := h.reconciliationUC.Reconcile(r.Context(), req.ToUseCaseInput(trustAccountID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReconciliationFromDomain(reconciliation))
}

// Get retrieves a reconciliation attempt with its items.
func (h *ReconciliationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing reconciliation ID", "")
		return
	}

	reconciliation, err := h.reconciliationUC.GetReconciliation(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get reconciliation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(reconciliation))
}

// History lists past reconciliation attempts for a trust account.
func (h *ReconciliationHandler) History(w http.ResponseWriter, r *http.Request) {
	trustAccountID := chi.URLParam(r, "id")
	if trustAccountID == "" {
		writeError(w, http.StatusBadRequest, "missing trust account ID", "")
		return
	}

	reconciliations, err := h.reconciliationUC.GetReconciliationHistory(r.Context(), usecase.GetReconciliationHistoryInput{
		TrustAccountID: trustAccountID,
		Limit:          parseIntQuery(r, "limit", 20),
		Offset:         parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reconciliations", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListReconciliationsResponse{
		Reconciliations: dto.ReconciliationsFromDomain(reconciliations),
		Total:           int64(len(reconciliations)),
	})
}
