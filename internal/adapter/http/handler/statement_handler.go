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

// StatementService defines the behavior needed by StatementHandler.
type StatementService interface {
	ImportStatement(ctx context.Context, input usecase.ImportStatementInput) (*domain.BankStatement, error)
	GetStatement(ctx context.Context, id string) (*domain.BankStatement, error)
	ListStatements(ctx context.Context, input usecase.ListStatementsInput) ([]*domain.BankStatement, error)
}

// StatementHandler handles bank statement HTTP requests.
type StatementHandler struct {
	statementUC StatementService
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC StatementService) *StatementHandler {
	return &StatementHandler{statementUC: statementUC}
}

// Import records a bank statement snapshot.
func (h *StatementHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	statement, err := h.statementUC.ImportStatement(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to import statement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BankStatementFromDomain(statement))
}

// Get retrieves a statement with its cleared items.
func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing statement ID", "")
		return
	}

	statement, err := h.statementUC.GetStatement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get statement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BankStatementFromDomain(statement))
}

// ListByTrustAccount lists imported statements for a trust account.
func (h *StatementHandler) ListByTrustAccount(w http.ResponseWriter, r *http.Request) {
	trustAccountID := chi.URLParam(r, "id")
	if trustAccountID == "" {
		writeError(w, http.StatusBadRequest, "missing trust account ID", "")
		return
	}

	statements, err := h.statementUC.ListStatements(r.Context(), usecase.ListStatementsInput{
		TrustAccountID: trustAccountID,
		Limit:          parseIntQuery(r, "limit", 20),
		Offset:         parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list statements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListBankStatementsResponse{
		Statements: dto.BankStatementsFromDomain(statements),
		Total:      int64(len(statements)),
	})
}
