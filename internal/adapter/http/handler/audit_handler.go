package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/trustledger/internal/domain"
)

// AuditService defines the behavior needed by AuditHandler.
type AuditService interface {
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// AuditHandler serves the audit trail for a resource.
type AuditHandler struct {
	auditRepo AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditRepo AuditService) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID           string      `json:"id"`
	FirmID       string      `json:"firm_id"`
	ActorID      string      `json:"actor_id"`
	Action       string      `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id"`
	BeforeState  domain.JSON `json:"before_state,omitempty"`
	AfterState   domain.JSON `json:"after_state,omitempty"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

var auditResourceTypes = map[string]string{
	"trust-accounts":  domain.ResourceTypeTrustAccount,
	"ledgers":         domain.ResourceTypeClientLedger,
	"transactions":    domain.ResourceTypeTransaction,
	"statements":      domain.ResourceTypeBankStatement,
	"reconciliations": domain.ResourceTypeReconciliation,
}

// ListByResource returns audit entries for a resource, newest first.
func (h *AuditHandler) ListByResource(w http.ResponseWriter, r *http.Request) {
	resourceType, ok := auditResourceTypes[chi.URLParam(r, "resource")]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown resource type", "")
		return
	}

	resourceID := chi.URLParam(r, "id")
	if resourceID == "" {
		writeError(w, http.StatusBadRequest, "missing resource ID", "")
		return
	}

	logs, err := h.auditRepo.GetByResourceID(r.Context(), resourceType, resourceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load audit trail", err.Error())
		return
	}

	result := make([]AuditLogResponse, len(logs))
	for i, log := range logs {
		result[i] = AuditLogResponse{
			ID:           log.ID,
			FirmID:       log.FirmID,
			ActorID:      log.ActorID,
			Action:       log.Action,
			ResourceType: log.ResourceType,
			ResourceID:   log.ResourceID,
			BeforeState:  log.BeforeState,
			AfterState:   log.AfterState,
			Status:       log.Status,
			ErrorMessage: log.ErrorMessage,
			CreatedAt:    log.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, result)
}
