package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/trustledger/internal/adapter/http/dto"
	"github.com/iho/trustledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var mismatch *domain.BalanceMismatchError
	if errors.As(err, &mismatch) {
		return http.StatusConflict
	}

	switch {
	case errors.Is(err, domain.ErrTrustAccountNotFound),
		errors.Is(err, domain.ErrLedgerNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrStatementNotFound),
		errors.Is(err, domain.ErrReconciliationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFirmMismatch):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientTrustFunds),
		errors.Is(err, domain.ErrTrustAccountNotActive),
		errors.Is(err, domain.ErrLedgerNotActive),
		errors.Is(err, domain.ErrLedgerNotEmpty),
		errors.Is(err, domain.ErrAccountNotEmpty),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrTransactionAlreadyVoid),
		errors.Is(err, domain.ErrStatementOutOfSequence):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLedgerAccountMismatch),
		errors.Is(err, domain.ErrInvalidTransactionType),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrInvalidBankName),
		errors.Is(err, domain.ErrInvalidAccountNumber),
		errors.Is(err, domain.ErrInvalidRoutingNumber),
		errors.Is(err, domain.ErrInvalidDescription),
		errors.Is(err, domain.ErrInvalidClientID),
		errors.Is(err, domain.ErrInvalidMatterID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseTimeQuery parses an RFC 3339 or date-only query parameter.
func parseTimeQuery(r *http.Request, key string) (time.Time, bool, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, false, nil
	}

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, true, nil
	}

	t, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return time.Time{}, false, err
	}

	return t, true, nil
}
