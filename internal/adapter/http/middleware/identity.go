package middleware

import (
	"net/http"

	"github.com/iho/trustledger/internal/domain"
)

const (
	// FirmIDHeader carries the acting firm, set by the upstream gateway.
	FirmIDHeader = "X-Firm-ID"
	// ActorIDHeader carries the acting user, set by the upstream gateway.
	ActorIDHeader = "X-Actor-ID"
)

// Identity extracts the acting firm and user from gateway headers and
// attaches them to the request context. Requests without a firm are
// rejected: every operation in the ledger is scoped to a firm.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firmID := r.Header.Get(FirmIDHeader)
		if firmID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing ` + FirmIDHeader + ` header"}`))
			return
		}

		actor := domain.Actor{
			FirmID: firmID,
			UserID: r.Header.Get(ActorIDHeader),
		}

		next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), actor)))
	})
}
