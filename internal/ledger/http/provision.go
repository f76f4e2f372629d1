package http

import (
	"net/http"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/pkg/httpx"
	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
)

// provisionUser creates the ledger user for the token's subject on first
// contact, so every secured handler can assume the user row exists.
func provisionUser(users *service.UserService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := httpx.ClaimsFromContext(r.Context())
			if !ok || claims.Subject == "" {
				httpx.WriteError(w, http.StatusUnauthorized, ledgersdk.ErrorCodeUnauthorized, "Authentication required")
				return
			}

			if _, err := users.EnsureUser(r.Context(), claims.Subject, claims.Email, claims.Name); err != nil {
				writeServiceError(w, r, err, "provision user")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
