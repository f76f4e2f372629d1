package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/pkg/httpx"
)

type MeHandler struct {
	Users   *service.UserService
	Credits *service.CreditService
	Now     func() time.Time
}

// HandleMe handles GET /v1/me
//
//	@Summary		Current User
//	@Description	Returns the caller's plan, role, entitlements and credit balance. The ledger user is created, with the signup allowance, on first contact.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	ledgersdk.UserResponse	"user and balance"
//	@Failure		401	{object}	ledgersdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	ledgersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/me [get].
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := userID(r)

	u, err := h.Users.Get(ctx, id)
	if err != nil {
		writeServiceError(w, r, err, "get user")
		return
	}
	bal, err := h.Credits.Balance(ctx, id)
	if err != nil {
		writeServiceError(w, r, err, "read balance")
		return
	}

	resp := toUser(u, nowUTC(h.Now))
	resp.Balance = toBalance(bal)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func nowUTC(fn func() time.Time) time.Time {
	if fn != nil {
		return fn().UTC()
	}
	return time.Now().UTC()
}
