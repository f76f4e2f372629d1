package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/pkg/httpx"
	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
)

const (
	defaultAuditPage = 50
	maxAuditPage     = 200
)

// AdminHandler handles the privileged user-management endpoints. The
// service checks the caller's role on every call.
type AdminHandler struct {
	Admin *service.AdminService
	Now   func() time.Time
}

func actor(r *http.Request) service.Actor {
	return service.Actor{UserID: userID(r), IPAddress: httpx.IPKeyExtractor(r)}
}

// HandleGrantEntitlement handles POST /v1/admin/users/{id}/entitlements
//
//	@Summary		Grant Entitlement
//	@Description	Adds a feature entitlement to a user. The change and its reason are audit logged.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"User ID"
//	@Param			request	body		ledgersdk.EntitlementRequest	true	"Entitlement and reason"
//	@Success		200		{object}	ledgersdk.UserResponse			"updated user"
//	@Failure		403		{object}	ledgersdk.ErrorResponse			"admin only"
//	@Failure		404		{object}	ledgersdk.ErrorResponse			"unknown user"
//	@Failure		409		{object}	ledgersdk.ErrorResponse			"user changed concurrently"
//	@Router			/v1/admin/users/{id}/entitlements [post].
func (h *AdminHandler) HandleGrantEntitlement(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.EntitlementRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	u, err := h.Admin.GrantEntitlement(r.Context(), actor(r), r.PathValue("id"), req.Name, req.Reason)
	if err != nil {
		writeServiceError(w, r, err, "grant entitlement")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u, nowUTC(h.Now)))
}

// HandleRevokeEntitlement handles DELETE /v1/admin/users/{id}/entitlements/{name}
//
//	@Summary		Revoke Entitlement
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"User ID"
//	@Param			name	path		string					true	"Entitlement"
//	@Param			reason	query		string					true	"Audit reason"
//	@Success		200		{object}	ledgersdk.UserResponse	"updated user"
//	@Failure		400		{object}	ledgersdk.ErrorResponse	"reason is required"
//	@Failure		403		{object}	ledgersdk.ErrorResponse	"admin only"
//	@Failure		409		{object}	ledgersdk.ErrorResponse	"user changed concurrently"
//	@Router			/v1/admin/users/{id}/entitlements/{name} [delete].
func (h *AdminHandler) HandleRevokeEntitlement(w http.ResponseWriter, r *http.Request) {
	req := ledgersdk.EntitlementRequest{
		Name:   r.PathValue("name"),
		Reason: r.URL.Query().Get("reason"),
	}
	if !validRequest(w, &req) {
		return
	}

	u, err := h.Admin.RevokeEntitlement(r.Context(), actor(r), r.PathValue("id"), req.Name, req.Reason)
	if err != nil {
		writeServiceError(w, r, err, "revoke entitlement")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u, nowUTC(h.Now)))
}

// HandleSetRole handles PUT /v1/admin/users/{id}/role
//
//	@Summary		Set User Role
//	@Description	Promotes or demotes a user. Admins cannot demote themselves.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		ledgersdk.UserRoleRequest	true	"Role and reason"
//	@Success		200		{object}	ledgersdk.UserResponse		"updated user"
//	@Failure		403		{object}	ledgersdk.ErrorResponse		"admin only, or self-demotion"
//	@Failure		409		{object}	ledgersdk.ErrorResponse		"user changed concurrently"
//	@Router			/v1/admin/users/{id}/role [put].
func (h *AdminHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.UserRoleRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	a := actor(r)
	if r.PathValue("id") == a.UserID && domain.Role(req.Role) != domain.RoleAdmin {
		httpx.WriteError(w, http.StatusForbidden, ledgersdk.ErrorCodeForbidden, "Admins cannot demote themselves")
		return
	}

	u, err := h.Admin.SetRole(r.Context(), a, r.PathValue("id"), domain.Role(req.Role), req.Reason)
	if err != nil {
		writeServiceError(w, r, err, "set role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u, nowUTC(h.Now)))
}

// HandleGrantCredits handles POST /v1/admin/users/{id}/credits
//
//	@Summary		Grant Credits
//	@Description	Adds proposal credits to a user. Every call is a separate, audit logged grant.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"User ID"
//	@Param			request	body		ledgersdk.GrantCreditsRequest	true	"Credits, optional expiry and reason"
//	@Success		200		{object}	ledgersdk.GrantCreditsResponse	"credits added and balance"
//	@Failure		403		{object}	ledgersdk.ErrorResponse			"admin only"
//	@Failure		404		{object}	ledgersdk.ErrorResponse			"unknown user"
//	@Router			/v1/admin/users/{id}/credits [post].
func (h *AdminHandler) HandleGrantCredits(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.GrantCreditsRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	res, err := h.Admin.GrantCredits(r.Context(), actor(r), r.PathValue("id"), req.Credits, req.ExpiresAt, req.Reason)
	if err != nil {
		writeServiceError(w, r, err, "grant credits")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ledgersdk.GrantCreditsResponse{
		CreditsAdded: res.CreditsAdded,
		Balance:      toBalance(res.Balance),
	})
}

// HandleListAuditLogs handles GET /v1/admin/audit-logs
//
//	@Summary		List Audit Logs
//	@Description	Newest first. Pass next_cursor back as before for the next page.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			target_user_id	query		string							false	"Filter by target user"
//	@Param			actor_id		query		string							false	"Filter by actor"
//	@Param			action			query		string							false	"Filter by action"
//	@Param			before			query		string							false	"Cursor from a previous page"
//	@Param			limit			query		int								false	"Page size (default 50, max 200)"
//	@Success		200				{object}	ledgersdk.ListAuditLogsResponse	"entries"
//	@Failure		403				{object}	ledgersdk.ErrorResponse			"admin only"
//	@Router			/v1/admin/audit-logs [get].
func (h *AdminHandler) HandleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultAuditPage
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httpx.WriteError(w, http.StatusBadRequest, ledgersdk.ErrorCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditPage)
	}

	entries, err := h.Admin.ListAuditLogs(r.Context(), actor(r), domain.AuditFilter{
		TargetUserID: q.Get("target_user_id"),
		ActorID:      q.Get("actor_id"),
		Action:       q.Get("action"),
		Before:       q.Get("before"),
		Limit:        limit,
	})
	if err != nil {
		writeServiceError(w, r, err, "list audit logs")
		return
	}

	out := ledgersdk.ListAuditLogsResponse{Entries: make([]ledgersdk.AuditLogEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, toAuditEntry(e))
	}
	if len(entries) == limit {
		out.NextCursor = entries[len(entries)-1].ID
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
