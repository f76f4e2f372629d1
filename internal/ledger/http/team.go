package http

import (
	"net/http"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/pkg/httpx"
	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
)

// TeamHandler handles company, membership and invite endpoints.
type TeamHandler struct {
	Teams *service.TeamService
}

func companyProfile(req ledgersdk.CompanyRequest) domain.CompanyProfile {
	return domain.CompanyProfile{
		Name:    req.Name,
		Phone:   req.Phone,
		Website: req.Website,
		Address: req.Address,
		LogoURL: req.LogoURL,
	}
}

// HandleCreateCompany handles POST /v1/companies
//
//	@Summary		Create Company
//	@Description	Creates a company owned by the caller. A user belongs to at most one company.
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ledgersdk.CompanyRequest	true	"Company profile"
//	@Success		201		{object}	ledgersdk.CompanyResponse	"company"
//	@Failure		400		{object}	ledgersdk.ErrorResponse		"error, error_description, details"
//	@Failure		409		{object}	ledgersdk.ErrorResponse		"already_member"
//	@Router			/v1/companies [post].
func (h *TeamHandler) HandleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.CompanyRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	c, err := h.Teams.CreateCompany(r.Context(), userID(r), companyProfile(req))
	if err != nil {
		writeServiceError(w, r, err, "create company")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toCompany(c, domain.MemberOwner))
}

// HandleMyCompany handles GET /v1/companies/mine
//
//	@Summary		My Company
//	@Description	Returns the company the caller belongs to, with their role.
//	@Tags			Teams
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	ledgersdk.CompanyResponse	"company"
//	@Failure		404	{object}	ledgersdk.ErrorResponse		"caller has no company"
//	@Router			/v1/companies/mine [get].
func (h *TeamHandler) HandleMyCompany(w http.ResponseWriter, r *http.Request) {
	c, m, err := h.Teams.GetMyCompany(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "get company")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCompany(c, m.Role))
}

// HandleUpdateCompany handles PATCH /v1/companies/{id}
//
//	@Summary		Update Company Profile
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Company ID"
//	@Param			request	body		ledgersdk.CompanyRequest	true	"Company profile"
//	@Success		200		{object}	ledgersdk.CompanyResponse	"company"
//	@Failure		403		{object}	ledgersdk.ErrorResponse		"owner or admin only"
//	@Failure		404		{object}	ledgersdk.ErrorResponse		"error, error_description"
//	@Router			/v1/companies/{id} [patch].
func (h *TeamHandler) HandleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.CompanyRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	c, err := h.Teams.UpdateProfile(r.Context(), r.PathValue("id"), userID(r), companyProfile(req))
	if err != nil {
		writeServiceError(w, r, err, "update company")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCompany(c, ""))
}

// HandleListMembers handles GET /v1/companies/{id}/members
//
//	@Summary		List Members
//	@Tags			Teams
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string							true	"Company ID"
//	@Success		200	{object}	ledgersdk.ListMembersResponse	"members"
//	@Failure		404	{object}	ledgersdk.ErrorResponse			"error, error_description"
//	@Router			/v1/companies/{id}/members [get].
func (h *TeamHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ms, err := h.Teams.ListMembers(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "list members")
		return
	}

	out := ledgersdk.ListMembersResponse{Members: make([]ledgersdk.MemberResponse, 0, len(ms))}
	for _, m := range ms {
		out.Members = append(out.Members, toMember(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRemoveMember handles DELETE /v1/companies/{id}/members/{userID}
//
//	@Summary		Remove Member
//	@Description	Removes a member and frees their seat. Members may remove themselves; the owner cannot be removed.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Param			id		path	string	true	"Company ID"
//	@Param			userID	path	string	true	"Member user ID"
//	@Success		204		"No Content"
//	@Failure		403		{object}	ledgersdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	ledgersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/companies/{id}/members/{userID} [delete].
func (h *TeamHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.Teams.RemoveMember(r.Context(), r.PathValue("id"), r.PathValue("userID"), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "remove member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMemberRole handles PUT /v1/companies/{id}/members/{userID}/role
//
//	@Summary		Change Member Role
//	@Description	Owner only. Switches a member between admin and member.
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Company ID"
//	@Param			userID	path		string						true	"Member user ID"
//	@Param			request	body		ledgersdk.MemberRoleRequest	true	"New role"
//	@Success		200		{object}	ledgersdk.MemberResponse	"membership"
//	@Failure		403		{object}	ledgersdk.ErrorResponse		"error, error_description"
//	@Router			/v1/companies/{id}/members/{userID}/role [put].
func (h *TeamHandler) HandleMemberRole(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.MemberRoleRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	m, err := h.Teams.ChangeMemberRole(r.Context(), r.PathValue("id"), r.PathValue("userID"), userID(r),
		domain.MemberRole(req.Role))
	if err != nil {
		writeServiceError(w, r, err, "change member role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMember(m))
}

// HandleCreateInvite handles POST /v1/companies/{id}/invites
//
//	@Summary		Invite Member
//	@Description	Issues an invite if the company has an open seat. The token is returned only in this response.
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Company ID"
//	@Param			request	body		ledgersdk.InviteRequest		true	"Invitee"
//	@Success		201		{object}	ledgersdk.InviteResponse	"invite with token"
//	@Failure		403		{object}	ledgersdk.ErrorResponse		"owner or admin only"
//	@Failure		409		{object}	ledgersdk.ErrorResponse		"seat_limit_reached"
//	@Router			/v1/companies/{id}/invites [post].
func (h *TeamHandler) HandleCreateInvite(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.InviteRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	inv, token, err := h.Teams.Invite(r.Context(), r.PathValue("id"), userID(r), req.Email, domain.MemberRole(req.Role))
	if err != nil {
		writeServiceError(w, r, err, "create invite")
		return
	}

	resp := toInvite(inv)
	resp.Token = token
	resp.AcceptURL = h.Teams.AcceptURL(token)
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// HandleListInvites handles GET /v1/companies/{id}/invites
//
//	@Summary		List Invites
//	@Tags			Teams
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string							true	"Company ID"
//	@Success		200	{object}	ledgersdk.ListInvitesResponse	"outstanding invites"
//	@Failure		403	{object}	ledgersdk.ErrorResponse			"owner or admin only"
//	@Router			/v1/companies/{id}/invites [get].
func (h *TeamHandler) HandleListInvites(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Teams.ListInvites(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "list invites")
		return
	}

	out := ledgersdk.ListInvitesResponse{Invites: make([]ledgersdk.InviteResponse, 0, len(invs))}
	for _, inv := range invs {
		out.Invites = append(out.Invites, toInvite(inv))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRevokeInvite handles DELETE /v1/companies/{id}/invites/{inviteID}
//
//	@Summary		Revoke Invite
//	@Tags			Teams
//	@Security		BearerAuth
//	@Param			id			path	string	true	"Company ID"
//	@Param			inviteID	path	string	true	"Invite ID"
//	@Success		204			"No Content"
//	@Failure		404			{object}	ledgersdk.ErrorResponse	"error, error_description"
//	@Failure		410			{object}	ledgersdk.ErrorResponse	"invite already accepted"
//	@Router			/v1/companies/{id}/invites/{inviteID} [delete].
func (h *TeamHandler) HandleRevokeInvite(w http.ResponseWriter, r *http.Request) {
	err := h.Teams.RevokeInvite(r.Context(), r.PathValue("id"), r.PathValue("inviteID"), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "revoke invite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAcceptInvite handles POST /v1/invites/accept
//
//	@Summary		Accept Invite
//	@Description	Joins the caller to the inviting company. The seat limit is re-checked at this point.
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ledgersdk.AcceptInviteRequest	true	"Invite token"
//	@Success		200		{object}	ledgersdk.MemberResponse		"membership"
//	@Failure		404		{object}	ledgersdk.ErrorResponse			"unknown token"
//	@Failure		409		{object}	ledgersdk.ErrorResponse			"already_member or seat_limit_reached"
//	@Failure		410		{object}	ledgersdk.ErrorResponse			"invite_expired_or_consumed"
//	@Router			/v1/invites/accept [post].
func (h *TeamHandler) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.AcceptInviteRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	m, err := h.Teams.AcceptInvite(r.Context(), req.Token, userID(r))
	if err != nil {
		writeServiceError(w, r, err, "accept invite")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMember(m))
}
