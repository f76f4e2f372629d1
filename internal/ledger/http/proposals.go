package http

import (
	"net/http"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/pkg/httpx"
	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
)

// ProposalsHandler handles the owner's proposal endpoints.
type ProposalsHandler struct {
	Proposals *service.ProposalService
	Billing   *service.BillingService
}

func (h *ProposalsHandler) respond(w http.ResponseWriter, code int, p domain.Proposal) {
	httpx.WriteJSON(w, code, toProposal(p, h.Proposals.PublicURL(p.PublicToken)))
}

func proposalInput(req ledgersdk.ProposalRequest) domain.ProposalInput {
	return domain.ProposalInput{
		Title:          req.Title,
		ClientName:     req.ClientName,
		ClientEmail:    req.ClientEmail,
		Content:        req.Content,
		PriceLowCents:  req.PriceLowCents,
		PriceHighCents: req.PriceHighCents,
		Currency:       req.Currency,
	}
}

// HandleCreate handles POST /v1/proposals
//
//	@Summary		Create Proposal
//	@Description	Creates a draft proposal. Prices are integer cents.
//	@Tags			Proposals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ledgersdk.ProposalRequest	true	"Proposal fields"
//	@Success		201		{object}	ledgersdk.ProposalResponse	"Created proposal (locked)"
//	@Failure		400		{object}	ledgersdk.ErrorResponse		"error, error_description, details"
//	@Failure		401		{object}	ledgersdk.ErrorResponse		"error, error_description"
//	@Router			/v1/proposals [post].
func (h *ProposalsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.ProposalRequest
	if !decodeRequest(w, r, maxBodyBytes*4, &req) {
		return
	}

	p, err := h.Proposals.Create(r.Context(), userID(r), proposalInput(req))
	if err != nil {
		writeServiceError(w, r, err, "create proposal")
		return
	}
	h.respond(w, http.StatusCreated, p)
}

// HandleList handles GET /v1/proposals
//
//	@Summary		List Proposals
//	@Description	Returns the caller's proposals, newest first. Locked proposals omit their content.
//	@Tags			Proposals
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	ledgersdk.ListProposalsResponse	"proposals"
//	@Failure		401	{object}	ledgersdk.ErrorResponse			"error, error_description"
//	@Router			/v1/proposals [get].
func (h *ProposalsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Proposals.List(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "list proposals")
		return
	}

	out := ledgersdk.ListProposalsResponse{Proposals: make([]ledgersdk.ProposalResponse, 0, len(ps))}
	for _, p := range ps {
		out.Proposals = append(out.Proposals, toProposal(p, h.Proposals.PublicURL(p.PublicToken)))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /v1/proposals/{id}
//
//	@Summary		Get Proposal
//	@Description	Returns one of the caller's proposals. Proposals owned by others are reported as not found.
//	@Tags			Proposals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"Proposal ID"
//	@Success		200	{object}	ledgersdk.ProposalResponse	"proposal"
//	@Failure		404	{object}	ledgersdk.ErrorResponse		"error, error_description"
//	@Router			/v1/proposals/{id} [get].
func (h *ProposalsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.Proposals.Get(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "get proposal")
		return
	}
	h.respond(w, http.StatusOK, p)
}

// HandleUpdate handles PATCH /v1/proposals/{id}
//
//	@Summary		Update Proposal
//	@Description	Replaces the editable fields. Accepted proposals are frozen.
//	@Tags			Proposals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Proposal ID"
//	@Param			request	body		ledgersdk.ProposalRequest	true	"Proposal fields"
//	@Success		200		{object}	ledgersdk.ProposalResponse	"proposal"
//	@Failure		400		{object}	ledgersdk.ErrorResponse		"error, error_description, details"
//	@Failure		404		{object}	ledgersdk.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	ledgersdk.ErrorResponse		"error, error_description"
//	@Router			/v1/proposals/{id} [patch].
func (h *ProposalsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.ProposalRequest
	if !decodeRequest(w, r, maxBodyBytes*4, &req) {
		return
	}

	p, err := h.Proposals.Update(r.Context(), r.PathValue("id"), userID(r), proposalInput(req))
	if err != nil {
		writeServiceError(w, r, err, "update proposal")
		return
	}
	h.respond(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /v1/proposals/{id}
//
//	@Summary		Delete Proposal
//	@Tags			Proposals
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Proposal ID"
//	@Success		204	"No Content"
//	@Failure		404	{object}	ledgersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/proposals/{id} [delete].
func (h *ProposalsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Proposals.Delete(r.Context(), r.PathValue("id"), userID(r)); err != nil {
		writeServiceError(w, r, err, "delete proposal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnlock handles POST /v1/proposals/{id}/unlock
//
//	@Summary		Unlock Proposal
//	@Description	Spends one proposal credit and reveals the content. Unlocking an unlocked proposal is free.
//	@Tags			Proposals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"Proposal ID"
//	@Success		200	{object}	ledgersdk.ProposalResponse	"unlocked proposal"
//	@Failure		402	{object}	ledgersdk.ErrorResponse		"payment_required - no spendable credit"
//	@Failure		404	{object}	ledgersdk.ErrorResponse		"error, error_description"
//	@Router			/v1/proposals/{id}/unlock [post].
func (h *ProposalsHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	p, err := h.Proposals.Unlock(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "unlock proposal")
		return
	}
	h.respond(w, http.StatusOK, p)
}

// HandleShare handles POST /v1/proposals/{id}/share
//
//	@Summary		Share Proposal
//	@Description	Returns the proposal with its public link, creating the link on first use.
//	@Tags			Proposals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"Proposal ID"
//	@Success		200	{object}	ledgersdk.ProposalResponse	"proposal with public_url"
//	@Failure		404	{object}	ledgersdk.ErrorResponse		"error, error_description"
//	@Router			/v1/proposals/{id}/share [post].
func (h *ProposalsHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	p, err := h.Proposals.Share(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "share proposal")
		return
	}
	h.respond(w, http.StatusOK, p)
}

// HandleSend handles POST /v1/proposals/{id}/send
//
//	@Summary		Send Proposal
//	@Description	Emails the public link to the client. A draft becomes sent only once delivery succeeds.
//	@Tags			Proposals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"Proposal ID"
//	@Success		200	{object}	ledgersdk.ProposalResponse	"sent proposal"
//	@Failure		400	{object}	ledgersdk.ErrorResponse		"proposal has no client email"
//	@Failure		409	{object}	ledgersdk.ErrorResponse		"proposal already accepted"
//	@Failure		502	{object}	ledgersdk.ErrorResponse		"delivery_failed"
//	@Router			/v1/proposals/{id}/send [post].
func (h *ProposalsHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	p, err := h.Proposals.Send(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "send proposal")
		return
	}
	h.respond(w, http.StatusOK, p)
}

// HandleCountersign handles POST /v1/proposals/{id}/countersign
//
//	@Summary		Countersign Proposal
//	@Description	Adds the contractor's signature to an accepted proposal. Happens at most once.
//	@Tags			Proposals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Proposal ID"
//	@Param			request	body		ledgersdk.CountersignRequest	true	"Name and signature image"
//	@Success		200		{object}	ledgersdk.ProposalResponse		"countersigned proposal"
//	@Failure		400		{object}	ledgersdk.ErrorResponse			"invalid_request or invalid_signature"
//	@Failure		409		{object}	ledgersdk.ErrorResponse			"already_countersigned or invalid_transition"
//	@Router			/v1/proposals/{id}/countersign [post].
func (h *ProposalsHandler) HandleCountersign(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.CountersignRequest
	if !decodeRequest(w, r, maxSignatureBodyBytes, &req) {
		return
	}

	p, err := h.Proposals.Countersign(r.Context(), r.PathValue("id"), userID(r), req.Name, req.Signature)
	if err != nil {
		writeServiceError(w, r, err, "countersign proposal")
		return
	}
	h.respond(w, http.StatusOK, p)
}

// HandleOutcome handles POST /v1/proposals/{id}/outcome
//
//	@Summary		Close Proposal
//	@Description	Marks an accepted proposal as won or lost.
//	@Tags			Proposals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Proposal ID"
//	@Param			request	body		ledgersdk.OutcomeRequest	true	"won or lost"
//	@Success		200		{object}	ledgersdk.ProposalResponse	"closed proposal"
//	@Failure		409		{object}	ledgersdk.ErrorResponse		"invalid_transition"
//	@Router			/v1/proposals/{id}/outcome [post].
func (h *ProposalsHandler) HandleOutcome(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.OutcomeRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	p, err := h.Proposals.SetOutcome(r.Context(), r.PathValue("id"), userID(r), domain.ProposalStatus(req.Outcome))
	if err != nil {
		writeServiceError(w, r, err, "set outcome")
		return
	}
	h.respond(w, http.StatusOK, p)
}

// HandleDepositLink handles POST /v1/proposals/{id}/deposit-link
//
//	@Summary		Create Deposit Link
//	@Description	Creates a payment link for 25, 50 or 100 percent of the price midpoint, replacing any earlier link.
//	@Tags			Proposals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Proposal ID"
//	@Param			request	body		ledgersdk.DepositLinkRequest	true	"Deposit percentage"
//	@Success		200		{object}	ledgersdk.ProposalResponse		"proposal with deposit"
//	@Failure		400		{object}	ledgersdk.ErrorResponse			"error, error_description, details"
//	@Failure		409		{object}	ledgersdk.ErrorResponse			"deposit already paid"
//	@Router			/v1/proposals/{id}/deposit-link [post].
func (h *ProposalsHandler) HandleDepositLink(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.DepositLinkRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	p, err := h.Billing.CreateDepositLink(r.Context(), r.PathValue("id"), userID(r), req.Percentage)
	if err != nil {
		writeServiceError(w, r, err, "create deposit link")
		return
	}
	h.respond(w, http.StatusOK, p)
}
