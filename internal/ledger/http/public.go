package http

import (
	"net/http"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/pkg/httpx"
	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
)

// PublicHandler serves the client's side of a share link. No bearer token;
// the share token is the credential.
type PublicHandler struct {
	Proposals *service.ProposalService
}

// HandleView handles GET /v1/public/proposals/{token}
//
//	@Summary		View Shared Proposal
//	@Description	Returns the client's view of a proposal and records the view. Content is withheld while the proposal is locked.
//	@Tags			Public
//	@Produce		json
//	@Param			token	path		string								true	"Share token"
//	@Success		200		{object}	ledgersdk.PublicProposalResponse	"public proposal"
//	@Failure		404		{object}	ledgersdk.ErrorResponse				"error, error_description"
//	@Failure		429		{object}	ledgersdk.ErrorResponse				"rate_limit_exceeded"
//	@Router			/v1/public/proposals/{token} [get].
func (h *PublicHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	p, err := h.Proposals.ViewPublic(r.Context(), r.PathValue("token"))
	if err != nil {
		writeServiceError(w, r, err, "view public proposal")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPublicProposal(p))
}

// HandleAccept handles POST /v1/public/proposals/{token}/accept
//
//	@Summary		Accept Shared Proposal
//	@Description	Records the client's name, email and drawn signature. A proposal can be accepted once.
//	@Tags			Public
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string								true	"Share token"
//	@Param			request	body		ledgersdk.AcceptRequest				true	"Signature block"
//	@Success		200		{object}	ledgersdk.PublicProposalResponse	"accepted proposal"
//	@Failure		400		{object}	ledgersdk.ErrorResponse				"invalid_request or invalid_signature"
//	@Failure		404		{object}	ledgersdk.ErrorResponse				"error, error_description"
//	@Failure		409		{object}	ledgersdk.ErrorResponse				"already_accepted or invalid_transition"
//	@Failure		429		{object}	ledgersdk.ErrorResponse				"rate_limit_exceeded"
//	@Router			/v1/public/proposals/{token}/accept [post].
func (h *PublicHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.AcceptRequest
	if !decodeRequest(w, r, maxSignatureBodyBytes, &req) {
		return
	}

	p, err := h.Proposals.AcceptPublic(r.Context(), r.PathValue("token"), domain.Acceptance{
		Name:      req.Name,
		Email:     req.Email,
		Signature: req.Signature,
		IPAddress: httpx.IPKeyExtractor(r),
	})
	if err != nil {
		writeServiceError(w, r, err, "accept proposal")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPublicProposal(p))
}
