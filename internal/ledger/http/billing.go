package http

import (
	"io"
	"net/http"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/payments"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/pkg/httpx"
	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

const maxWebhookBytes = 256 << 10

type BillingHandler struct {
	Billing *service.BillingService
	Now     func() time.Time
}

// HandleCheckout handles POST /v1/billing/checkout
//
//	@Summary		Start Checkout
//	@Description	Creates a payment processor checkout for a credit pack, a subscription plan or extra team seats.
//	@Tags			Billing
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ledgersdk.CheckoutRequest	true	"Plan and, for seats, the seat count"
//	@Success		200		{object}	ledgersdk.CheckoutResponse	"session_id, url"
//	@Failure		400		{object}	ledgersdk.ErrorResponse		"error, error_description, details"
//	@Failure		403		{object}	ledgersdk.ErrorResponse		"seats require a company manager"
//	@Router			/v1/billing/checkout [post].
func (h *BillingHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.CheckoutRequest
	if !decodeRequest(w, r, maxBodyBytes, &req) {
		return
	}

	sess, err := h.Billing.CreateCheckout(r.Context(), userID(r), payments.Plan(req.Plan), req.Seats)
	if err != nil {
		writeServiceError(w, r, err, "create checkout")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ledgersdk.CheckoutResponse{SessionID: sess.ID, URL: sess.URL})
}

// HandleReconcile handles POST /v1/billing/sessions/{id}/reconcile
//
//	@Summary		Reconcile Checkout
//	@Description	Applies a completed checkout to the caller's balance. Repeat calls for the same session report already_processed and add nothing.
//	@Tags			Billing
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"Checkout session ID"
//	@Success		200	{object}	ledgersdk.ReconcileResponse	"credits added and balance"
//	@Failure		403	{object}	ledgersdk.ErrorResponse		"session belongs to another user"
//	@Failure		404	{object}	ledgersdk.ErrorResponse		"unknown session"
//	@Failure		409	{object}	ledgersdk.ErrorResponse		"payment_incomplete"
//	@Router			/v1/billing/sessions/{id}/reconcile [post].
func (h *BillingHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	res, err := h.Billing.ReconcileSession(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeServiceError(w, r, err, "reconcile session")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ledgersdk.ReconcileResponse{
		SessionID:        res.SessionID,
		Plan:             string(res.Plan),
		CreditsAdded:     res.CreditsAdded,
		SeatsAdded:       res.SeatsAdded,
		AlreadyProcessed: res.AlreadyProcessed,
		Balance:          toBalance(res.Balance),
	})
}

// HandleWebhook handles POST /v1/billing/webhook
//
//	@Summary		Payment Webhook
//	@Description	Receives payment processor events. The body is authenticated by the Stripe-Signature header. Deliveries are idempotent on the session id.
//	@Tags			Billing
//	@Accept			json
//	@Param			Stripe-Signature	header	string	true	"Webhook signature"
//	@Success		204					"No Content"
//	@Failure		400					{object}	ledgersdk.ErrorResponse	"invalid_signature"
//	@Failure		500					{object}	ledgersdk.ErrorResponse	"processing failed; the processor retries"
//	@Router			/v1/billing/webhook [post].
func (h *BillingHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		log.Warn("webhook body rejected", "error", err)
		httpx.WriteError(w, http.StatusBadRequest, ledgersdk.ErrorCodeInvalidRequest, "Unreadable body")
		return
	}

	if err := h.Billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeServiceError(w, r, err, "handle webhook")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
