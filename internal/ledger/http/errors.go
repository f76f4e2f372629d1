package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/pkg/httpx"
	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

const (
	maxBodyBytes = 64 << 10

	// Signature images travel as data URLs.
	maxSignatureBodyBytes = 2 << 20
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a bounded JSON body into v and validates it. On
// failure the 400 has already been written and false is returned.
func decodeRequest(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) bool {
	if err := httpx.DecodeJSON(r, maxBytes, v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, ledgersdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return false
	}
	return validRequest(w, v)
}

func validRequest(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	details := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	httpx.WriteJSON(w, http.StatusBadRequest, ledgersdk.ErrorResponse{
		Error:            ledgersdk.ErrorCodeInvalidRequest,
		ErrorDescription: "Request validation failed",
		Details:          details,
	})
	return false
}

// writeServiceError maps a domain error to its HTTP response. Anything
// unrecognised is logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, ledgersdk.ErrorCodeNotFound, "Not found")
	case errors.Is(err, domain.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, ledgersdk.ErrorCodeForbidden, "Not permitted")
	case errors.Is(err, domain.ErrInsufficientCredit):
		httpx.WriteError(w, http.StatusPaymentRequired, ledgersdk.ErrorCodePaymentRequired, "No proposal credits remaining")
	case errors.Is(err, domain.ErrAlreadyAccepted):
		httpx.WriteError(w, http.StatusConflict, ledgersdk.ErrorCodeAlreadyAccepted, "Proposal has already been accepted")
	case errors.Is(err, domain.ErrAlreadyCountersigned):
		httpx.WriteError(w, http.StatusConflict, ledgersdk.ErrorCodeAlreadyCountersigned, "Proposal has already been countersigned")
	case errors.Is(err, domain.ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, ledgersdk.ErrorCodeInvalidTransition, "Not allowed in the proposal's current state")
	case errors.Is(err, domain.ErrAlreadyMember):
		httpx.WriteError(w, http.StatusConflict, ledgersdk.ErrorCodeAlreadyMember, "User already belongs to a company")
	case errors.Is(err, domain.ErrSeatLimitReached):
		httpx.WriteError(w, http.StatusConflict, ledgersdk.ErrorCodeSeatLimitReached, "Company has no open seats")
	case errors.Is(err, domain.ErrPaymentIncomplete):
		httpx.WriteError(w, http.StatusConflict, ledgersdk.ErrorCodePaymentIncomplete, "Payment has not completed")
	case errors.Is(err, domain.ErrConcurrentUpdate):
		httpx.WriteError(w, http.StatusConflict, ledgersdk.ErrorCodeConcurrentUpdate, "User was changed concurrently; retry")
	case errors.Is(err, domain.ErrInviteExpiredOrConsumed):
		httpx.WriteError(w, http.StatusGone, ledgersdk.ErrorCodeInviteGone, "Invite has expired or was already used")
	case errors.Is(err, domain.ErrInvalidSignature):
		httpx.WriteError(w, http.StatusBadRequest, ledgersdk.ErrorCodeInvalidSignature, "Signature is missing or invalid")
	case errors.Is(err, domain.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, ledgersdk.ErrorCodeInvalidRequest, "Invalid request")
	case errors.Is(err, domain.ErrDeliveryFailed):
		httpx.WriteError(w, http.StatusBadGateway, ledgersdk.ErrorCodeDeliveryFailed, "Could not deliver the proposal")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "op", op, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, ledgersdk.ErrorCodeServerError, "Internal server error")
	}
}

// userID returns the authenticated subject. Routes registered through
// Router.secured always have one.
func userID(r *http.Request) string {
	id, _ := httpx.UserIDFromContext(r.Context())
	return id
}
