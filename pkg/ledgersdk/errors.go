package ledgersdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in the "error" field of every failure body.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidSignature     = "invalid_signature"
	ErrorCodeUnauthorized         = "unauthorized"
	ErrorCodeForbidden            = "forbidden"
	ErrorCodeNotFound             = "not_found"
	ErrorCodePaymentRequired      = "payment_required"
	ErrorCodeAlreadyAccepted      = "already_accepted"
	ErrorCodeAlreadyCountersigned = "already_countersigned"
	ErrorCodeInvalidTransition    = "invalid_transition"
	ErrorCodeAlreadyMember        = "already_member"
	ErrorCodeSeatLimitReached     = "seat_limit_reached"
	ErrorCodeInviteGone           = "invite_expired_or_consumed"
	ErrorCodePaymentIncomplete    = "payment_incomplete"
	ErrorCodeDeliveryFailed       = "delivery_failed"
	ErrorCodeConcurrentUpdate     = "concurrent_update"
	ErrorCodeRateLimited          = "rate_limit_exceeded"
	ErrorCodeServerError          = "server_error"
)

// APIError is a non-2xx response from the ledger.
type APIError struct {
	StatusCode  int               `json:"-"`
	Code        string            `json:"error"`
	Description string            `json:"error_description,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Description)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a failure body into an *APIError. Bodies that are
// not JSON still produce an error carrying the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			Details:     errResp.Details,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
