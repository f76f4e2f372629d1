package ledgersdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateCheckout starts a payment processor checkout. Redirect the user to
// the returned URL.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	var out CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/v1/billing/checkout", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReconcileSession applies a completed checkout. Safe to call any number of
// times; later calls report AlreadyProcessed.
func (c *Client) ReconcileSession(ctx context.Context, sessionID string) (*ReconcileResponse, error) {
	var out ReconcileResponse
	path := "/v1/billing/sessions/" + url.PathEscape(sessionID) + "/reconcile"
	if err := c.do(ctx, http.MethodPost, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
