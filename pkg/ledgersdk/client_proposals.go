package ledgersdk

import (
	"context"
	"net/http"
	"net/url"
)

// Me returns the caller's profile and balance, creating the ledger user on
// first contact.
func (c *Client) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProposal(ctx context.Context, req ProposalRequest) (*ProposalResponse, error) {
	var out ProposalResponse
	if err := c.do(ctx, http.MethodPost, "/v1/proposals", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProposals(ctx context.Context) (*ListProposalsResponse, error) {
	var out ListProposalsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/proposals", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProposal(ctx context.Context, id string) (*ProposalResponse, error) {
	return c.proposalCall(ctx, http.MethodGet, id, "", nil)
}

func (c *Client) UpdateProposal(ctx context.Context, id string, req ProposalRequest) (*ProposalResponse, error) {
	return c.proposalCall(ctx, http.MethodPatch, id, "", req)
}

func (c *Client) DeleteProposal(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/proposals/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// UnlockProposal spends one credit to reveal the full proposal. Unlocking an
// already unlocked proposal is free. A 402 payment_required means the caller
// has no spendable credit.
func (c *Client) UnlockProposal(ctx context.Context, id string) (*ProposalResponse, error) {
	return c.proposalCall(ctx, http.MethodPost, id, "/unlock", nil)
}

// ShareProposal returns the proposal with its public link, minting it once.
func (c *Client) ShareProposal(ctx context.Context, id string) (*ProposalResponse, error) {
	return c.proposalCall(ctx, http.MethodPost, id, "/share", nil)
}

// SendProposal emails the public link to the client and marks it sent.
func (c *Client) SendProposal(ctx context.Context, id string) (*ProposalResponse, error) {
	return c.proposalCall(ctx, http.MethodPost, id, "/send", nil)
}

func (c *Client) CountersignProposal(ctx context.Context, id string, req CountersignRequest) (*ProposalResponse, error) {
	return c.proposalCall(ctx, http.MethodPost, id, "/countersign", req)
}

func (c *Client) SetProposalOutcome(ctx context.Context, id string, req OutcomeRequest) (*ProposalResponse, error) {
	return c.proposalCall(ctx, http.MethodPost, id, "/outcome", req)
}

// CreateDepositLink creates or replaces the deposit payment link.
func (c *Client) CreateDepositLink(ctx context.Context, id string, req DepositLinkRequest) (*ProposalResponse, error) {
	return c.proposalCall(ctx, http.MethodPost, id, "/deposit-link", req)
}

func (c *Client) proposalCall(ctx context.Context, method, id, suffix string, body any) (*ProposalResponse, error) {
	var out ProposalResponse
	path := "/v1/proposals/" + url.PathEscape(id) + suffix
	if err := c.do(ctx, method, path, body, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ViewPublicProposal fetches the client's view of a shared proposal. The
// first view of a sent proposal marks it viewed.
func (c *Client) ViewPublicProposal(ctx context.Context, token string) (*PublicProposalResponse, error) {
	var out PublicProposalResponse
	path := "/v1/public/proposals/" + url.PathEscape(token)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptPublicProposal signs the proposal on the client's behalf.
func (c *Client) AcceptPublicProposal(ctx context.Context, token string, req AcceptRequest) (*PublicProposalResponse, error) {
	var out PublicProposalResponse
	path := "/v1/public/proposals/" + url.PathEscape(token) + "/accept"
	if err := c.do(ctx, http.MethodPost, path, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
