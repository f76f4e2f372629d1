package ledgersdk

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) CreateCompany(ctx context.Context, req CompanyRequest) (*CompanyResponse, error) {
	var out CompanyResponse
	if err := c.do(ctx, http.MethodPost, "/v1/companies", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyCompany returns the company the caller belongs to.
func (c *Client) MyCompany(ctx context.Context) (*CompanyResponse, error) {
	var out CompanyResponse
	if err := c.do(ctx, http.MethodGet, "/v1/companies/mine", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCompany(ctx context.Context, companyID string, req CompanyRequest) (*CompanyResponse, error) {
	var out CompanyResponse
	if err := c.do(ctx, http.MethodPatch, companyPath(companyID, ""), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMembers(ctx context.Context, companyID string) (*ListMembersResponse, error) {
	var out ListMembersResponse
	if err := c.do(ctx, http.MethodGet, companyPath(companyID, "/members"), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveMember(ctx context.Context, companyID, userID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, companyPath(companyID, "/members/"+url.PathEscape(userID)), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (c *Client) SetMemberRole(ctx context.Context, companyID, userID string, req MemberRoleRequest) (*MemberResponse, error) {
	var out MemberResponse
	path := companyPath(companyID, "/members/"+url.PathEscape(userID)+"/role")
	if err := c.do(ctx, http.MethodPut, path, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateInvite issues an invite. The response's Token is only ever returned here.
func (c *Client) CreateInvite(ctx context.Context, companyID string, req InviteRequest) (*InviteResponse, error) {
	var out InviteResponse
	if err := c.do(ctx, http.MethodPost, companyPath(companyID, "/invites"), req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListInvites(ctx context.Context, companyID string) (*ListInvitesResponse, error) {
	var out ListInvitesResponse
	if err := c.do(ctx, http.MethodGet, companyPath(companyID, "/invites"), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RevokeInvite(ctx context.Context, companyID, inviteID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, companyPath(companyID, "/invites/"+url.PathEscape(inviteID)), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// AcceptInvite joins the caller to the inviting company.
func (c *Client) AcceptInvite(ctx context.Context, token string) (*MemberResponse, error) {
	var out MemberResponse
	req := AcceptInviteRequest{Token: token}
	if err := c.do(ctx, http.MethodPost, "/v1/invites/accept", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func companyPath(companyID, suffix string) string {
	return "/v1/companies/" + url.PathEscape(companyID) + suffix
}
