package ledgersdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// AuditLogQuery filters ListAuditLogs. Zero values are omitted.
type AuditLogQuery struct {
	TargetUserID string
	ActorID      string
	Action       string
	Before       string
	Limit        int
}

func (c *Client) GrantEntitlement(ctx context.Context, userID string, req EntitlementRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.do(ctx, http.MethodPost, adminUserPath(userID, "/entitlements"), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeEntitlement removes name from the user. The reason travels as a
// query parameter.
func (c *Client) RevokeEntitlement(ctx context.Context, userID, name, reason string) (*UserResponse, error) {
	var out UserResponse
	path := adminUserPath(userID, "/entitlements/"+url.PathEscape(name)) +
		"?" + url.Values{"reason": {reason}}.Encode()
	if err := c.do(ctx, http.MethodDelete, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetUserRole(ctx context.Context, userID string, req UserRoleRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.do(ctx, http.MethodPut, adminUserPath(userID, "/role"), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GrantCredits(ctx context.Context, userID string, req GrantCreditsRequest) (*GrantCreditsResponse, error) {
	var out GrantCreditsResponse
	if err := c.do(ctx, http.MethodPost, adminUserPath(userID, "/credits"), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAuditLogs(ctx context.Context, q AuditLogQuery) (*ListAuditLogsResponse, error) {
	v := url.Values{}
	if q.TargetUserID != "" {
		v.Set("target_user_id", q.TargetUserID)
	}
	if q.ActorID != "" {
		v.Set("actor_id", q.ActorID)
	}
	if q.Action != "" {
		v.Set("action", q.Action)
	}
	if q.Before != "" {
		v.Set("before", q.Before)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/v1/admin/audit-logs"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var out ListAuditLogsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func adminUserPath(userID, suffix string) string {
	return "/v1/admin/users/" + url.PathEscape(userID) + suffix
}
