package api

import (
	"context"
	"net/url"
	"time"
)

// RoleRequests lists role-upgrade requests. Admin only.
func (c *Client) RoleRequests(ctx context.Context) ([]RoleRequest, error) {
	var resp struct {
		Requests []RoleRequest `json:"requests"`
	}
	if err := c.get(ctx, "/requests", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

// SubmitRoleRequest asks for an upgrade to the given role. The backend
// rejects a second request while one is still pending.
func (c *Client) SubmitRoleRequest(ctx context.Context, userName, userEmail string, requestType RequestType) error {
	body := RoleRequest{
		UserName:      userName,
		UserEmail:     userEmail,
		RequestType:   requestType,
		RequestStatus: RequestPending,
		RequestTime:   time.Now().UTC(),
	}
	return c.post(ctx, "/requests", body, nil)
}

// ApproveRoleRequest approves a request; the backend updates the user's role
// and mints a chef id when the request was for chef. Admin only.
func (c *Client) ApproveRoleRequest(ctx context.Context, requestID string) error {
	return c.patch(ctx, "/requests/"+url.PathEscape(requestID)+"/approve", nil, nil)
}

// RejectRoleRequest rejects a request. Admin only.
func (c *Client) RejectRoleRequest(ctx context.Context, requestID string) error {
	return c.patch(ctx, "/requests/"+url.PathEscape(requestID)+"/reject", nil, nil)
}
