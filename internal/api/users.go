package api

import (
	"context"
	"fmt"
	"net/url"
)

// UserByEmail fetches the backend user record for the given email.
func (c *Client) UserByEmail(ctx context.Context, email string) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.get(ctx, "/users/email/"+url.PathEscape(email), nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("no user record for %s", email)
	}
	return resp.User, nil
}

// RegisterUser creates the backend user record after a successful provider
// sign-up. The backend assigns role user and status active.
func (c *Client) RegisterUser(ctx context.Context, input UserInput) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.post(ctx, "/users", input, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Users lists all users. Admin only.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.get(ctx, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// MarkUserFraud marks a user as restricted. Admin only. A fraud-status user
// keeps their account but the backend rejects their orders and delists chef
// meals.
func (c *Client) MarkUserFraud(ctx context.Context, userID string) error {
	return c.patch(ctx, "/users/"+url.PathEscape(userID)+"/fraud", nil, nil)
}
