package api

import "context"

// CreatePaymentSession asks the backend for a hosted checkout URL for an
// accepted, payment-pending order. The caller redirects the user there.
func (c *Client) CreatePaymentSession(ctx context.Context, orderID string) (*CheckoutSession, error) {
	body := struct {
		OrderID string `json:"orderId"`
	}{orderID}
	var session CheckoutSession
	if err := c.post(ctx, "/payments/create-session", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
