package api

import (
	"context"
	"net/url"
	"strconv"
)

// UserOrders lists the calling user's orders.
func (c *Client) UserOrders(ctx context.Context) ([]Order, error) {
	var resp struct {
		Orders []Order `json:"orders"`
	}
	if err := c.get(ctx, "/orders/user", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// ChefOrders lists orders placed against the calling chef's meals, paged.
func (c *Client) ChefOrders(ctx context.Context, page, limit int) (*OrderPage, error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out OrderPage
	if err := c.get(ctx, "/orders/chef", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlaceOrder creates an order. The backend fills in the ordering user, the
// chef, and the price from the meal; fraud-status users are rejected.
func (c *Client) PlaceOrder(ctx context.Context, input OrderInput) (*Order, error) {
	var order Order
	if err := c.post(ctx, "/orders", input, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves an order through its lifecycle. Chefs accept and
// deliver; users cancel while still pending. The backend enforces who may
// perform which transition.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) error {
	body := struct {
		OrderStatus OrderStatus `json:"orderStatus"`
	}{status}
	return c.patch(ctx, "/orders/"+url.PathEscape(orderID), body, nil)
}
