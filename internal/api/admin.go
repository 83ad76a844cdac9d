package api

import "context"

// Statistics fetches the platform aggregate counts. Admin only.
func (c *Client) Statistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	if err := c.get(ctx, "/admin/statistics", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
