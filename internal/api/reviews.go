package api

import (
	"context"
	"net/url"
	"strconv"
)

// RecentReviews lists the most recent reviews across all meals.
func (c *Client) RecentReviews(ctx context.Context, limit int) ([]Review, error) {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Reviews []Review `json:"reviews"`
	}
	if err := c.get(ctx, "/reviews", v, &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

// MealReviews lists reviews for one meal.
func (c *Client) MealReviews(ctx context.Context, mealID string) ([]Review, error) {
	var resp struct {
		Reviews []Review `json:"reviews"`
	}
	if err := c.get(ctx, "/reviews/meal/"+url.PathEscape(mealID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

// UserReviews lists the calling user's reviews.
func (c *Client) UserReviews(ctx context.Context) ([]Review, error) {
	var resp struct {
		Reviews []Review `json:"reviews"`
	}
	if err := c.get(ctx, "/reviews/user", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

// CreateReview posts a review; reviewer identity and date are backend-filled.
func (c *Client) CreateReview(ctx context.Context, input ReviewInput) (*Review, error) {
	var review Review
	if err := c.post(ctx, "/reviews", input, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateReview edits the calling user's review.
func (c *Client) UpdateReview(ctx context.Context, reviewID string, input ReviewInput) error {
	return c.patch(ctx, "/reviews/"+url.PathEscape(reviewID), input, nil)
}

// DeleteReview removes the calling user's review.
func (c *Client) DeleteReview(ctx context.Context, reviewID string) error {
	return c.delete(ctx, "/reviews/"+url.PathEscape(reviewID))
}
