package api

import (
	"context"
	"net/url"
)

// Favorites lists the calling user's favorited meals.
func (c *Client) Favorites(ctx context.Context) ([]Favorite, error) {
	var resp struct {
		Favorites []Favorite `json:"favorites"`
	}
	if err := c.get(ctx, "/favorites", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

// AddFavorite saves a meal to the calling user's favorites. The backend
// denormalizes the meal name, chef, and price onto the favorite and rejects
// duplicates.
func (c *Client) AddFavorite(ctx context.Context, mealID string) error {
	body := struct {
		MealID string `json:"mealId"`
	}{mealID}
	return c.post(ctx, "/favorites", body, nil)
}

// RemoveFavorite deletes a favorite by its own id (not the meal id).
func (c *Client) RemoveFavorite(ctx context.Context, favoriteID string) error {
	return c.delete(ctx, "/favorites/"+url.PathEscape(favoriteID))
}
