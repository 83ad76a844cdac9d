package api

import (
	"context"
	"net/url"
	"strconv"
)

// MealQuery selects, orders and pages a meal listing.
type MealQuery struct {
	Page   int
	Limit  int
	Search string // matches meal or chef name
	Sort   string // "price" is the only sortable field today
	Order  string // "asc" or "desc"
}

func (q MealQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" && q.Order != "" {
		v.Set("sort", q.Sort)
		v.Set("order", q.Order)
	}
	return v
}

// Meals lists meals matching the query.
func (c *Client) Meals(ctx context.Context, q MealQuery) (*MealPage, error) {
	var page MealPage
	if err := c.get(ctx, "/meals", q.values(), &page); err != nil {
		return nil, err
	}
	if page.TotalPages == 0 && q.Limit > 0 && page.Total > 0 {
		page.TotalPages = (page.Total + q.Limit - 1) / q.Limit
	}
	return &page, nil
}

// Meal fetches a single meal by id.
func (c *Client) Meal(ctx context.Context, id string) (*Meal, error) {
	var meal Meal
	if err := c.get(ctx, "/meals/"+url.PathEscape(id), nil, &meal); err != nil {
		return nil, err
	}
	return &meal, nil
}

// ChefMeals lists the calling chef's own meals.
func (c *Client) ChefMeals(ctx context.Context) ([]Meal, error) {
	var resp struct {
		Meals []Meal `json:"meals"`
	}
	if err := c.get(ctx, "/meals/chef", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Meals, nil
}

// CreateMeal lists a new meal for the calling chef.
func (c *Client) CreateMeal(ctx context.Context, input MealInput) (*Meal, error) {
	var meal Meal
	if err := c.post(ctx, "/meals", input, &meal); err != nil {
		return nil, err
	}
	return &meal, nil
}

// UpdateMeal applies a partial update to one of the calling chef's meals.
func (c *Client) UpdateMeal(ctx context.Context, id string, input MealInput) error {
	return c.patch(ctx, "/meals/"+url.PathEscape(id), input, nil)
}

// DeleteMeal removes one of the calling chef's meals.
func (c *Client) DeleteMeal(ctx context.Context, id string) error {
	return c.delete(ctx, "/meals/"+url.PathEscape(id))
}
