package gateway

import (
	"context"
	"net/http"
	"net/url"
)

type FoodItem struct {
	ID             string             `json:"id,omitempty"`
	Name           string             `json:"name"`
	Quantity       float64            `json:"quantity"`
	Unit           string             `json:"unit"`
	Calories       float64            `json:"calories,omitempty"`
	Protein        float64            `json:"protein,omitempty"`
	Carbohydrates  float64            `json:"carbohydrates,omitempty"`
	Fat            float64            `json:"fat,omitempty"`
	Micronutrients map[string]float64 `json:"micronutrients,omitempty"`
}

type Meal struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Items          []FoodItem         `json:"items"`
	Calories       float64            `json:"calories"`
	Micronutrients map[string]float64 `json:"micronutrients,omitempty"`
}

type CreateMealRequest struct {
	Name  string     `json:"name"`
	Items []FoodItem `json:"items"`
}

type DailyStats struct {
	Date           string             `json:"date"`
	Calories       float64            `json:"calories"`
	Protein        float64            `json:"protein"`
	Carbohydrates  float64            `json:"carbohydrates"`
	Fat            float64            `json:"fat"`
	Micronutrients map[string]float64 `json:"micronutrients,omitempty"`
}

type WeeklyStats struct {
	WeekStart string       `json:"weekStart"`
	Days      []DailyStats `json:"days"`
}

type MonthlyStats struct {
	Month string       `json:"month"`
	Days  []DailyStats `json:"days"`
}

type StatsSummary struct {
	From             string  `json:"from"`
	To               string  `json:"to"`
	AvgCalories      float64 `json:"avgCalories"`
	AvgProtein       float64 `json:"avgProtein"`
	AvgCarbohydrates float64 `json:"avgCarbohydrates"`
	AvgFat           float64 `json:"avgFat"`
	DaysLogged       int     `json:"daysLogged"`
}

func (c *Client) TodayMeals(ctx context.Context, token string) ([]Meal, error) {
	var out []Meal
	if err := c.do(ctx, http.MethodGet, "/meals/today", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MealByID(ctx context.Context, token, mealID string) (*Meal, error) {
	var out Meal
	if err := c.do(ctx, http.MethodGet, "/meals/"+url.PathEscape(mealID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateMeal(ctx context.Context, token string, req CreateMealRequest) (*Meal, error) {
	var out Meal
	if err := c.do(ctx, http.MethodPost, "/meals", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddFood(ctx context.Context, token, mealID string, item FoodItem) (*Meal, error) {
	var out Meal
	path := "/meals/" + url.PathEscape(mealID) + "/foods"
	if err := c.do(ctx, http.MethodPost, path, token, item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveFood does not return the updated meal; callers re-fetch details.
func (c *Client) RemoveFood(ctx context.Context, token, mealID, foodID string) error {
	path := "/meals/" + url.PathEscape(mealID) + "/foods/" + url.PathEscape(foodID)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

func (c *Client) DailyStats(ctx context.Context, token string) (*DailyStats, error) {
	var out DailyStats
	if err := c.do(ctx, http.MethodGet, "/meals/stats/daily", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) WeeklyStats(ctx context.Context, token string) (*WeeklyStats, error) {
	var out WeeklyStats
	if err := c.do(ctx, http.MethodGet, "/meals/stats/weekly", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MonthlyStats(ctx context.Context, token string) (*MonthlyStats, error) {
	var out MonthlyStats
	if err := c.do(ctx, http.MethodGet, "/meals/stats/monthly", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StatsSummary(ctx context.Context, token string) (*StatsSummary, error) {
	var out StatsSummary
	if err := c.do(ctx, http.MethodGet, "/meals/stats/summary", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
