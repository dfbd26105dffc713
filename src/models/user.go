package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Settings     Settings  `json:"settings"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Settings holds per-user preferences. BudgetLimits maps a category
// name to a monthly spending limit; an empty map means the user has
// never configured budgets and the default table applies.
type Settings struct {
	BudgetLimits map[string]float64 `json:"budgetLimits"`
}
