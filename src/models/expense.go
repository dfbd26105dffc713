package models

import (
	"math"
	"time"
)

const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

type Expense struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date"`
	Type      string    `json:"type"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoundAmount normalizes a monetary amount to two decimal places.
// Applied on every write so stored amounts never carry float dust.
func RoundAmount(a float64) float64 {
	return math.Round(a*100) / 100
}

func ValidType(t string) bool {
	return t == TypeExpense || t == TypeIncome
}
