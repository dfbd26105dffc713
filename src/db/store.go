// Package db defines the storage contract shared by the Postgres and
// SQLite backends, plus the query/result types of the expense engine.
package db

import (
	"context"
	"errors"
	"time"

	"spendwise-server/src/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// ExpenseFilter narrows and pages a user's expense list. Zero values
// mean "no constraint"; Page and Limit are normalized by Normalize.
type ExpenseFilter struct {
	Page      int
	Limit     int
	Category  string
	Type      string
	Title     string // case-insensitive substring match
	StartDate *time.Time
	EndDate   *time.Time
}

const defaultPageSize = 10

// Normalize applies the documented defaults: page 1, page size 10.
func (f *ExpenseFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
}

type PageMeta struct {
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPageMeta derives pagination metadata from a total match count and
// the requested page/limit. A page past the end yields HasNext=false
// and an empty slice upstream, never an error.
func NewPageMeta(total, page, limit int) PageMeta {
	totalPages := (total + limit - 1) / limit
	return PageMeta{
		TotalCount:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// Stats is the single-pass aggregate over all of a user's records.
// Average and highest consider expense-type rows only; Count spans
// both types.
type Stats struct {
	TotalExpenses  float64 `json:"totalExpenses"`
	TotalIncome    float64 `json:"totalIncome"`
	HighestExpense float64 `json:"highestExpense"`
	AverageExpense float64 `json:"averageExpense"`
	Count          int     `json:"count"`
}

type MonthlySummary struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// Store is implemented by the postgres and sqlite backends. Every
// expense operation is scoped by owner id; a record owned by someone
// else surfaces as ErrNotFound.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, userID, id string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, userID, id string) error
	ListExpenses(ctx context.Context, userID string, filter ExpenseFilter) ([]models.Expense, PageMeta, error)
	AllExpenses(ctx context.Context, userID string) ([]models.Expense, error)

	GetStats(ctx context.Context, userID string) (Stats, error)
	GetMonthlySummary(ctx context.Context, userID string) ([]MonthlySummary, error)
	CategorySpending(ctx context.Context, userID string, start, end *time.Time) (map[string]float64, error)

	Close() error
}
