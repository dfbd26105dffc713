// Package budget merges configured per-category limits with actual
// spending to produce the health indicators shown on the dashboard.
package budget

import (
	"sort"

	"spendwise-server/src/models"
)

const (
	StatusGood    = "Good"
	StatusWarning = "Warning"
	StatusOver    = "Over"
)

// CategoryBudget is one category's limit versus spend.
type CategoryBudget struct {
	Category   string  `json:"category"`
	Spent      float64 `json:"spent"`
	Limit      float64 `json:"limit"`
	Percentage float64 `json:"percentage"`
	Remaining  float64 `json:"remaining"`
	OverBudget bool    `json:"isOverBudget"`
}

// Health is the aggregate position across all shown categories.
type Health struct {
	TotalSpent float64 `json:"totalSpent"`
	TotalLimit float64 `json:"totalLimit"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

// Evaluate builds the per-category report and the overall health for
// the given limit table and expense-type spending.
//
// An empty limit table means the user never configured budgets, so the
// default table is substituted wholesale. The shown category set is
// the union of configured categories and categories with spend; a
// category with spend but no limit is reported with limit 0.
func Evaluate(limits, spending map[string]float64) ([]CategoryBudget, Health) {
	if len(limits) == 0 {
		limits = models.DefaultBudgetLimits
	}

	names := make(map[string]struct{}, len(limits)+len(spending))
	for c := range limits {
		names[c] = struct{}{}
	}
	for c := range spending {
		names[c] = struct{}{}
	}

	categories := make([]CategoryBudget, 0, len(names))
	for name := range names {
		spent := spending[name]
		limit := limits[name]
		categories = append(categories, CategoryBudget{
			Category:   name,
			Spent:      spent,
			Limit:      limit,
			Percentage: percentage(spent, limit),
			Remaining:  limit - spent,
			OverBudget: spent > limit,
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Category < categories[j].Category
	})

	var health Health
	for _, c := range categories {
		health.TotalSpent += c.Spent
		health.TotalLimit += c.Limit
	}
	if health.TotalLimit > 0 {
		health.Percentage = health.TotalSpent / health.TotalLimit * 100
	}
	health.Status = status(health.Percentage)

	return categories, health
}

// percentage is the spend/limit ratio clamped at 100 for display. A
// zero limit with any spend counts as fully over.
func percentage(spent, limit float64) float64 {
	if limit > 0 {
		p := spent / limit * 100
		if p > 100 {
			return 100
		}
		return p
	}
	if spent > 0 {
		return 100
	}
	return 0
}

func status(pct float64) string {
	switch {
	case pct > 100:
		return StatusOver
	case pct > 80:
		return StatusWarning
	default:
		return StatusGood
	}
}
