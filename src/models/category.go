package models

// Categories is the closed set of transaction labels. Expense and
// income transactions draw from different subsets in the UI, but the
// server validates against the union.
var Categories = []string{
	"Food",
	"Transport",
	"Shopping",
	"Housing",
	"Utilities",
	"Entertainment",
	"Health",
	"Salary",
	"Business",
	"Freelance",
	"Investments",
	"Gift",
	"Other",
}

// DefaultBudgetLimits is substituted wholesale when a user has no
// configured limits of their own.
var DefaultBudgetLimits = map[string]float64{
	"Food":          500,
	"Transport":     200,
	"Shopping":      300,
	"Housing":       1000,
	"Utilities":     200,
	"Entertainment": 150,
	"Health":        100,
	"Other":         400,
}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
