package budget

import (
	"math"
	"testing"

	"spendwise-server/src/models"
)

func findCategory(t *testing.T, categories []CategoryBudget, name string) CategoryBudget {
	t.Helper()
	for _, c := range categories {
		if c.Category == name {
			return c
		}
	}
	t.Fatalf("category %q not in report", name)
	return CategoryBudget{}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		limits   map[string]float64
		spending map[string]float64
		validate func(t *testing.T, categories []CategoryBudget, health Health)
	}{
		{
			name:     "overspent category clamps percentage",
			limits:   map[string]float64{"Food": 500},
			spending: map[string]float64{"Food": 600},
			validate: func(t *testing.T, categories []CategoryBudget, health Health) {
				food := findCategory(t, categories, "Food")
				if !food.OverBudget {
					t.Error("expected Food to be over budget")
				}
				if food.Remaining != -100 {
					t.Errorf("Remaining = %v, want -100", food.Remaining)
				}
				if food.Percentage != 100 {
					t.Errorf("Percentage = %v, want clamped 100", food.Percentage)
				}
			},
		},
		{
			name:     "zero limit zero spend",
			limits:   map[string]float64{"Health": 0},
			spending: nil,
			validate: func(t *testing.T, categories []CategoryBudget, health Health) {
				h := findCategory(t, categories, "Health")
				if h.Percentage != 0 {
					t.Errorf("Percentage = %v, want 0", h.Percentage)
				}
				if h.OverBudget {
					t.Error("zero/zero must not be over budget")
				}
			},
		},
		{
			name:     "spend without configured limit surfaces at 100%",
			limits:   map[string]float64{"Food": 500},
			spending: map[string]float64{"Travel": 80},
			validate: func(t *testing.T, categories []CategoryBudget, health Health) {
				travel := findCategory(t, categories, "Travel")
				if travel.Limit != 0 {
					t.Errorf("Limit = %v, want 0", travel.Limit)
				}
				if travel.Percentage != 100 {
					t.Errorf("Percentage = %v, want 100", travel.Percentage)
				}
				if !travel.OverBudget {
					t.Error("spend over zero limit must be over budget")
				}
			},
		},
		{
			name:     "partial usage",
			limits:   map[string]float64{"Transport": 200},
			spending: map[string]float64{"Transport": 50},
			validate: func(t *testing.T, categories []CategoryBudget, health Health) {
				tr := findCategory(t, categories, "Transport")
				if math.Abs(tr.Percentage-25) > 0.001 {
					t.Errorf("Percentage = %v, want 25", tr.Percentage)
				}
				if tr.Remaining != 150 {
					t.Errorf("Remaining = %v, want 150", tr.Remaining)
				}
				if tr.OverBudget {
					t.Error("under-limit category flagged over budget")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories, health := Evaluate(tt.limits, tt.spending)
			tt.validate(t, categories, health)
		})
	}
}

func TestEvaluateSubstitutesDefaultTable(t *testing.T) {
	categories, _ := Evaluate(nil, map[string]float64{"Food": 100})

	if len(categories) != len(models.DefaultBudgetLimits) {
		t.Fatalf("got %d categories, want the %d defaults", len(categories), len(models.DefaultBudgetLimits))
	}
	food := findCategory(t, categories, "Food")
	if food.Limit != models.DefaultBudgetLimits["Food"] {
		t.Errorf("Food limit = %v, want default %v", food.Limit, models.DefaultBudgetLimits["Food"])
	}
}

func TestEvaluatePartialTableIsNotMerged(t *testing.T) {
	// A user with any configured limit keeps exactly that table; the
	// defaults never leak in category by category.
	categories, _ := Evaluate(map[string]float64{"Food": 50}, nil)
	if len(categories) != 1 {
		t.Fatalf("got %d categories, want 1", len(categories))
	}
	if categories[0].Category != "Food" || categories[0].Limit != 50 {
		t.Errorf("unexpected report: %+v", categories[0])
	}
}

func TestHealthStatusThresholds(t *testing.T) {
	tests := []struct {
		name   string
		spent  float64
		limit  float64
		status string
	}{
		{"well under", 100, 1000, StatusGood},
		{"exactly 80", 800, 1000, StatusGood},
		{"just over 80", 801, 1000, StatusWarning},
		{"exactly 100", 1000, 1000, StatusWarning},
		{"over 100", 1001, 1000, StatusOver},
		{"no limits at all means zero percent", 0, 0, StatusGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A non-empty table, even all zeroes, never triggers the
			// default substitution.
			limits := map[string]float64{"Food": tt.limit}
			_, health := Evaluate(limits, map[string]float64{"Food": tt.spent})
			if health.Status != tt.status {
				t.Errorf("status = %q (pct %v), want %q", health.Status, health.Percentage, tt.status)
			}
		})
	}
}

func TestEvaluateSortsCategories(t *testing.T) {
	categories, _ := Evaluate(map[string]float64{"Transport": 1, "Food": 1, "Housing": 1}, nil)
	want := []string{"Food", "Housing", "Transport"}
	for i, c := range categories {
		if c.Category != want[i] {
			t.Fatalf("order = %v at %d, want %v", c.Category, i, want)
		}
	}
}
