package sqlite

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"spendwise-server/src/db"
	"spendwise-server/src/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestUser(t *testing.T, store *Store, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$notarealhash",
		Settings:     models.Settings{BudgetLimits: map[string]float64{}},
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func seedExpense(t *testing.T, store *Store, userID string, e models.Expense) *models.Expense {
	t.Helper()
	e.UserID = userID
	if err := store.CreateExpense(context.Background(), &e); err != nil {
		t.Fatalf("failed to seed expense: %v", err)
	}
	return &e
}

func TestUserLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, store, "alice@example.com")
	if user.ID == "" {
		t.Fatal("expected a generated user id")
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Errorf("got email %q, want alice@example.com", byID.Email)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("got id %q, want %q", byEmail.ID, user.ID)
	}

	user.Name = "Alice"
	user.Settings.BudgetLimits["Food"] = 500
	if err := store.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	updated, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID after update: %v", err)
	}
	if updated.Name != "Alice" {
		t.Errorf("got name %q, want Alice", updated.Name)
	}
	if updated.Settings.BudgetLimits["Food"] != 500 {
		t.Errorf("got Food limit %v, want 500", updated.Settings.BudgetLimits["Food"])
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	newTestUser(t, store, "dup@example.com")

	dupe := &models.User{
		Name:         "Other",
		Email:        "dup@example.com",
		PasswordHash: "$2a$10$notarealhash",
		Settings:     models.Settings{BudgetLimits: map[string]float64{}},
	}
	err := store.CreateUser(context.Background(), dupe)
	if !errors.Is(err, db.ErrDuplicateEmail) {
		t.Fatalf("got error %v, want ErrDuplicateEmail", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetUserByID(context.Background(), "00000000-0000-0000-0000-000000000000"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
	if _, err := store.GetUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
}

func TestCreateExpenseDefaultsAndRounding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "round@example.com")

	expense := seedExpense(t, store, user.ID, models.Expense{
		Title:    "Coffee",
		Amount:   3.14159,
		Category: "Food",
	})

	if expense.ID == "" {
		t.Fatal("expected a generated expense id")
	}
	if expense.Type != models.TypeExpense {
		t.Errorf("got type %q, want %q", expense.Type, models.TypeExpense)
	}
	if expense.Date.IsZero() {
		t.Error("expected a defaulted date")
	}

	stored, err := store.GetExpense(ctx, user.ID, expense.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if stored.Amount != 3.14 {
		t.Errorf("got amount %v, want 3.14", stored.Amount)
	}
}

func TestUpdateExpenseRounds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "update@example.com")

	expense := seedExpense(t, store, user.ID, models.Expense{
		Title:    "Groceries",
		Amount:   20,
		Category: "Food",
	})

	expense.Amount = 19.999
	expense.Title = "Weekly groceries"
	if err := store.UpdateExpense(ctx, expense); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}

	stored, err := store.GetExpense(ctx, user.ID, expense.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if stored.Amount != 20.00 {
		t.Errorf("got amount %v, want 20", stored.Amount)
	}
	if stored.Title != "Weekly groceries" {
		t.Errorf("got title %q", stored.Title)
	}
}

func TestExpenseOwnershipScoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, store, "alice@example.com")
	bob := newTestUser(t, store, "bob@example.com")

	expense := seedExpense(t, store, alice.ID, models.Expense{
		Title:    "Rent",
		Amount:   1000,
		Category: "Housing",
	})

	if _, err := store.GetExpense(ctx, bob.ID, expense.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("Get as other user: got %v, want ErrNotFound", err)
	}
	if err := store.DeleteExpense(ctx, bob.ID, expense.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("Delete as other user: got %v, want ErrNotFound", err)
	}

	stolen := *expense
	stolen.UserID = bob.ID
	stolen.Title = "Hijacked"
	if err := store.UpdateExpense(ctx, &stolen); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("Update as other user: got %v, want ErrNotFound", err)
	}

	// Alice's record is untouched.
	kept, err := store.GetExpense(ctx, alice.ID, expense.ID)
	if err != nil {
		t.Fatalf("GetExpense as owner: %v", err)
	}
	if kept.Title != "Rent" {
		t.Errorf("got title %q, want Rent", kept.Title)
	}
}

func TestListExpensesPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "pager@example.com")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		seedExpense(t, store, user.ID, models.Expense{
			Title:    "Item",
			Amount:   10,
			Category: "Other",
			Date:     base.AddDate(0, 0, i),
		})
	}

	expenses, meta, err := store.ListExpenses(ctx, user.ID, db.ExpenseFilter{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 10 {
		t.Errorf("got %d rows, want 10", len(expenses))
	}
	want := db.PageMeta{TotalCount: 25, TotalPages: 3, CurrentPage: 2, Limit: 10, HasNext: true, HasPrev: true}
	if meta != want {
		t.Errorf("got meta %+v, want %+v", meta, want)
	}

	// Newest first within the page.
	for i := 1; i < len(expenses); i++ {
		if expenses[i].Date.After(expenses[i-1].Date) {
			t.Fatal("expected descending date order")
		}
	}

	// A page past the end is empty, not an error.
	expenses, meta, err = store.ListExpenses(ctx, user.ID, db.ExpenseFilter{Page: 9, Limit: 10})
	if err != nil {
		t.Fatalf("ListExpenses past end: %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("got %d rows, want 0", len(expenses))
	}
	if meta.HasNext {
		t.Error("expected HasNext=false past the last page")
	}
}

func TestListExpensesFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "filters@example.com")

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	seedExpense(t, store, user.ID, models.Expense{Title: "Lunch at cafe", Amount: 12, Category: "Food", Date: jan})
	seedExpense(t, store, user.ID, models.Expense{Title: "Bus ticket", Amount: 3, Category: "Transport", Date: jan})
	seedExpense(t, store, user.ID, models.Expense{Title: "Salary", Amount: 3000, Category: "Salary", Type: models.TypeIncome, Date: feb})

	tests := []struct {
		name   string
		filter db.ExpenseFilter
		want   int
	}{
		{"by category", db.ExpenseFilter{Category: "Food"}, 1},
		{"by type income", db.ExpenseFilter{Type: models.TypeIncome}, 1},
		{"by type expense", db.ExpenseFilter{Type: models.TypeExpense}, 2},
		{"title substring case-insensitive", db.ExpenseFilter{Title: "CAFE"}, 1},
		{"date range january", db.ExpenseFilter{StartDate: timePtr(jan.AddDate(0, 0, -1)), EndDate: timePtr(jan.AddDate(0, 0, 1))}, 2},
		{"no match", db.ExpenseFilter{Category: "Health"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expenses, meta, err := store.ListExpenses(ctx, user.ID, tt.filter)
			if err != nil {
				t.Fatalf("ListExpenses: %v", err)
			}
			if len(expenses) != tt.want {
				t.Errorf("got %d rows, want %d", len(expenses), tt.want)
			}
			if meta.TotalCount != tt.want {
				t.Errorf("got totalCount %d, want %d", meta.TotalCount, tt.want)
			}
		})
	}
}

func TestGetStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "stats@example.com")

	seedExpense(t, store, user.ID, models.Expense{Title: "Salary", Amount: 3000, Category: "Salary", Type: models.TypeIncome})
	seedExpense(t, store, user.ID, models.Expense{Title: "Groceries", Amount: 85.50, Category: "Food"})
	seedExpense(t, store, user.ID, models.Expense{Title: "Fuel", Amount: 45.20, Category: "Transport"})
	seedExpense(t, store, user.ID, models.Expense{Title: "Electricity", Amount: 120.00, Category: "Utilities"})

	stats, err := store.GetStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalIncome != 3000 {
		t.Errorf("got totalIncome %v, want 3000", stats.TotalIncome)
	}
	if math.Abs(stats.TotalExpenses-250.70) > 0.01 {
		t.Errorf("got totalExpenses %v, want 250.70", stats.TotalExpenses)
	}
	if stats.HighestExpense != 120 {
		t.Errorf("got highestExpense %v, want 120", stats.HighestExpense)
	}
	if math.Abs(stats.AverageExpense-83.5667) > 0.01 {
		t.Errorf("got averageExpense %v, want ~83.57", stats.AverageExpense)
	}
	if stats.Count != 4 {
		t.Errorf("got count %d, want 4", stats.Count)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	store := newTestStore(t)
	user := newTestUser(t, store, "empty@example.com")

	stats, err := store.GetStats(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats != (db.Stats{}) {
		t.Errorf("got %+v, want all zeroes", stats)
	}
}

func TestGetMonthlySummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "summary@example.com")

	seedExpense(t, store, user.ID, models.Expense{Title: "A", Amount: 10, Category: "Other", Date: time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)})
	seedExpense(t, store, user.ID, models.Expense{Title: "B", Amount: 20, Category: "Other", Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)})
	seedExpense(t, store, user.ID, models.Expense{Title: "C", Amount: 30, Category: "Other", Date: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)})

	summary, err := store.GetMonthlySummary(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetMonthlySummary: %v", err)
	}
	want := []db.MonthlySummary{
		{Year: 2026, Month: 1, Amount: 50, Count: 2},
		{Year: 2025, Month: 12, Amount: 10, Count: 1},
	}
	if len(summary) != len(want) {
		t.Fatalf("got %d rows, want %d", len(summary), len(want))
	}
	for i := range want {
		if summary[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, summary[i], want[i])
		}
	}
}

func TestCategorySpending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "spending@example.com")

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	seedExpense(t, store, user.ID, models.Expense{Title: "Lunch", Amount: 40, Category: "Food", Date: jan})
	seedExpense(t, store, user.ID, models.Expense{Title: "Dinner", Amount: 60, Category: "Food", Date: feb})
	seedExpense(t, store, user.ID, models.Expense{Title: "Bus", Amount: 15, Category: "Transport", Date: jan})
	// Income never counts as spending.
	seedExpense(t, store, user.ID, models.Expense{Title: "Salary", Amount: 3000, Category: "Salary", Type: models.TypeIncome, Date: jan})

	all, err := store.CategorySpending(ctx, user.ID, nil, nil)
	if err != nil {
		t.Fatalf("CategorySpending: %v", err)
	}
	if all["Food"] != 100 || all["Transport"] != 15 {
		t.Errorf("got %v, want Food=100 Transport=15", all)
	}
	if _, ok := all["Salary"]; ok {
		t.Error("income category must not appear in spending")
	}

	janOnly, err := store.CategorySpending(ctx, user.ID, timePtr(jan.AddDate(0, 0, -1)), timePtr(jan.AddDate(0, 0, 1)))
	if err != nil {
		t.Fatalf("CategorySpending with range: %v", err)
	}
	if janOnly["Food"] != 40 {
		t.Errorf("got Food=%v in january, want 40", janOnly["Food"])
	}
}

func timePtr(t time.Time) *time.Time { return &t }
