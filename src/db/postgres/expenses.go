package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"spendwise-server/src/db"
	"spendwise-server/src/models"
)

const expenseColumns = "id, user_id, title, amount, category, date, type, notes, created_at, updated_at"

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now()
	}
	if expense.Type == "" {
		expense.Type = models.TypeExpense
	}
	expense.Amount = models.RoundAmount(expense.Amount)

	query := `
		INSERT INTO expenses (id, user_id, title, amount, category, date, type, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := s.pool.QueryRow(ctx, query,
		expense.ID, expense.UserID, expense.Title, expense.Amount,
		expense.Category, expense.Date, expense.Type, expense.Notes,
	).Scan(&expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (s *Store) GetExpense(ctx context.Context, userID, id string) (*models.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE id = $1 AND user_id = $2"
	var e models.Expense
	err := s.pool.QueryRow(ctx, query, id, userID).Scan(
		&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category,
		&e.Date, &e.Type, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.Amount = models.RoundAmount(expense.Amount)

	query := `
		UPDATE expenses
		SET title = $1, amount = $2, category = $3, date = $4, type = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at
	`
	err := s.pool.QueryRow(ctx, query,
		expense.Title, expense.Amount, expense.Category, expense.Date,
		expense.Type, expense.Notes, expense.ID, expense.UserID,
	).Scan(&expense.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	cmd, err := s.pool.Exec(ctx, "DELETE FROM expenses WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string, filter db.ExpenseFilter) ([]models.Expense, db.PageMeta, error) {
	filter.Normalize()

	where := "user_id = $1"
	args := []any{userID}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Title != "" {
		args = append(args, filter.Title)
		where += fmt.Sprintf(" AND title ILIKE '%%' || $%d || '%%'", len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM expenses WHERE "+where, args...).Scan(&total); err != nil {
		return nil, db.PageMeta{}, fmt.Errorf("failed to count expenses: %w", err)
	}
	meta := db.NewPageMeta(total, filter.Page, filter.Limit)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf("SELECT %s FROM expenses WHERE %s ORDER BY date DESC LIMIT $%d OFFSET $%d",
		expenseColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.PageMeta{}, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses, err := collectExpenses(rows)
	if err != nil {
		return nil, db.PageMeta{}, err
	}
	return expenses, meta, nil
}

func (s *Store) AllExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE user_id = $1 ORDER BY date DESC"
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (s *Store) GetStats(ctx context.Context, userID string) (db.Stats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(MAX(CASE WHEN type = 'expense' THEN amount END), 0),
			COALESCE(AVG(CASE WHEN type = 'expense' THEN amount END), 0),
			COUNT(*)
		FROM expenses WHERE user_id = $1
	`
	var stats db.Stats
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalExpenses, &stats.TotalIncome,
		&stats.HighestExpense, &stats.AverageExpense, &stats.Count,
	)
	if err != nil {
		return db.Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

func (s *Store) GetMonthlySummary(ctx context.Context, userID string) ([]db.MonthlySummary, error) {
	query := `
		SELECT
			EXTRACT(YEAR FROM date)::INT AS year,
			EXTRACT(MONTH FROM date)::INT AS month,
			COALESCE(SUM(amount), 0),
			COUNT(*)
		FROM expenses WHERE user_id = $1
		GROUP BY year, month
		ORDER BY year DESC, month DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly summary: %w", err)
	}
	defer rows.Close()

	summary := []db.MonthlySummary{}
	for rows.Next() {
		var m db.MonthlySummary
		if err := rows.Scan(&m.Year, &m.Month, &m.Amount, &m.Count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary = append(summary, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summary rows: %w", err)
	}
	return summary, nil
}

func (s *Store) CategorySpending(ctx context.Context, userID string, start, end *time.Time) (map[string]float64, error) {
	query := "SELECT category, COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1 AND type = 'expense'"
	args := []any{userID}
	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " GROUP BY category"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get category spending: %w", err)
	}
	defer rows.Close()

	spending := map[string]float64{}
	for rows.Next() {
		var (
			category string
			amount   float64
		)
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan spending row: %w", err)
		}
		spending[category] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spending rows: %w", err)
	}
	return spending, nil
}

func collectExpenses(rows pgx.Rows) ([]models.Expense, error) {
	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category,
			&e.Date, &e.Type, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}
