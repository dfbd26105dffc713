package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spendwise-server/src/db"
	"spendwise-server/src/models"
)

const expenseColumns = "id, user_id, title, amount, category, date, type, notes, created_at, updated_at"

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	expense.CreatedAt = now
	expense.UpdatedAt = now
	if expense.Date.IsZero() {
		expense.Date = now
	}
	if expense.Type == "" {
		expense.Type = models.TypeExpense
	}
	expense.Amount = models.RoundAmount(expense.Amount)

	query := `
		INSERT INTO expenses (id, user_id, title, amount, category, date, type, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		expense.ID, expense.UserID, expense.Title, expense.Amount, expense.Category,
		formatTime(expense.Date), expense.Type, expense.Notes,
		formatTime(expense.CreatedAt), formatTime(expense.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (s *Store) GetExpense(ctx context.Context, userID, id string) (*models.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE id = ? AND user_id = ?"
	row := s.db.QueryRowContext(ctx, query, id, userID)
	expense, err := scanExpense(row.Scan)
	if err == sql.ErrNoRows {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	expense.Amount = models.RoundAmount(expense.Amount)

	query := `
		UPDATE expenses
		SET title = ?, amount = ?, category = ?, date = ?, type = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		expense.Title, expense.Amount, expense.Category, formatTime(expense.Date),
		expense.Type, expense.Notes, formatTime(expense.UpdatedAt),
		expense.ID, expense.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string, filter db.ExpenseFilter) ([]models.Expense, db.PageMeta, error) {
	filter.Normalize()

	where := "user_id = ?"
	args := []any{userID}

	if filter.StartDate != nil {
		where += " AND date >= ?"
		args = append(args, formatTime(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where += " AND date <= ?"
		args = append(args, formatTime(*filter.EndDate))
	}
	if filter.Category != "" {
		where += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Type != "" {
		where += " AND type = ?"
		args = append(args, filter.Type)
	}
	if filter.Title != "" {
		where += " AND LOWER(title) LIKE '%' || LOWER(?) || '%'"
		args = append(args, filter.Title)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses WHERE "+where, args...).Scan(&total); err != nil {
		return nil, db.PageMeta{}, fmt.Errorf("failed to count expenses: %w", err)
	}
	meta := db.NewPageMeta(total, filter.Page, filter.Limit)

	query := "SELECT " + expenseColumns + " FROM expenses WHERE " + where +
		" ORDER BY date DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	query := "SELECT " + expenseColumns + " FROM expenses WHERE user_id = ? ORDER BY date DESC"
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// GetStats aggregates every record of the owner in a single pass.
// Recomputing these numbers from a paged subset would be wrong, so the
// arithmetic lives here rather than in the handler.
func (s *Store) GetStats(ctx context.Context, userID string) (db.Stats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(MAX(CASE WHEN type = 'expense' THEN amount END), 0),
			COALESCE(AVG(CASE WHEN type = 'expense' THEN amount END), 0),
			COUNT(*)
		FROM expenses WHERE user_id = ?
	`
	var stats db.Stats
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
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
			CAST(strftime('%Y', date) AS INTEGER) AS year,
			CAST(strftime('%m', date) AS INTEGER) AS month,
			COALESCE(SUM(amount), 0),
			COUNT(*)
		FROM expenses WHERE user_id = ?
		GROUP BY year, month
		ORDER BY year DESC, month DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
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
	query := "SELECT category, COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = ? AND type = 'expense'"
	args := []any{userID}
	if start != nil {
		query += " AND date >= ?"
		args = append(args, formatTime(*start))
	}
	if end != nil {
		query += " AND date <= ?"
		args = append(args, formatTime(*end))
	}
	query += " GROUP BY category"

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func scanExpense(scan func(dest ...any) error) (*models.Expense, error) {
	var (
		e         models.Expense
		date      string
		createdAt string
		updatedAt string
	)
	err := scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category, &date, &e.Type, &e.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if e.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectExpenses(rows *sql.Rows) ([]models.Expense, error) {
	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}
