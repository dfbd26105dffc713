package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"spendwise-server/src/db"
	"spendwise-server/src/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Settings.BudgetLimits == nil {
		user.Settings.BudgetLimits = map[string]float64{}
	}

	limits, err := json.Marshal(user.Settings.BudgetLimits)
	if err != nil {
		return fmt.Errorf("failed to encode budget limits: %w", err)
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, budget_limits, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		string(limits), formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return db.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, budget_limits, created_at, updated_at
		FROM users WHERE ` + where

	var (
		user      models.User
		limits    string
		createdAt string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&limits, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := json.Unmarshal([]byte(limits), &user.Settings.BudgetLimits); err != nil {
		return nil, fmt.Errorf("failed to decode budget limits: %w", err)
	}
	if user.Settings.BudgetLimits == nil {
		user.Settings.BudgetLimits = map[string]float64{}
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	limits, err := json.Marshal(user.Settings.BudgetLimits)
	if err != nil {
		return fmt.Errorf("failed to encode budget limits: %w", err)
	}

	query := `
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, budget_limits = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, string(limits),
		formatTime(user.UpdatedAt), user.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return db.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}
