package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"spendwise-server/src/db"
	"spendwise-server/src/models"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Settings.BudgetLimits == nil {
		user.Settings.BudgetLimits = map[string]float64{}
	}
	limits, err := json.Marshal(user.Settings.BudgetLimits)
	if err != nil {
		return fmt.Errorf("failed to encode budget limits: %w", err)
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, budget_limits)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err = s.pool.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, limits).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return db.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = $1", email)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, budget_limits, created_at, updated_at
		FROM users WHERE ` + where

	var (
		user   models.User
		limits []byte
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&limits, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := json.Unmarshal(limits, &user.Settings.BudgetLimits); err != nil {
		return nil, fmt.Errorf("failed to decode budget limits: %w", err)
	}
	if user.Settings.BudgetLimits == nil {
		user.Settings.BudgetLimits = map[string]float64{}
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	limits, err := json.Marshal(user.Settings.BudgetLimits)
	if err != nil {
		return fmt.Errorf("failed to encode budget limits: %w", err)
	}

	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, budget_limits = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	err = s.pool.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, limits, user.ID).
		Scan(&user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return db.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
