package repository

import (
	"context"
	"database/sql"
	"fmt"

	"networth/internal/models"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	InvalidateForUser(ctx context.Context, userID string) error
	Consume(ctx context.Context, tokenID string, userID string, passwordHash string) error
}

type passwordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, token, user_id, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	return r.db.QueryRowContext(ctx, query,
		token.ID, token.Token, token.UserID, token.ExpiresAt, token.Used, token.CreatedAt,
	).Scan(&token.CreatedAt)
}

// GetByToken returns the record whatever its state; the caller decides
// between used, expired and live.
func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, token, user_id, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`

	var t models.PasswordResetToken
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// InvalidateForUser marks every still-unused token of a user as used, so at
// most one live token exists once a fresh one is issued.
func (r *passwordResetRepository) InvalidateForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = TRUE WHERE user_id = $1 AND used = FALSE`, userID)
	return err
}

// Consume rewrites the user's password hash and marks the token used in one
// transaction. The conditional update on used = FALSE makes a raced second
// consumption fail with ErrTokenConsumed instead of double-applying.
func (r *passwordResetRepository) Consume(ctx context.Context, tokenID string, userID string, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID); err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = TRUE WHERE id = $1 AND used = FALSE`, tokenID)
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenConsumed
	}

	return tx.Commit()
}
