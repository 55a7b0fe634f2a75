package repository

import (
	"context"
	"database/sql"

	"networth/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateCurrency(ctx context.Context, id string, currency string) error
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, mobile, password_hash, country, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Mobile, user.PasswordHash, user.Country, user.Currency, user.CreatedAt,
	).Scan(&user.CreatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, mobile, password_hash, country, currency, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail expects an already lower-cased email; callers normalize before
// both lookup and storage so uniqueness stays case-insensitive.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, mobile, password_hash, country, currency, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var mobile sql.NullString
	err := row.Scan(&u.ID, &u.Email, &mobile, &u.PasswordHash, &u.Country, &u.Currency, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if mobile.Valid {
		u.Mobile = &mobile.String
	}
	return &u, nil
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *userRepository) UpdateCurrency(ctx context.Context, id string, currency string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET currency = $1 WHERE id = $2`, currency, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
