package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const uniqueViolation = "23505"

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already registered")
)

// PublicUser is the user shape returned by the user service. Password
// hashes and TOTP secrets never leave the store.
type PublicUser struct {
	ID               string `json:"_id"`
	Username         string `json:"username"`
	Status           int    `json:"status"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]PublicUser, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, status, two_factor_enabled
		FROM users
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]PublicUser, 0)
	for rows.Next() {
		var u PublicUser
		if err := rows.Scan(&u.ID, &u.Username, &u.Status, &u.TwoFactorEnabled); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (r *Repository) Get(ctx context.Context, id string) (PublicUser, error) {
	var u PublicUser
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, status, two_factor_enabled
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Status, &u.TwoFactorEnabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PublicUser{}, ErrNotFound
		}
		return PublicUser{}, fmt.Errorf("query user by id: %w", err)
	}

	return u, nil
}

func (r *Repository) SetStatus(ctx context.Context, id string, status int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateCredentials replaces the username and password of a user. The
// plaintext password is hashed here and never stored.
func (r *Repository) UpdateCredentials(ctx context.Context, id, username, plainPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET username = $2, password_hash = $3, updated_at = $4
		WHERE id = $1
	`, id, username, string(hash), time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("update user credentials: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
