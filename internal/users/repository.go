package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/closetrack/closetrack/internal/shared"
)

// Repository provides PostgreSQL backed persistence for users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all active users ordered by name.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, role, is_active, created_at, updated_at
		FROM users
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// GetUser fetches a single user by id.
func (r *Repository) GetUser(ctx context.Context, id string) (User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, name, role, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	var name pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&u.ID, &u.Email, &name, &u.Role, &u.IsActive, &createdAt, &updatedAt); err != nil {
		return User{}, err
	}
	if name.Valid {
		u.Name = name.String
	}
	if createdAt.Valid {
		u.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		u.UpdatedAt = updatedAt.Time
	}
	return u, nil
}
