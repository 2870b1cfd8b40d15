package database

import (
	"context"
	"fmt"
	"time"

	"tickbug-backend/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, reset_token, reset_token_expiry, created_at, updated_at`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.ResetToken, &u.ResetTokenExpiry, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *Queries) CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string) (models.User, error) {
	now := q.now()
	var id int64
	err := q.q.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, email, passwordHash, firstName, lastName, now, now).Scan(&id)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return q.GetUser(ctx, id)
}

func (q *Queries) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(q.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(q.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

func (q *Queries) GetUserByResetToken(ctx context.Context, token string) (models.User, error) {
	u, err := scanUser(q.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token = $1`, token))
	if err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

// GetUsers returns the users with the given ids, keyed by id.
func (q *Queries) GetUsers(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	out := make(map[int64]models.User, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		u, err := q.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = u
	}
	return out, nil
}

func (q *Queries) UpdateUserProfile(ctx context.Context, id int64, firstName, lastName string) error {
	return q.execOne(ctx, `
		UPDATE users SET first_name = $1, last_name = $2, updated_at = $3
		WHERE id = $4
	`, firstName, lastName, q.now(), id)
}

func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return q.execOne(ctx, `
		UPDATE users SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL, updated_at = $2
		WHERE id = $3
	`, passwordHash, q.now(), id)
}

func (q *Queries) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	return q.execOne(ctx, `
		UPDATE users SET reset_token = $1, reset_token_expiry = $2, updated_at = $3
		WHERE id = $4
	`, token, expiry.UTC(), q.now(), id)
}

func (q *Queries) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := q.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
