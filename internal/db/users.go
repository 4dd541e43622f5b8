package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shankarium/plm/internal/models"
)

// CreateUser inserts a user with an already-hashed password
func (q *Queries) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	u.CreatedAt = now()
	var id int64
	err := q.queryRow(ctx,
		"INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?) RETURNING id",
		u.Username, u.PasswordHash, string(u.Role), u.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user %q: %w", u.Username, err)
	}
	u.ID = id
	return id, nil
}

// GetUserByUsername looks up a user for login, or returns ErrNotFound
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := q.queryRow(ctx,
		"SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?", username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, scanTime(&u.CreatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %q: %w", username, err)
	}
	return &u, nil
}

// ListUsers returns every user ordered by id
func (q *Queries) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := q.query(ctx, "SELECT id, username, password_hash, role, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, scanTime(&u.CreatedAt)); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the number of user rows
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := q.queryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// SeedUsers inserts users only when the table is empty. It reports how many rows were written.
func (db *Database) SeedUsers(ctx context.Context, users []models.User) (int, error) {
	seeded := 0
	err := db.WithTx(ctx, func(q *Queries) error {
		n, err := q.CountUsers(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for i := range users {
			if _, err := q.CreateUser(ctx, &users[i]); err != nil {
				return err
			}
			seeded++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return seeded, nil
}
