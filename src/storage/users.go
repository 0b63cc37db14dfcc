package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

const userColumns = `id, name, email, password_hash, created_at, updated_at`

// GetUserByID retrieves a user by id
func GetUserByID(ctx context.Context, db sqlscan.Querier, id string) (*User, error) {
	var u User
	err := sqlscan.Get(ctx, db, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by email, compared case-insensitively
func GetUserByEmail(ctx context.Context, db sqlscan.Querier, email string) (*User, error) {
	var u User
	err := sqlscan.Get(ctx, db, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetFirstUser returns the earliest created user
func GetFirstUser(ctx context.Context, db sqlscan.Querier) (*User, error) {
	var u User
	err := sqlscan.Get(ctx, db, &u, `SELECT `+userColumns+` FROM users ORDER BY created_at, rowid LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CountUsers returns the number of registered users
func CountUsers(ctx context.Context, db sqlscan.Querier) (int, error) {
	var n int
	err := sqlscan.Get(ctx, db, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

// CreateUser inserts a user. Emails are stored lower-cased.
func CreateUser(ctx context.Context, db Execer, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	user.Email = strings.ToLower(user.Email)

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

// UpdateUserName renames a user
func UpdateUserName(ctx context.Context, db Execer, id, name string) error {
	_, err := db.ExecContext(ctx, `UPDATE users SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now(), id)
	return err
}
