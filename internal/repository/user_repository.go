package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// User mirrors the 'users' table.  PasswordHash is only populated by
// GetByEmailWithPassword; every other query leaves it empty so the hash can
// never leak into a response projection by accident.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	FullName     string
	OfficeID     *uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with an already-hashed password and returns the row.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, fullName string, officeID *uint64) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password, full_name, office_id) VALUES (?,?,?,?)",
		email, passwordHash, fullName, officeID)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a user by id.  The password column is not selected.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,full_name,office_id,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.FullName, &u.OfficeID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches a user by normalized email without the password column.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,full_name,office_id,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.FullName, &u.OfficeID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmailWithPassword fetches a user by normalized email including the
// password hash.  Only the login path may use this projection.
func (r *UserRepo) GetByEmailWithPassword(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password,full_name,office_id,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.OfficeID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update changes the mutable profile fields and returns the fresh row.
// It returns ErrNotFound when no row matches the id.
func (r *UserRepo) Update(ctx context.Context, id uint64, fullName string, officeID *uint64) (*User, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=?, office_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		fullName, officeID, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and a no-op update, so
		// confirm existence before reporting not found.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user.  Access tokens (and transitively refresh tokens)
// cascade at the storage layer.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
