package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (email, password, full_name, office_id) VALUES (?,?,?,?)")).
		WithArgs("dev@example.com", "hash", "Dev Eloper", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,email,full_name,office_id,created_at,updated_at FROM users WHERE id=?")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "office_id", "created_at", "updated_at"}).
			AddRow(1, "dev@example.com", "Dev Eloper", nil, now, now))

	u, err := repo.Create(context.Background(), "  Dev@Example.COM ", "hash", "Dev Eloper", nil)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", u.Email)
	assert.Empty(t, u.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'dev@example.com' for key 'users.uq_users_email'"))

	_, err = repo.Create(context.Background(), "dev@example.com", "hash", "Dev Eloper", nil)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT id,email,full_name").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "office_id", "created_at", "updated_at"}))

	_, err = repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
