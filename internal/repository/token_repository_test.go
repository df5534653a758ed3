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

func newMockDB(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func TestCreatePairCommitsBothInserts(t *testing.T) {
	repo, mock := newMockDB(t)

	exp := time.Now().UTC().Add(time.Hour)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO access_tokens (user_id, token, expires_at) VALUES (?,?,?)")).
		WithArgs(uint64(7), "acc-opaque", exp).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens (access_token_id, token, expires_at) VALUES (?,?,?)")).
		WithArgs(int64(11), "ref-opaque", exp).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	at, rt, err := repo.CreatePair(context.Background(), 7,
		TokenSpec{Token: "acc-opaque", ExpiresAt: exp},
		TokenSpec{Token: "ref-opaque", ExpiresAt: exp})
	require.NoError(t, err)

	assert.Equal(t, uint64(11), at.ID)
	assert.Equal(t, uint64(7), at.UserID)
	assert.Equal(t, uint64(21), rt.ID)
	assert.Equal(t, uint64(11), rt.AccessTokenID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePairRollsBackOnRefreshInsertFailure(t *testing.T) {
	repo, mock := newMockDB(t)

	exp := time.Now().UTC().Add(time.Hour)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO access_tokens").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, _, err := repo.CreatePair(context.Background(), 7,
		TokenSpec{Token: "a", ExpiresAt: exp},
		TokenSpec{Token: "r", ExpiresAt: exp})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetValidRefreshExpired(t *testing.T) {
	repo, mock := newMockDB(t)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT rt.id, rt.access_token_id").
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{
			"rt.id", "rt.access_token_id", "rt.token", "rt.expires_at",
			"at.id", "at.user_id", "at.token", "at.expires_at",
		}).AddRow(21, 11, "ref-opaque", now.Add(-time.Minute), 11, 7, "acc-opaque", now.Add(time.Hour)))

	_, _, _, err := repo.GetValidRefresh(context.Background(), 21)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetValidRefreshReturnsOwningUser(t *testing.T) {
	repo, mock := newMockDB(t)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT rt.id, rt.access_token_id").
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{
			"rt.id", "rt.access_token_id", "rt.token", "rt.expires_at",
			"at.id", "at.user_id", "at.token", "at.expires_at",
		}).AddRow(21, 11, "ref-opaque", now.Add(time.Hour), 11, 7, "acc-opaque", now.Add(time.Hour)))

	rt, at, userID, err := repo.GetValidRefresh(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, uint64(21), rt.ID)
	assert.Equal(t, uint64(11), at.ID)
	assert.Equal(t, uint64(7), userID)
}

func TestGetValidRefreshMissingParent(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery("SELECT rt.id, rt.access_token_id").
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"rt.id"}))

	_, _, _, err := repo.GetValidRefresh(context.Background(), 21)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccessByIDNotFound(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM access_tokens WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteAccessByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteExpiredReportsCount(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM access_tokens WHERE expires_at < ?")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
