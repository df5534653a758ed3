package auth

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/office-charging/internal/config"
	"github.com/iliyamo/office-charging/internal/httperr"
	"github.com/iliyamo/office-charging/internal/repository"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLHours: 24,
		RefreshTTLDays: 7,
		JWTTTLDays:     7,
		BcryptCost:     4,
	}
	return NewService(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func userRow(id uint64, email string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "email", "full_name", "office_id", "created_at", "updated_at"}).
		AddRow(id, email, "Dev Eloper", nil, now, now)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,email,full_name,office_id,created_at,updated_at FROM users WHERE email=?")).
		WithArgs("dev@example.com").
		WillReturnRows(userRow(1, "dev@example.com"))

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "dev@example.com", Password: "hunter2hunter2", FullName: "Dev Eloper",
	})

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "userAlreadyExists", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,email,password,full_name,office_id,created_at,updated_at FROM users WHERE email=?")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "full_name", "office_id", "created_at", "updated_at"}))

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever1")

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "invalidCredentials", appErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock := newTestService(t)

	hash, err := HashPassword("the-right-one", 4)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,email,password,full_name,office_id,created_at,updated_at FROM users WHERE email=?")).
		WithArgs("dev@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "full_name", "office_id", "created_at", "updated_at"}).
			AddRow(1, "dev@example.com", hash, "Dev Eloper", nil, now, now))

	_, _, err = svc.Login(context.Background(), "dev@example.com", "the-wrong-one")

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "invalidCredentials", appErr.Code)
}

func TestGenerateTokensIssuesLinkedPair(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO access_tokens (user_id, token, expires_at) VALUES (?,?,?)")).
		WithArgs(uint64(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens (access_token_id, token, expires_at) VALUES (?,?,?)")).
		WithArgs(int64(11), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	user := &repository.User{ID: 7, Email: "dev@example.com"}
	set, err := svc.GenerateTokens(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, uint64(11), set.OAuthTokens.AccessToken.ID)
	assert.Equal(t, uint64(21), set.OAuthTokens.RefreshToken.ID)
	assert.Equal(t, uint64(11), set.OAuthTokens.RefreshToken.AccessTokenID)
	assert.NotEqual(t, set.OAuthTokens.AccessToken.Token, set.OAuthTokens.RefreshToken.Token)

	// The access JWT references (access record id, user id) and the refresh
	// JWT references (refresh record id, access record id).
	access, err := parseRef("test-secret", set.BearerTokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), access.JTI)
	assert.Equal(t, uint64(7), access.Sub)

	refresh, err := parseRef("test-secret", set.BearerTokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(21), refresh.JTI)
	assert.Equal(t, uint64(11), refresh.Sub)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyAccessExpiredRecord(t *testing.T) {
	svc, mock := newTestService(t)

	raw, err := signRef("test-secret", 11, 7, time.Hour)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT at.id, at.user_id").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{
			"at.id", "at.user_id", "at.token", "at.expires_at",
			"u.id", "u.email", "u.full_name", "u.office_id", "u.created_at", "u.updated_at",
		}).AddRow(11, 7, "opaque", now.Add(-time.Minute), 7, "dev@example.com", "Dev Eloper", nil, now, now))

	_, err = svc.VerifyAccess(context.Background(), raw)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "invalidAccessToken", appErr.Code)
}

func TestVerifyAccessDeletedRecord(t *testing.T) {
	svc, mock := newTestService(t)

	raw, err := signRef("test-secret", 11, 7, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT at.id, at.user_id").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"at.id"}))

	_, err = svc.VerifyAccess(context.Background(), raw)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "invalidAccessToken", appErr.Code)
}

func TestRefreshRejectsMalformedToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "garbage")

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "invalidRefreshToken", appErr.Code)
}

// Rotation deletes the old access token record (its refresh token cascades)
// and issues a brand-new pair for the same user.
func TestRefreshRotatesPair(t *testing.T) {
	svc, mock := newTestService(t)

	raw, err := signRef("test-secret", 21, 11, time.Hour)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT rt.id, rt.access_token_id").
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{
			"rt.id", "rt.access_token_id", "rt.token", "rt.expires_at",
			"at.id", "at.user_id", "at.token", "at.expires_at",
		}).AddRow(21, 11, "ref-opaque", now.Add(time.Hour), 11, 7, "acc-opaque", now.Add(time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,email,full_name,office_id,created_at,updated_at FROM users WHERE id=?")).
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "dev@example.com"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM access_tokens WHERE id=?")).
		WithArgs(uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO access_tokens").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectCommit()

	set, err := svc.Refresh(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), set.OAuthTokens.AccessToken.ID)
	assert.Equal(t, uint64(22), set.OAuthTokens.RefreshToken.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshExpiredRecord(t *testing.T) {
	svc, mock := newTestService(t)

	raw, err := signRef("test-secret", 21, 11, time.Hour)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT rt.id, rt.access_token_id").
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{
			"rt.id", "rt.access_token_id", "rt.token", "rt.expires_at",
			"at.id", "at.user_id", "at.token", "at.expires_at",
		}).AddRow(21, 11, "ref-opaque", now.Add(-time.Minute), 11, 7, "acc-opaque", now.Add(time.Hour)))

	_, err = svc.Refresh(context.Background(), raw)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "invalidRefreshToken", appErr.Code)
}

func TestVerifyAccessHappyPath(t *testing.T) {
	svc, mock := newTestService(t)

	raw, err := signRef("test-secret", 11, 7, time.Hour)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT at.id, at.user_id").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{
			"at.id", "at.user_id", "at.token", "at.expires_at",
			"u.id", "u.email", "u.full_name", "u.office_id", "u.created_at", "u.updated_at",
		}).AddRow(11, 7, "opaque", now.Add(time.Hour), 7, "dev@example.com", "Dev Eloper", nil, now, now))

	p, err := svc.VerifyAccess(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), p.User.ID)
	assert.Equal(t, uint64(11), p.AccessToken.ID)
}
