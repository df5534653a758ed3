package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// AccessToken mirrors the 'access_tokens' table.  The Token column holds an
// opaque random value; the row id is what signed JWTs reference via 'jti'.
type AccessToken struct {
	ID        uint64
	UserID    uint64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefreshToken mirrors the 'refresh_tokens' table.  Each refresh token is
// paired 1:1 with its parent access token and is cascade-deleted with it.
type RefreshToken struct {
	ID            uint64
	AccessTokenID uint64
	Token         string
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TokenSpec carries the generated opaque value and expiry for a new record.
type TokenSpec struct {
	Token     string
	ExpiresAt time.Time
}

// TokenRepo is the opaque token store: it persists access/refresh token pairs
// and answers the point lookups the verifier needs.  The database is the
// single source of truth for session liveness.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// CreatePair inserts an access token and its dependent refresh token inside
// one transaction, so a crash can never leave an orphaned access token
// without its refresh counterpart.
func (r *TokenRepo) CreatePair(ctx context.Context, userID uint64, access, refresh TokenSpec) (*AccessToken, *RefreshToken, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO access_tokens (user_id, token, expires_at) VALUES (?,?,?)",
		userID, access.Token, access.ExpiresAt)
	if err != nil {
		return nil, nil, err
	}
	accessID, err := res.LastInsertId()
	if err != nil {
		return nil, nil, err
	}

	res, err = tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (access_token_id, token, expires_at) VALUES (?,?,?)",
		accessID, refresh.Token, refresh.ExpiresAt)
	if err != nil {
		return nil, nil, err
	}
	refreshID, err := res.LastInsertId()
	if err != nil {
		return nil, nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, err
	}

	at := &AccessToken{ID: uint64(accessID), UserID: userID, Token: access.Token, ExpiresAt: access.ExpiresAt}
	rt := &RefreshToken{ID: uint64(refreshID), AccessTokenID: uint64(accessID), Token: refresh.Token, ExpiresAt: refresh.ExpiresAt}
	return at, rt, nil
}

// GetAccessWithUser resolves an access token row by id together with its
// owning user.  Expiry is NOT checked here; the verifier owns that decision.
func (r *TokenRepo) GetAccessWithUser(ctx context.Context, id uint64) (*AccessToken, *User, error) {
	var (
		at AccessToken
		u  User
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT at.id, at.user_id, at.token, at.expires_at,
		        u.id, u.email, u.full_name, u.office_id, u.created_at, u.updated_at
		 FROM access_tokens at
		 JOIN users u ON u.id = at.user_id
		 WHERE at.id = ? LIMIT 1`,
		id).Scan(&at.ID, &at.UserID, &at.Token, &at.ExpiresAt,
		&u.ID, &u.Email, &u.FullName, &u.OfficeID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return &at, &u, nil
}

// GetValidRefresh resolves a refresh token by id, requiring its parent access
// token to still exist and the refresh record itself to be unexpired.  The
// owning user id is returned so rotation can issue a fresh pair.
func (r *TokenRepo) GetValidRefresh(ctx context.Context, id uint64) (*RefreshToken, *AccessToken, uint64, error) {
	var (
		rt RefreshToken
		at AccessToken
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT rt.id, rt.access_token_id, rt.token, rt.expires_at,
		        at.id, at.user_id, at.token, at.expires_at
		 FROM refresh_tokens rt
		 JOIN access_tokens at ON at.id = rt.access_token_id
		 WHERE rt.id = ? LIMIT 1`,
		id).Scan(&rt.ID, &rt.AccessTokenID, &rt.Token, &rt.ExpiresAt,
		&at.ID, &at.UserID, &at.Token, &at.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, 0, ErrNotFound
		}
		return nil, nil, 0, err
	}
	if time.Now().UTC().After(rt.ExpiresAt) {
		return nil, nil, 0, ErrNotFound
	}
	return &rt, &at, at.UserID, nil
}

// DeleteAccessByID removes an access token row.  The paired refresh token is
// cascade-deleted by the foreign key, which is exactly how rotation
// invalidates one session without touching the user's other devices.
func (r *TokenRepo) DeleteAccessByID(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM access_tokens WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired prunes access tokens whose expiry has passed; their refresh
// tokens go with them via the cascade.  Returns the number of rows removed.
func (r *TokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM access_tokens WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
