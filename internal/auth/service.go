// Package auth implements the session subsystem: registration, login,
// opaque-token-backed bearer tokens, rotation on refresh and verification of
// authenticated requests.  Opaque token rows in the database decide whether a
// session is alive; the signed JWTs only reference those rows.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/office-charging/internal/config"
	"github.com/iliyamo/office-charging/internal/httperr"
	"github.com/iliyamo/office-charging/internal/repository"
)

// BearerTokens are the signed JWT strings handed to the client.
type BearerTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// OAuthTokens are the persisted opaque records behind a bearer pair.
type OAuthTokens struct {
	AccessToken  *repository.AccessToken
	RefreshToken *repository.RefreshToken
}

// TokenSet bundles the opaque records with their signed counterparts.
type TokenSet struct {
	OAuthTokens  OAuthTokens
	BearerTokens BearerTokens
}

// Principal is the authenticated identity of a request: the resolved user and
// the specific access token record the request presented.  It is request
// scoped and passed explicitly, never stored on shared state.
type Principal struct {
	User        *repository.User
	AccessToken *repository.AccessToken
}

// RegisterInput carries validated registration data into the service.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	OfficeID *uint64
}

// Service orchestrates credentials, token issuance, rotation and
// verification on top of the user and token repositories.
type Service struct {
	cfg    config.Config
	users  *repository.UserRepo
	tokens *repository.TokenRepo
}

func NewService(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo) *Service {
	return &Service{cfg: cfg, users: users, tokens: tokens}
}

// Register creates a user with a hashed password.  A taken email yields a
// conflict; the stored hash never travels back out of the repository layer.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*repository.User, error) {
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, httperr.Conflict("userAlreadyExists", "User already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, in.Email, hash, in.FullName, in.OfficeID)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// Lost the race between the existence check and the insert.
			return nil, httperr.Conflict("userAlreadyExists", "User already exists")
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a fresh token pair.  Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*repository.User, *TokenSet, error) {
	user, err := s.users.GetByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, httperr.Unauthorized("invalidCredentials", "Invalid credentials")
		}
		return nil, nil, err
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, nil, httperr.Unauthorized("invalidCredentials", "Invalid credentials")
	}

	set, err := s.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	user.PasswordHash = ""
	return user, set, nil
}

// GenerateTokens creates the opaque access/refresh record pair in one
// transaction and signs the two JWTs referencing them.  The access JWT's exp
// is longer than the access record's own expiry on purpose: the record is
// what gets revoked.
func (s *Service) GenerateTokens(ctx context.Context, user *repository.User) (*TokenSet, error) {
	now := time.Now().UTC()
	access := repository.TokenSpec{
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(time.Duration(s.cfg.AccessTTLHours) * time.Hour),
	}
	refresh := repository.TokenSpec{
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(time.Duration(s.cfg.RefreshTTLDays) * 24 * time.Hour),
	}

	at, rt, err := s.tokens.CreatePair(ctx, user.ID, access, refresh)
	if err != nil {
		return nil, err
	}

	jwtTTL := time.Duration(s.cfg.JWTTTLDays) * 24 * time.Hour
	accessJWT, err := signRef(s.cfg.JWTSecret, at.ID, user.ID, jwtTTL)
	if err != nil {
		return nil, err
	}
	refreshJWT, err := signRef(s.cfg.JWTSecret, rt.ID, at.ID, jwtTTL)
	if err != nil {
		return nil, err
	}

	return &TokenSet{
		OAuthTokens:  OAuthTokens{AccessToken: at, RefreshToken: rt},
		BearerTokens: BearerTokens{AccessToken: accessJWT, RefreshToken: refreshJWT},
	}, nil
}

// Refresh rotates a session.  The presented refresh JWT must decode, its
// referenced record must exist with a live parent access token, and then the
// parent access token is deleted — cascading away the old refresh token —
// before a brand-new pair is issued for the same user.  Deleting by access
// token id invalidates exactly one session, so other devices stay logged in.
func (s *Service) Refresh(ctx context.Context, rawJWT string) (*TokenSet, error) {
	claims, err := parseRef(s.cfg.JWTSecret, rawJWT)
	if err != nil {
		return nil, httperr.BadRequest("invalidRefreshToken", "Invalid refresh token")
	}

	_, accessTok, userID, err := s.tokens.GetValidRefresh(ctx, claims.JTI)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, httperr.BadRequest("invalidRefreshToken", "Invalid refresh token")
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, httperr.BadRequest("invalidRefreshToken", "Invalid refresh token")
		}
		return nil, err
	}

	// Intentional rotation: the cascade removes the paired refresh token too.
	if err := s.tokens.DeleteAccessByID(ctx, accessTok.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return s.GenerateTokens(ctx, user)
}

// Logout revokes one session by deleting its access token record; the paired
// refresh token cascades away.  The still-signed JWTs become useless because
// verification requires the record.
func (s *Service) Logout(ctx context.Context, p *Principal) error {
	err := s.tokens.DeleteAccessByID(ctx, p.AccessToken.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// VerifyAccess authenticates a bearer access JWT.  The JWT must verify and be
// unexpired, and the access token record it references must still exist and
// be unexpired — a deleted or lapsed record revokes the session regardless of
// the JWT's own exp.
func (s *Service) VerifyAccess(ctx context.Context, rawJWT string) (*Principal, error) {
	claims, err := parseRef(s.cfg.JWTSecret, rawJWT)
	if err != nil {
		return nil, httperr.Unauthorized("invalidAccessToken", "Invalid access token")
	}

	accessTok, user, err := s.tokens.GetAccessWithUser(ctx, claims.JTI)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, httperr.Unauthorized("invalidAccessToken", "Invalid access token")
		}
		return nil, err
	}
	if time.Now().UTC().After(accessTok.ExpiresAt) {
		return nil, httperr.Unauthorized("invalidAccessToken", "Invalid access token")
	}

	return &Principal{User: user, AccessToken: accessTok}, nil
}
