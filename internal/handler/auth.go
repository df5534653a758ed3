package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-charging/internal/auth"
	"github.com/iliyamo/office-charging/internal/httperr"
	"github.com/iliyamo/office-charging/internal/middleware"
	"github.com/iliyamo/office-charging/internal/repository"
	"github.com/iliyamo/office-charging/internal/validation"
)

// AuthHandler exposes registration, login and token rotation.
type AuthHandler struct {
	Sessions *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{Sessions: svc}
}

// ----- DTOs -----

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	FullName string  `json:"full_name" validate:"required,max=120"`
	OfficeID *uint64 `json:"office_id"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type userView struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	OfficeID  *uint64   `json:"office_id"`
	CreatedAt time.Time `json:"created_at"`
}

type opaqueTokenView struct {
	ID        uint64    `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type oauthTokensView struct {
	AccessToken  opaqueTokenView `json:"accessToken"`
	RefreshToken opaqueTokenView `json:"refreshToken"`
}

func viewUser(u *repository.User) userView {
	return userView{ID: u.ID, Email: u.Email, FullName: u.FullName, OfficeID: u.OfficeID, CreatedAt: u.CreatedAt}
}

func viewOAuthTokens(set *auth.TokenSet) oauthTokensView {
	at := set.OAuthTokens.AccessToken
	rt := set.OAuthTokens.RefreshToken
	return oauthTokensView{
		AccessToken:  opaqueTokenView{ID: at.ID, Token: at.Token, ExpiresAt: at.ExpiresAt},
		RefreshToken: opaqueTokenView{ID: rt.ID, Token: rt.Token, ExpiresAt: rt.ExpiresAt},
	}
}

// Register creates an account.  No tokens are issued here; the client logs in
// afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalidBody", "Invalid request body")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Sessions.Register(ctx, auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		OfficeID: req.OfficeID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User registered successfully", echo.Map{
		"user": viewUser(user),
	})
}

// Login verifies credentials and returns the user plus a fresh bearer pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalidBody", "Invalid request body")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, set, err := h.Sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Login successful", echo.Map{
		"user":         viewUser(user),
		"bearerTokens": set.BearerTokens,
	})
}

// Logout revokes the session the request authenticated with.
func (h *AuthHandler) Logout(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Sessions.Logout(ctx, p); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}

// Refresh rotates one session's token pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalidBody", "Invalid request body")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	set, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Tokens refreshed successfully", echo.Map{
		"oAuthTokens":  viewOAuthTokens(set),
		"bearerTokens": set.BearerTokens,
	})
}
