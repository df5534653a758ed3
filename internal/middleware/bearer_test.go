package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/office-charging/internal/auth"
	"github.com/iliyamo/office-charging/internal/httperr"
	"github.com/iliyamo/office-charging/internal/repository"
)

func TestBearerAuthMissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	// Service must never be reached without a bearer header.
	mw := BearerAuth(nil)
	err := mw(func(c echo.Context) error { return nil })(c)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.Equal(t, "missingAccessToken", appErr.Code)
}

func TestPrincipalRoundTrip(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Nil(t, CurrentPrincipal(c))
	assert.Equal(t, "anon", currentUserID(c))

	p := &auth.Principal{User: &repository.User{ID: 42}}
	SetPrincipal(c, p)
	assert.Same(t, p, CurrentPrincipal(c))
	assert.Equal(t, "42", currentUserID(c))
}
