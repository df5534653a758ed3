// Package handler contains the HTTP handlers.  Handlers bind and validate
// request DTOs, call into repositories or services with a bounded context,
// and return domain errors for the central error handler to render.
package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// successEnvelope is the uniform success payload; its error-side counterpart
// lives in the httperr package.
type successEnvelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, successEnvelope{Status: "success", Message: message, Data: data})
}
