package httperr

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-charging/internal/validation"
)

// Envelope is the uniform error payload.  Every failure the API reports,
// from a single bad field to an internal crash, uses this shape.
type Envelope struct {
	StatusCode   int               `json:"status_code"`
	Timestamp    time.Time         `json:"timestamp"`
	ErrorCode    string            `json:"error_code,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	TargetDto    string            `json:"target_dto,omitempty"`
	Details      string            `json:"details,omitempty"`
}

// Unknown-failure payload is fixed: internals are logged server-side and
// never echoed to the client.
const (
	unknownCode    = "unkownError"
	unknownMessage = "Request completely failed, the team has been notified."
)

// NewHTTPErrorHandler returns Echo's central error handler.  Validation
// failures are normalized into the flat field map, domain errors map their
// code/status/details straight through, and anything unrecognized becomes
// the fixed 500 payload after being logged with full detail.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		env := Envelope{Timestamp: time.Now().UTC()}

		var (
			valErr  *validation.Error
			appErr  *Error
			echoErr *echo.HTTPError
		)
		switch {
		case errors.As(err, &valErr):
			res := validation.Normalize(valErr.FieldErrors)
			env.StatusCode = http.StatusBadRequest
			env.ErrorMessage = res.ErrorMessage
			env.Errors = res.Errors
			env.TargetDto = res.TargetDto

		case errors.As(err, &appErr):
			env.StatusCode = appErr.Status
			env.ErrorCode = appErr.Code
			env.ErrorMessage = appErr.Message
			env.Details = appErr.Details

		case errors.As(err, &echoErr):
			// Framework-raised errors (404 route misses, method not allowed).
			env.StatusCode = echoErr.Code
			if msg, ok := echoErr.Message.(string); ok {
				env.ErrorMessage = msg
			} else {
				env.ErrorMessage = http.StatusText(echoErr.Code)
			}

		default:
			logger.Error("unknown server error",
				"error", err.Error(),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"stack", string(debug.Stack()),
			)
			env.StatusCode = http.StatusInternalServerError
			env.ErrorCode = unknownCode
			env.ErrorMessage = unknownMessage
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(env.StatusCode)
			return
		}
		_ = c.JSON(env.StatusCode, env)
	}
}
