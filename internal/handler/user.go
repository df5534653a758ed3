package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-charging/internal/httperr"
	"github.com/iliyamo/office-charging/internal/middleware"
	"github.com/iliyamo/office-charging/internal/repository"
	"github.com/iliyamo/office-charging/internal/validation"
)

// UserHandler exposes profile reads and updates for authenticated users.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(r *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: r}
}

type UpdateUserRequest struct {
	FullName string  `json:"full_name" validate:"required,max=120"`
	OfficeID *uint64 `json:"office_id"`
}

// Me returns the authenticated user's own profile.
func (h *UserHandler) Me(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)
	return respond(c, http.StatusOK, "User retrieved successfully", viewUser(p.User))
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("userNotFound", "User not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "User retrieved successfully", viewUser(user))
}

// FindByEmail resolves a colleague's profile from ?email=.
func (h *UserHandler) FindByEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return httperr.BadRequest("missingEmail", "Missing email parameter")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("userNotFound", "User not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "User retrieved successfully", viewUser(user))
}

// Update changes the caller's own profile.  Users cannot edit each other.
func (h *UserHandler) Update(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalidBody", "Invalid request body")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.Update(ctx, p.User.ID, req.FullName, req.OfficeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("userNotFound", "User not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "User updated successfully", viewUser(user))
}

// Delete removes the caller's own account; sessions die with it through the
// token cascade.
func (h *UserHandler) Delete(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, p.User.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("userNotFound", "User not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "User deleted successfully", nil)
}
