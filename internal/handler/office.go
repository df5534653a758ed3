package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-charging/internal/httperr"
	"github.com/iliyamo/office-charging/internal/repository"
	"github.com/iliyamo/office-charging/internal/validation"
)

// OfficeHandler exposes CRUD over offices.
type OfficeHandler struct {
	Offices *repository.OfficeRepo
}

func NewOfficeHandler(r *repository.OfficeRepo) *OfficeHandler {
	return &OfficeHandler{Offices: r}
}

type OfficeRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"required,max=255"`
}

type officeView struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewOffice(o *repository.Office) officeView {
	return officeView{ID: o.ID, Name: o.Name, Address: o.Address, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt}
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, httperr.BadRequest("invalidId", "Invalid id parameter")
	}
	return id, nil
}

func (h *OfficeHandler) Create(c echo.Context) error {
	var req OfficeRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalidBody", "Invalid request body")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	office, err := h.Offices.Create(ctx, req.Name, req.Address)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Office created successfully", viewOffice(office))
}

func (h *OfficeHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	office, err := h.Offices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("officeNotFound", "Office not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "Office retrieved successfully", viewOffice(office))
}

func (h *OfficeHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	offices, err := h.Offices.List(ctx)
	if err != nil {
		return err
	}
	views := make([]officeView, 0, len(offices))
	for _, o := range offices {
		views = append(views, viewOffice(o))
	}
	return respond(c, http.StatusOK, "Offices retrieved successfully", views)
}

func (h *OfficeHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req OfficeRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalidBody", "Invalid request body")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	office, err := h.Offices.Update(ctx, id, req.Name, req.Address)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("officeNotFound", "Office not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "Office updated successfully", viewOffice(office))
}

func (h *OfficeHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Offices.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("officeNotFound", "Office not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "Office deleted successfully", nil)
}
