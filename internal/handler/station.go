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

// StationHandler exposes CRUD over charging stations.
type StationHandler struct {
	Stations *repository.StationRepo
}

func NewStationHandler(r *repository.StationRepo) *StationHandler {
	return &StationHandler{Stations: r}
}

type StationRequest struct {
	StationName string  `json:"station_name" validate:"required,max=120"`
	OfficeID    *uint64 `json:"office_id"`
}

type stationView struct {
	ID          uint64     `json:"id"`
	StationName string     `json:"station_name"`
	OfficeID    *uint64    `json:"office_id"`
	IsAvailable bool       `json:"is_available"`
	IsInUse     bool       `json:"is_in_use"`
	LastUsedAt  *time.Time `json:"last_used_at"`
	LastUsedBy  *string    `json:"last_used_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func viewStation(s *repository.ChargingStation) stationView {
	return stationView{
		ID:          s.ID,
		StationName: s.StationName,
		OfficeID:    s.OfficeID,
		IsAvailable: s.IsAvailable,
		IsInUse:     s.IsInUse,
		LastUsedAt:  s.LastUsedAt,
		LastUsedBy:  s.LastUsedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (h *StationHandler) Create(c echo.Context) error {
	var req StationRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalidBody", "Invalid request body")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	station, err := h.Stations.Create(ctx, req.StationName, req.OfficeID)
	if err != nil {
		if errors.Is(err, repository.ErrStationNameExists) {
			return httperr.Conflict("stationAlreadyExists", "Station name already exists")
		}
		return err
	}
	return respond(c, http.StatusCreated, "Station created successfully", viewStation(station))
}

func (h *StationHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	station, err := h.Stations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("stationNotFound", "Station not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "Station retrieved successfully", viewStation(station))
}

// List returns stations, optionally scoped to ?office_id=N.
func (h *StationHandler) List(c echo.Context) error {
	var officeID *uint64
	if raw := c.QueryParam("office_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return httperr.BadRequest("invalidOfficeId", "Invalid office_id parameter")
		}
		officeID = &id
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	stations, err := h.Stations.List(ctx, officeID)
	if err != nil {
		return err
	}
	views := make([]stationView, 0, len(stations))
	for _, s := range stations {
		views = append(views, viewStation(s))
	}
	return respond(c, http.StatusOK, "Stations retrieved successfully", views)
}

func (h *StationHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req StationRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalidBody", "Invalid request body")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	station, err := h.Stations.Update(ctx, id, req.StationName, req.OfficeID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return httperr.NotFound("stationNotFound", "Station not found")
		case errors.Is(err, repository.ErrStationNameExists):
			return httperr.Conflict("stationAlreadyExists", "Station name already exists")
		}
		return err
	}
	return respond(c, http.StatusOK, "Station updated successfully", viewStation(station))
}

func (h *StationHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Stations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("stationNotFound", "Station not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "Station deleted successfully", nil)
}
