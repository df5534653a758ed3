package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-charging/internal/auth"
	"github.com/iliyamo/office-charging/internal/httperr"
	"github.com/iliyamo/office-charging/internal/middleware"
	"github.com/iliyamo/office-charging/internal/queue"
	"github.com/iliyamo/office-charging/internal/repository"
	"github.com/iliyamo/office-charging/internal/validation"
)

// SessionHandler starts and stops charging sessions.  Stopping a session also
// bumps the leaderboard and publishes a completion event; both are best
// effort and never fail the request.
type SessionHandler struct {
	Sessions    *repository.SessionRepo
	Stations    *repository.StationRepo
	Leaderboard *repository.LeaderboardRepo
	Logger      *slog.Logger
}

func NewSessionHandler(s *repository.SessionRepo, st *repository.StationRepo, l *repository.LeaderboardRepo, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{Sessions: s, Stations: st, Leaderboard: l, Logger: logger}
}

type StartSessionRequest struct {
	StationID uint64 `json:"station_id" validate:"required,gte=1"`
}

type sessionView struct {
	ID              uint64     `json:"id"`
	UserID          uint64     `json:"user_id"`
	StationID       uint64     `json:"station_id"`
	OfficeID        uint64     `json:"office_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	IsActive        bool       `json:"is_active"`
	DurationMinutes *int64     `json:"duration_minutes"`
}

func viewSession(s *repository.ChargingSession) sessionView {
	return sessionView{
		ID:              s.ID,
		UserID:          s.UserID,
		StationID:       s.StationID,
		OfficeID:        s.OfficeID,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		IsActive:        s.IsActive,
		DurationMinutes: s.DurationMinutes,
	}
}

// Start claims a free station for the caller.
func (h *SessionHandler) Start(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)

	var req StartSessionRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalidBody", "Invalid request body")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	station, err := h.Stations.GetByID(ctx, req.StationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("stationNotFound", "Station not found")
		}
		return err
	}
	if station.OfficeID == nil {
		return httperr.BadRequest("stationUnassigned", "Station is not assigned to an office")
	}

	session, err := h.Sessions.Start(ctx, p.User.ID, station.ID, *station.OfficeID, p.User.Email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStationInUse):
			return httperr.Conflict("stationInUse", "Station is already in use")
		case errors.Is(err, repository.ErrNotFound):
			return httperr.NotFound("stationNotFound", "Station not found")
		}
		return err
	}
	return respond(c, http.StatusCreated, "Charging session started", viewSession(session))
}

// Stop ends the caller's active session.
func (h *SessionHandler) Stop(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)

	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	session, err := h.Sessions.Stop(ctx, id, p.User.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("sessionNotFound", "Active session not found")
		}
		return err
	}

	if session.DurationMinutes != nil {
		if err := h.Leaderboard.RecordSession(ctx, p.User.ID, *session.DurationMinutes); err != nil {
			h.Logger.Error("leaderboard update failed", "error", err, "session_id", session.ID)
		}
	}
	h.publishCompleted(p, session)

	return respond(c, http.StatusOK, "Charging session stopped", viewSession(session))
}

func (h *SessionHandler) Get(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)

	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	session, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("sessionNotFound", "Session not found")
		}
		return err
	}
	if session.UserID != p.User.ID {
		return httperr.NotFound("sessionNotFound", "Session not found")
	}
	return respond(c, http.StatusOK, "Session retrieved successfully", viewSession(session))
}

// List returns the caller's sessions, newest first.
func (h *SessionHandler) List(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	sessions, err := h.Sessions.ListByUser(ctx, p.User.ID)
	if err != nil {
		return err
	}
	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, viewSession(s))
	}
	return respond(c, http.StatusOK, "Sessions retrieved successfully", views)
}

func (h *SessionHandler) publishCompleted(p *auth.Principal, session *repository.ChargingSession) {
	ended := time.Now().UTC().Format(time.RFC3339)
	if session.EndTime != nil {
		ended = session.EndTime.UTC().Format(time.RFC3339)
	}
	var minutes uint64
	if session.DurationMinutes != nil && *session.DurationMinutes > 0 {
		minutes = uint64(*session.DurationMinutes)
	}
	ev := queue.SessionCompletedEvent{
		SessionID:      session.ID,
		UserID:         session.UserID,
		UserEmail:      p.User.Email,
		StationID:      session.StationID,
		OfficeID:       session.OfficeID,
		StartedAt:      session.StartTime.UTC().Format(time.RFC3339),
		EndedAt:        ended,
		DurationMinute: minutes,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if station, err := h.Stations.GetByID(ctx, session.StationID); err == nil {
			ev.StationName = station.StationName
		}
		if err := queue.PublishSessionCompleted(ctx, ev); err != nil {
			h.Logger.Warn("session completed event publish failed", "error", err, "session_id", ev.SessionID)
		}
	}()
}
