package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-charging/internal/httperr"
	"github.com/iliyamo/office-charging/internal/repository"
)

// LeaderboardHandler serves the charging-time leaderboard.
type LeaderboardHandler struct {
	Leaderboard *repository.LeaderboardRepo
}

func NewLeaderboardHandler(r *repository.LeaderboardRepo) *LeaderboardHandler {
	return &LeaderboardHandler{Leaderboard: r}
}

type leaderboardView struct {
	Rank             int       `json:"rank"`
	UserID           uint64    `json:"user_id"`
	FullName         string    `json:"full_name"`
	TotalChargingMin int64     `json:"total_charging_minutes"`
	SessionCount     int64     `json:"session_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Top returns the highest totals, ?limit=N capped at 100, default 10.
func (h *LeaderboardHandler) Top(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return httperr.BadRequest("invalidLimit", "Invalid limit parameter")
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, err := h.Leaderboard.Top(ctx, limit)
	if err != nil {
		return err
	}
	views := make([]leaderboardView, 0, len(entries))
	for i, e := range entries {
		views = append(views, leaderboardView{
			Rank:             i + 1,
			UserID:           e.UserID,
			FullName:         e.FullName,
			TotalChargingMin: e.TotalChargingMin,
			SessionCount:     e.SessionCount,
			UpdatedAt:        e.UpdatedAt,
		})
	}
	return respond(c, http.StatusOK, "Leaderboard retrieved successfully", views)
}
