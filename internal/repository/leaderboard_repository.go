package repository

import (
	"context"
	"database/sql"
	"time"
)

// LeaderboardEntry aggregates per-user charging totals.
type LeaderboardEntry struct {
	ID               uint64
	UserID           uint64
	FullName         string
	TotalChargingMin int64
	SessionCount     int64
	UpdatedAt        time.Time
}

type LeaderboardRepo struct{ DB *sql.DB }

func NewLeaderboardRepo(db *sql.DB) *LeaderboardRepo { return &LeaderboardRepo{DB: db} }

// RecordSession adds a finished session's minutes to the user's running
// totals, creating the row on first use.
func (r *LeaderboardRepo) RecordSession(ctx context.Context, userID uint64, minutes int64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO charging_leaderboard (user_id, total_charging_time, session_count)
		 VALUES (?,?,1)
		 ON DUPLICATE KEY UPDATE
		   total_charging_time = total_charging_time + VALUES(total_charging_time),
		   session_count = session_count + 1,
		   updated_at = CURRENT_TIMESTAMP`,
		userID, minutes)
	return err
}

// Top returns the highest-ranked entries by total charging time.
func (r *LeaderboardRepo) Top(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT l.id, l.user_id, u.full_name, l.total_charging_time, l.session_count, l.updated_at
		 FROM charging_leaderboard l
		 JOIN users u ON u.id = l.user_id
		 ORDER BY l.total_charging_time DESC, l.session_count DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*LeaderboardEntry
	for rows.Next() {
		e := new(LeaderboardEntry)
		if err := rows.Scan(&e.ID, &e.UserID, &e.FullName, &e.TotalChargingMin, &e.SessionCount, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
