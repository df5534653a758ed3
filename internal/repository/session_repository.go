package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ChargingSession mirrors the 'charging_sessions' table.  A session is active
// from Start until Stop; DurationMinutes is filled in when it ends.
type ChargingSession struct {
	ID              uint64
	UserID          uint64
	StationID       uint64
	OfficeID        uint64
	StartTime       time.Time
	EndTime         *time.Time
	IsActive        bool
	DurationMinutes *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

const sessionColumns = "id,user_id,charging_station_id,office_id,start_time,end_time,is_active,duration_minutes,created_at,updated_at"

func scanSession(row *sql.Row) (*ChargingSession, error) {
	var s ChargingSession
	err := row.Scan(&s.ID, &s.UserID, &s.StationID, &s.OfficeID, &s.StartTime,
		&s.EndTime, &s.IsActive, &s.DurationMinutes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Start opens a charging session on a free station and flips the station's
// availability flags, all within one transaction so two users cannot claim
// the same plug concurrently.
func (r *SessionRepo) Start(ctx context.Context, userID, stationID, officeID uint64, usedBy string) (*ChargingSession, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock the station row for the duration of the check-and-claim.
	var inUse bool
	err = tx.QueryRowContext(ctx,
		"SELECT is_in_use FROM charging_stations WHERE id=? FOR UPDATE", stationID).Scan(&inUse)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return nil, err
	}
	if inUse {
		err = ErrStationInUse
		return nil, err
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"INSERT INTO charging_sessions (user_id, charging_station_id, office_id, is_active) VALUES (?,?,?,TRUE)",
		userID, stationID, officeID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE charging_stations
		 SET is_in_use=TRUE, is_available=FALSE, last_used_at=CURRENT_TIMESTAMP, last_used_by=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		usedBy, stationID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Stop closes an active session owned by userID, computes its duration in
// minutes and frees the station.  Returns ErrNotFound when the session does
// not exist, belongs to someone else, or is already finished.
func (r *SessionRepo) Stop(ctx context.Context, sessionID, userID uint64) (*ChargingSession, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		stationID uint64
		startTime time.Time
	)
	err = tx.QueryRowContext(ctx,
		`SELECT charging_station_id, start_time FROM charging_sessions
		 WHERE id=? AND user_id=? AND is_active=TRUE FOR UPDATE`,
		sessionID, userID).Scan(&stationID, &startTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return nil, err
	}

	minutes := int64(time.Now().UTC().Sub(startTime) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE charging_sessions
		 SET end_time=CURRENT_TIMESTAMP, is_active=FALSE, duration_minutes=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		minutes, sessionID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE charging_stations
		 SET is_in_use=FALSE, is_available=TRUE, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		stationID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, sessionID)
}

func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*ChargingSession, error) {
	return scanSession(r.DB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM charging_sessions WHERE id=? LIMIT 1", id))
}

// ListByUser returns a user's sessions, newest first.
func (r *SessionRepo) ListByUser(ctx context.Context, userID uint64) ([]*ChargingSession, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM charging_sessions WHERE user_id=? ORDER BY id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ChargingSession
	for rows.Next() {
		s := new(ChargingSession)
		if err := rows.Scan(&s.ID, &s.UserID, &s.StationID, &s.OfficeID, &s.StartTime,
			&s.EndTime, &s.IsActive, &s.DurationMinutes, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
