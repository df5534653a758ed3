package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ChargingStation mirrors the 'charging_stations' table.  Availability flags
// are maintained by the session repository when sessions start and stop.
type ChargingStation struct {
	ID          uint64
	StationName string
	OfficeID    *uint64
	IsAvailable bool
	LastUsedAt  *time.Time
	LastUsedBy  *string
	IsInUse     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type StationRepo struct{ DB *sql.DB }

func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{DB: db} }

const stationColumns = "id,station_name,office_id,is_available,last_used_at,last_used_by,is_in_use,created_at,updated_at"

func scanStation(row *sql.Row) (*ChargingStation, error) {
	var s ChargingStation
	err := row.Scan(&s.ID, &s.StationName, &s.OfficeID, &s.IsAvailable,
		&s.LastUsedAt, &s.LastUsedBy, &s.IsInUse, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a station.  Station names are globally unique.
func (r *StationRepo) Create(ctx context.Context, name string, officeID *uint64) (*ChargingStation, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO charging_stations (station_name, office_id) VALUES (?,?)",
		name, officeID)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrStationNameExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

func (r *StationRepo) GetByID(ctx context.Context, id uint64) (*ChargingStation, error) {
	return scanStation(r.DB.QueryRowContext(ctx,
		"SELECT "+stationColumns+" FROM charging_stations WHERE id=? LIMIT 1", id))
}

// List returns stations, optionally filtered by office.
func (r *StationRepo) List(ctx context.Context, officeID *uint64) ([]*ChargingStation, error) {
	q := "SELECT " + stationColumns + " FROM charging_stations"
	args := []any{}
	if officeID != nil {
		q += " WHERE office_id=?"
		args = append(args, *officeID)
	}
	q += " ORDER BY id"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ChargingStation
	for rows.Next() {
		s := new(ChargingStation)
		if err := rows.Scan(&s.ID, &s.StationName, &s.OfficeID, &s.IsAvailable,
			&s.LastUsedAt, &s.LastUsedBy, &s.IsInUse, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update renames a station and/or moves it between offices.
func (r *StationRepo) Update(ctx context.Context, id uint64, name string, officeID *uint64) (*ChargingStation, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE charging_stations SET station_name=?, office_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		name, officeID, id)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrStationNameExists
		}
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
	}
	return r.GetByID(ctx, id)
}

func (r *StationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM charging_stations WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
