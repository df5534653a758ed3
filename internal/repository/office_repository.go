package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Office represents a physical office that hosts charging stations.
type Office struct {
	ID        uint64
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OfficeRepo struct{ DB *sql.DB }

func NewOfficeRepo(db *sql.DB) *OfficeRepo { return &OfficeRepo{DB: db} }

// Create inserts a new office and returns the fully populated row.
func (r *OfficeRepo) Create(ctx context.Context, name, address string) (*Office, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO offices (name, address) VALUES (?,?)", name, address)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

func (r *OfficeRepo) GetByID(ctx context.Context, id uint64) (*Office, error) {
	var o Office
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,address,created_at,updated_at FROM offices WHERE id=? LIMIT 1",
		id).Scan(&o.ID, &o.Name, &o.Address, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// List returns all offices ordered by id.
func (r *OfficeRepo) List(ctx context.Context) ([]*Office, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,address,created_at,updated_at FROM offices ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Office
	for rows.Next() {
		o := new(Office)
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes name and address and returns the fresh row.
func (r *OfficeRepo) Update(ctx context.Context, id uint64, name, address string) (*Office, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE offices SET name=?, address=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		name, address, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes an office.  Users and stations referencing it fall back to a
// NULL office_id at the storage layer.
func (r *OfficeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM offices WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
