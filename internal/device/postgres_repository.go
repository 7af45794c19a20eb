package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gridmesh/authcore/internal/common"
	"github.com/gridmesh/authcore/internal/dbx"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, d *Device) (*Device, error) {
	query := `
		INSERT INTO devices (name, description, max_hourly_kwh, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		d.Name, d.Description, d.MaxHourlyKWH, d.OwnerID).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	query := `
		SELECT id, name, description, max_hourly_kwh, owner_id, created_at
		FROM devices
		WHERE id = $1
	`
	d := &Device{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.Description, &d.MaxHourlyKWH, &d.OwnerID, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Device, error) {
	query := `
		SELECT id, name, description, max_hourly_kwh, owner_id, created_at
		FROM devices
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanDevices(rows)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*Device, error) {
	query := `
		SELECT id, name, description, max_hourly_kwh, owner_id, created_at
		FROM devices
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanDevices(rows)
}

func scanDevices(rows *sql.Rows) ([]*Device, error) {
	defer rows.Close()

	devices := []*Device{}
	for rows.Next() {
		d := &Device{}
		err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.MaxHourlyKWH, &d.OwnerID, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return devices, nil
}

func (r *PostgresRepository) Update(ctx context.Context, d *Device) error {
	query := `
		UPDATE devices
		SET name = $2, description = $3, max_hourly_kwh = $4
		WHERE id = $1
	`
	return r.execForOne(ctx, query, d.ID, d.Name, d.Description, d.MaxHourlyKWH)
}

func (r *PostgresRepository) AssignOwner(ctx context.Context, id, ownerID string) error {
	query := `
		UPDATE devices
		SET owner_id = $2
		WHERE id = $1
	`
	return r.execForOne(ctx, query, id, ownerID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execForOne(ctx, `DELETE FROM devices WHERE id = $1`, id)
}

func (r *PostgresRepository) execForOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
