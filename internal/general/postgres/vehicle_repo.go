package postgres

import (
	"context"
	"errors"
	"fmt"

	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/vehicle"
	"ride-share/internal/ports"

	"github.com/jackc/pgx/v5"
)

// VehicleRepo persists driver-owned vehicles using pgx and plain SQL.
type VehicleRepo struct{}

// NewVehicleRepo constructs a new VehicleRepo.
func NewVehicleRepo() ports.VehicleRepository {
	return &VehicleRepo{}
}

const vehicleColumns = `
	id, created_at, updated_at, driver_id,
	make, model, year, color, license_plate, vehicle_class, capacity`

func scanVehicle(row rowScanner) (*vehicle.Vehicle, error) {
	var out vehicle.Vehicle
	var class string

	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.DriverID,
		&out.Make, &out.Model, &out.Year, &out.Color, &out.LicensePlate, &class, &out.Capacity,
	)
	if err != nil {
		return nil, err
	}

	out.Class = ride.VehicleClass(class)
	return &out, nil
}

// Create inserts a vehicle row.
func (repo *VehicleRepo) Create(ctx context.Context, v *vehicle.Vehicle) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO vehicles (
			driver_id, make, model, year, color, license_plate, vehicle_class, capacity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		v.DriverID, v.Make, v.Model, v.Year, v.Color, v.LicensePlate, v.Class.String(), v.Capacity,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

// GetByID fetches a vehicle by primary key. Returns (nil, nil) when absent.
func (repo *VehicleRepo) GetByID(ctx context.Context, id int64) (*vehicle.Vehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	v, err := scanVehicle(tx.QueryRow(ctx, `SELECT`+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// ListByDriver returns the driver's registered vehicles.
func (repo *VehicleRepo) ListByDriver(ctx context.Context, driverID int64) ([]*vehicle.Vehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+vehicleColumns+`
		FROM vehicles
		WHERE driver_id = $1
		ORDER BY created_at ASC
	`, driverID)
	if err != nil {
		return nil, fmt.Errorf("query vehicles by driver: %w", err)
	}
	defer rows.Close()

	var out []*vehicle.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// Update rewrites the mutable vehicle fields.
func (repo *VehicleRepo) Update(ctx context.Context, v *vehicle.Vehicle) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE vehicles
		SET make = $1, model = $2, year = $3, color = $4,
		    license_plate = $5, vehicle_class = $6, capacity = $7,
		    updated_at = now()
		WHERE id = $8
	`, v.Make, v.Model, v.Year, v.Color, v.LicensePlate, v.Class.String(), v.Capacity, v.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("vehicle not found")
	}
	return nil
}

// Delete removes a vehicle only when it belongs to driverID. Returns false
// when the row is absent or owned by someone else.
func (repo *VehicleRepo) Delete(ctx context.Context, id, driverID int64) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM vehicles
		WHERE id = $1
		  AND driver_id = $2
	`, id, driverID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
