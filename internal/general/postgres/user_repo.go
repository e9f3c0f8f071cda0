package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"

	"github.com/jackc/pgx/v5"
)

// UserRepo persists users using pgx and plain SQL. Riders, drivers and admins
// share the users table.
type UserRepo struct{}

// NewUserRepo constructs a new UserRepo.
func NewUserRepo() ports.UserRepository {
	return &UserRepo{}
}

const userColumns = `
	id, created_at, updated_at, name, email, phone, role,
	license_number, driver_status, current_lat, current_lng, last_location_update,
	is_verified, total_rides, average_rating`

func scanUser(row rowScanner) (*user.User, error) {
	var out user.User
	var role string
	var license, driverStatus *string
	var lat, lng *float64

	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.Name, &out.Email, &out.Phone, &role,
		&license, &driverStatus, &lat, &lng, &out.LastLocationUpdate,
		&out.IsVerified, &out.TotalRides, &out.AverageRating,
	)
	if err != nil {
		return nil, err
	}

	out.Role = user.Role(role)
	if license != nil {
		out.LicenseNumber = *license
	}
	if driverStatus != nil {
		out.DriverStatus = user.DriverStatus(*driverStatus)
	}
	if lat != nil && lng != nil {
		out.CurrentLocation = &geo.Point{Latitude: *lat, Longitude: *lng}
	}

	return &out, nil
}

// GetByID fetches a user by primary key. Returns (nil, nil) when absent.
func (repo *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(tx.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// LockByID fetches a user with FOR UPDATE, serializing concurrent
// transactions that guard on the same user's state. Returns (nil, nil)
// when absent.
func (repo *UserRepo) LockByID(ctx context.Context, id int64) (*user.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(tx.QueryRow(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// ListAll returns every user for the admin dashboard.
func (repo *UserRepo) ListAll(ctx context.Context) ([]*user.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT`+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	return collectUsers(rows)
}

// UpdateRole changes a user's role.
func (repo *UserRepo) UpdateRole(ctx context.Context, id int64, role user.Role) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET role = $1, updated_at = now()
		WHERE id = $2
	`, role.String(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("user not found")
	}
	return nil
}

// UpdateDriverStatus changes a driver's availability status.
func (repo *UserRepo) UpdateDriverStatus(ctx context.Context, id int64, status user.DriverStatus) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET driver_status = $1, updated_at = now()
		WHERE id = $2
	`, status.String(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("user not found")
	}
	return nil
}

// UpdateDriverLocation stores the driver's current position and its report time.
func (repo *UserRepo) UpdateDriverLocation(ctx context.Context, id int64, p geo.Point, at time.Time) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET current_lat = $1,
		    current_lng = $2,
		    last_location_update = $3,
		    updated_at = now()
		WHERE id = $4
	`, p.Latitude, p.Longitude, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("user not found")
	}
	return nil
}

// SetVerified flips the driver verification flag.
func (repo *UserRepo) SetVerified(ctx context.Context, id int64, verified bool) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET is_verified = $1, updated_at = now()
		WHERE id = $2
	`, verified, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("user not found")
	}
	return nil
}

// SetAverageRating stores the recomputed x100-scaled average rating.
func (repo *UserRepo) SetAverageRating(ctx context.Context, id int64, scaled int) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET average_rating = $1, updated_at = now()
		WHERE id = $2
	`, scaled, id)
	return err
}

// IncrementTotalRides bumps the driver's completed-ride counter.
func (repo *UserRepo) IncrementTotalRides(ctx context.Context, id int64) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET total_rides = total_rides + 1, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

// ListAvailableDrivers returns available drivers with a location report at or
// after updatedSince. Stale positions are treated as offline.
func (repo *UserRepo) ListAvailableDrivers(ctx context.Context, updatedSince time.Time) ([]*user.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE role = 'driver'
		  AND driver_status = 'available'
		  AND last_location_update IS NOT NULL
		  AND last_location_update >= $1
		ORDER BY last_location_update DESC
	`, updatedSince)
	if err != nil {
		return nil, fmt.Errorf("query available drivers: %w", err)
	}

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*user.User, error) {
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return users, nil
}
