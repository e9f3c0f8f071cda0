package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ride-share/internal/domain/ride"
	"ride-share/internal/ports"

	"github.com/jackc/pgx/v5"
)

// PassengerRepo persists shared-ride participants using pgx and plain SQL.
type PassengerRepo struct{}

// NewPassengerRepo constructs a new PassengerRepo.
func NewPassengerRepo() ports.PassengerRepository {
	return &PassengerRepo{}
}

const passengerColumns = `
	id, created_at, updated_at, ride_id, passenger_id,
	pickup_lat, pickup_lng, pickup_address,
	dropoff_lat, dropoff_lng, dropoff_address,
	fare, status, picked_up_at, dropped_off_at`

func scanPassenger(row rowScanner) (*ride.Passenger, error) {
	var out ride.Passenger
	var status string

	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.RideID, &out.PassengerID,
		&out.Pickup.Latitude, &out.Pickup.Longitude, &out.PickupAddress,
		&out.Dropoff.Latitude, &out.Dropoff.Longitude, &out.DropoffAddress,
		&out.Fare, &status, &out.PickedUpAt, &out.DroppedOffAt,
	)
	if err != nil {
		return nil, err
	}

	out.Status = ride.PassengerStatus(status)
	return &out, nil
}

// Add inserts a passenger row. Seat accounting lives on the ride row and is
// incremented by RideRepo.AddPassengerSeat within the same transaction.
func (repo *PassengerRepo) Add(ctx context.Context, p *ride.Passenger) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO ride_passengers (
			ride_id, passenger_id,
			pickup_lat, pickup_lng, pickup_address,
			dropoff_lat, dropoff_lng, dropoff_address,
			fare, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`,
		p.RideID, p.PassengerID,
		p.Pickup.Latitude, p.Pickup.Longitude, p.PickupAddress,
		p.Dropoff.Latitude, p.Dropoff.Longitude, p.DropoffAddress,
		p.Fare, p.Status.String(),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID fetches a passenger row by primary key. Returns (nil, nil) when absent.
func (repo *PassengerRepo) GetByID(ctx context.Context, id int64) (*ride.Passenger, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	p, err := scanPassenger(tx.QueryRow(ctx, `SELECT`+passengerColumns+` FROM ride_passengers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListByRide returns all participants of a ride in join order.
func (repo *PassengerRepo) ListByRide(ctx context.Context, rideID int64) ([]*ride.Passenger, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+passengerColumns+`
		FROM ride_passengers
		WHERE ride_id = $1
		ORDER BY created_at ASC
	`, rideID)
	if err != nil {
		return nil, fmt.Errorf("query passengers by ride: %w", err)
	}
	defer rows.Close()

	var out []*ride.Passenger
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan passenger: %w", err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// AdvanceStatus compare-and-swaps the passenger status and stamps the
// pickup/dropoff timestamp first-write-only.
func (repo *PassengerRepo) AdvanceStatus(ctx context.Context, id int64, from, to ride.PassengerStatus, at time.Time) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	if !from.CanTransitionTo(to) {
		return false, ride.ErrInvalidPassengerStatus
	}

	query := `
		UPDATE ride_passengers
		SET status = $1,
		    updated_at = now()`
	switch to {
	case ride.PassengerPickedUp:
		query += `, picked_up_at = COALESCE(picked_up_at, $2)`
	case ride.PassengerDroppedOff:
		query += `, dropped_off_at = COALESCE(dropped_off_at, $2)`
	default:
		query += `, updated_at = GREATEST(updated_at, $2)`
	}
	query += `
		WHERE id = $3
		  AND status = $4`

	tag, err := tx.Exec(ctx, query, to.String(), at, id, from.String())
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
