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

// RideRepo persists rides using pgx and plain SQL.
type RideRepo struct{}

// NewRideRepo constructs a new RideRepo.
func NewRideRepo() ports.RideRepository {
	return &RideRepo{}
}

// rideColumns is the shared column list for every ride SELECT; keep in sync
// with scanRide.
const rideColumns = `
	id, created_at, updated_at, ride_number, rider_id, driver_id, vehicle_id,
	pickup_lat, pickup_lng, pickup_address, dropoff_lat, dropoff_lng, dropoff_address,
	vehicle_class, status, estimated_fare, actual_fare, distance_meters, duration_seconds,
	is_shared, max_passengers, current_passengers,
	cancellation_reason, cancelled_by, refund_amount, refund_status,
	requested_at, accepted_at, started_at, completed_at, cancelled_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*ride.Ride, error) {
	var out ride.Ride
	var class, status string
	var cancelledBy, refundStatus *string

	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.RideNumber, &out.RiderID, &out.DriverID, &out.VehicleID,
		&out.Pickup.Latitude, &out.Pickup.Longitude, &out.PickupAddress,
		&out.Dropoff.Latitude, &out.Dropoff.Longitude, &out.DropoffAddress,
		&class, &status, &out.EstimatedFare, &out.ActualFare, &out.DistanceMeters, &out.DurationSeconds,
		&out.IsShared, &out.MaxPassengers, &out.CurrentPassengers,
		&out.CancellationReason, &cancelledBy, &out.RefundAmount, &refundStatus,
		&out.RequestedAt, &out.AcceptedAt, &out.StartedAt, &out.CompletedAt, &out.CancelledAt,
	)
	if err != nil {
		return nil, err
	}

	out.VehicleClass = ride.VehicleClass(class)
	out.Status = ride.Status(status)
	if cancelledBy != nil {
		actor := ride.CancelActor(*cancelledBy)
		out.CancelledBy = &actor
	}
	if refundStatus != nil {
		rs := ride.RefundStatus(*refundStatus)
		out.RefundStatus = &rs
	}

	return &out, nil
}

func collectRides(rows pgx.Rows) ([]*ride.Ride, error) {
	defer rows.Close()

	var rides []*ride.Ride
	for rows.Next() {
		rd, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		rides = append(rides, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return rides, nil
}

// Create inserts a new ride row in `searching` state.
func (repo *RideRepo) Create(ctx context.Context, r *ride.Ride) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	// insert only the columns we actually have values for at creation time
	err = tx.QueryRow(ctx, `
		INSERT INTO rides (
			ride_number, rider_id,
			pickup_lat, pickup_lng, pickup_address,
			dropoff_lat, dropoff_lng, dropoff_address,
			vehicle_class, status, estimated_fare,
			distance_meters, duration_seconds,
			is_shared, max_passengers, current_passengers
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at, requested_at
	`,
		r.RideNumber,
		r.RiderID,
		r.Pickup.Latitude, r.Pickup.Longitude, r.PickupAddress,
		r.Dropoff.Latitude, r.Dropoff.Longitude, r.DropoffAddress,
		r.VehicleClass.String(),
		r.Status.String(), // "searching"
		r.EstimatedFare,
		r.DistanceMeters, r.DurationSeconds,
		r.IsShared, r.MaxPassengers, r.CurrentPassengers,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.RequestedAt)

	return err
}

// GetByID fetches a ride by primary key. Returns (nil, nil) when absent.
func (repo *RideRepo) GetByID(ctx context.Context, id int64) (*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rd, err := scanRide(tx.QueryRow(ctx, `SELECT`+rideColumns+` FROM rides WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rd, nil
}

// ActiveByRider fetches the rider's current non-terminal ride, if any.
func (repo *RideRepo) ActiveByRider(ctx context.Context, riderID int64) (*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rd, err := scanRide(tx.QueryRow(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE rider_id = $1
		  AND status IN ('searching', 'accepted', 'driver_arriving', 'in_progress')
		ORDER BY requested_at DESC
		LIMIT 1
	`, riderID))
	if err != nil {
		// no active ride found
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rd, nil
}

// ActiveByDriver fetches the driver's current assigned ride, if any. A
// searching ride has no driver yet, so the status set is narrower than the
// rider's.
func (repo *RideRepo) ActiveByDriver(ctx context.Context, driverID int64) (*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rd, err := scanRide(tx.QueryRow(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE driver_id = $1
		  AND status IN ('accepted', 'driver_arriving', 'in_progress')
		ORDER BY accepted_at DESC
		LIMIT 1
	`, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rd, nil
}

// Accept assigns driver and vehicle and moves searching -> accepted. The
// WHERE clause is the concurrency guard: two drivers racing for the same
// ride produce exactly one row update, and the loser gets (false, nil).
func (repo *RideRepo) Accept(ctx context.Context, rideID, driverID, vehicleID int64, at time.Time) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET driver_id = $1,
		    vehicle_id = $2,
		    status = 'accepted',
		    accepted_at = $3,
		    updated_at = now()
		WHERE id = $4
		  AND status = 'searching'
		  AND driver_id IS NULL
	`, driverID, vehicleID, at, rideID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// AdvanceStatus compare-and-swaps the ride status. Transition timestamps are
// stamped first-write-only via COALESCE so a replayed transition cannot move
// them.
func (repo *RideRepo) AdvanceStatus(ctx context.Context, rideID int64, from, to ride.Status, at time.Time) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	if !from.CanTransitionTo(to) {
		return false, ride.ErrInvalidStatusTransition
	}

	query := `
		UPDATE rides
		SET status = $1,
		    updated_at = now()`
	switch to {
	case ride.StatusInProgress:
		query += `, started_at = COALESCE(started_at, $2)`
	case ride.StatusCompleted:
		query += `, completed_at = COALESCE(completed_at, $2)`
	default:
		query += `, updated_at = GREATEST(updated_at, $2)`
	}
	query += `
		WHERE id = $3
		  AND status = $4`

	tag, err := tx.Exec(ctx, query, to.String(), at, rideID, from.String())
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// Complete moves in_progress -> completed and fixes the actual fare in the
// same guarded write.
func (repo *RideRepo) Complete(ctx context.Context, rideID, actualFare int64, at time.Time) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET status = 'completed',
		    actual_fare = $1,
		    completed_at = COALESCE(completed_at, $2),
		    updated_at = now()
		WHERE id = $3
		  AND status = 'in_progress'
	`, actualFare, at, rideID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// Cancel moves any non-terminal ride to cancelled with actor and reason.
func (repo *RideRepo) Cancel(ctx context.Context, rideID int64, actor ride.CancelActor, reason string, at time.Time) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	var reasonArg *string
	if reason != "" {
		reasonArg = &reason
	}

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET status = 'cancelled',
		    cancelled_by = $1,
		    cancellation_reason = $2,
		    cancelled_at = COALESCE(cancelled_at, $3),
		    updated_at = now()
		WHERE id = $4
		  AND status NOT IN ('completed', 'cancelled')
	`, actor.String(), reasonArg, at, rideID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// AddPassengerSeat increments current_passengers under the capacity guard.
// Losers of a last-seat race get (false, nil).
func (repo *RideRepo) AddPassengerSeat(ctx context.Context, rideID int64) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET current_passengers = current_passengers + 1,
		    updated_at = now()
		WHERE id = $1
		  AND is_shared
		  AND status IN ('searching', 'accepted')
		  AND current_passengers < max_passengers
	`, rideID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// SetRefund records refund bookkeeping on a cancelled ride.
func (repo *RideRepo) SetRefund(ctx context.Context, rideID, amount int64, status ride.RefundStatus) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET refund_amount = $1,
		    refund_status = $2,
		    updated_at = now()
		WHERE id = $3
		  AND status = 'cancelled'
	`, amount, status.String(), rideID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// ListOpenShared returns joinable shared rides of a vehicle class, newest
// request first. The matcher narrows this candidate set geographically.
func (repo *RideRepo) ListOpenShared(ctx context.Context, class ride.VehicleClass) ([]*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE is_shared
		  AND vehicle_class = $1
		  AND status IN ('searching', 'accepted')
		  AND current_passengers < max_passengers
		ORDER BY requested_at DESC
	`, class.String())
	if err != nil {
		return nil, fmt.Errorf("query open shared rides: %w", err)
	}

	return collectRides(rows)
}

// ListPending returns unassigned searching rides, oldest first, for the
// driver-facing open requests view.
func (repo *RideRepo) ListPending(ctx context.Context) ([]*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE status = 'searching'
		ORDER BY requested_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending rides: %w", err)
	}

	return collectRides(rows)
}

// ListActive returns all rides currently in a non-terminal state.
func (repo *RideRepo) ListActive(ctx context.Context) ([]*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE status IN ('searching', 'accepted', 'driver_arriving', 'in_progress')
		ORDER BY requested_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query active rides: %w", err)
	}

	return collectRides(rows)
}

// ListByRider returns the rider's ride history, newest first.
func (repo *RideRepo) ListByRider(ctx context.Context, riderID int64) ([]*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE rider_id = $1
		ORDER BY requested_at DESC
	`, riderID)
	if err != nil {
		return nil, fmt.Errorf("query rides by rider: %w", err)
	}

	return collectRides(rows)
}

// ListByDriver returns rides a driver has been assigned to, newest first.
func (repo *RideRepo) ListByDriver(ctx context.Context, driverID int64) ([]*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE driver_id = $1
		ORDER BY requested_at DESC
	`, driverID)
	if err != nil {
		return nil, fmt.Errorf("query rides by driver: %w", err)
	}

	return collectRides(rows)
}

// ListAll returns every ride, newest first, for the admin dashboard.
func (repo *RideRepo) ListAll(ctx context.Context) ([]*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		ORDER BY requested_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query all rides: %w", err)
	}

	return collectRides(rows)
}

// ListCancelled returns cancelled rides, optionally filtered by who cancelled
// and by refund status.
func (repo *RideRepo) ListCancelled(ctx context.Context, by *ride.CancelActor, refund *ride.RefundStatus) ([]*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT` + rideColumns + `
		FROM rides
		WHERE status = 'cancelled'`
	args := []any{}

	if by != nil {
		args = append(args, by.String())
		query += fmt.Sprintf(" AND cancelled_by = $%d", len(args))
	}
	if refund != nil {
		args = append(args, refund.String())
		query += fmt.Sprintf(" AND refund_status = $%d", len(args))
	}
	query += `
		ORDER BY cancelled_at DESC`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cancelled rides: %w", err)
	}

	return collectRides(rows)
}
