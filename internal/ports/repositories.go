package ports

import (
	"context"
	"time"

	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/payment"
	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/domain/vehicle"
)

// UnitOfWork manages transactions across multiple repository operations. An
// engine operation's full effect set commits inside one WithinTx call or none
// of it does.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RideRepository persists rides. Lookup methods return (nil, nil) when the row
// is absent. Mutating methods with a bool result are conditional writes: they
// report false, without error, when the guard did not hold; the caller maps
// that to a CONFLICT. These guards, not read-then-write sequences, are what
// keep the single-active-ride and capacity invariants under concurrency.
type RideRepository interface {
	Create(ctx context.Context, r *ride.Ride) error
	GetByID(ctx context.Context, id int64) (*ride.Ride, error)

	// ActiveByRider returns the rider's ride in
	// searching|accepted|driver_arriving|in_progress, if any.
	ActiveByRider(ctx context.Context, riderID int64) (*ride.Ride, error)
	// ActiveByDriver returns the driver's ride in
	// accepted|driver_arriving|in_progress, if any.
	ActiveByDriver(ctx context.Context, driverID int64) (*ride.Ride, error)

	// Accept assigns driver and vehicle and moves searching -> accepted,
	// guarded on the ride still being unassigned and searching.
	Accept(ctx context.Context, rideID, driverID, vehicleID int64, at time.Time) (bool, error)
	// AdvanceStatus compare-and-swaps the ride from `from` to `to`, stamping
	// the transition timestamp only if it is not already set.
	AdvanceStatus(ctx context.Context, rideID int64, from, to ride.Status, at time.Time) (bool, error)
	// Complete moves in_progress -> completed and records the actual fare in
	// the same guarded write.
	Complete(ctx context.Context, rideID, actualFare int64, at time.Time) (bool, error)
	// Cancel moves any non-terminal ride to cancelled with actor and reason.
	Cancel(ctx context.Context, rideID int64, actor ride.CancelActor, reason string, at time.Time) (bool, error)
	// AddPassengerSeat increments current_passengers, guarded on free capacity
	// and the ride still being joinable (searching|accepted).
	AddPassengerSeat(ctx context.Context, rideID int64) (bool, error)
	// SetRefund records refund bookkeeping on a cancelled ride.
	SetRefund(ctx context.Context, rideID, amount int64, status ride.RefundStatus) (bool, error)

	// ListOpenShared returns shared rides of the given class in
	// searching|accepted with seats left, most recently requested first.
	ListOpenShared(ctx context.Context, class ride.VehicleClass) ([]*ride.Ride, error)
	ListPending(ctx context.Context) ([]*ride.Ride, error)
	ListActive(ctx context.Context) ([]*ride.Ride, error)
	ListByRider(ctx context.Context, riderID int64) ([]*ride.Ride, error)
	ListByDriver(ctx context.Context, driverID int64) ([]*ride.Ride, error)
	ListAll(ctx context.Context) ([]*ride.Ride, error)
	ListCancelled(ctx context.Context, by *ride.CancelActor, refund *ride.RefundStatus) ([]*ride.Ride, error)
}

// PassengerRepository persists shared-ride participants.
type PassengerRepository interface {
	Add(ctx context.Context, p *ride.Passenger) error
	GetByID(ctx context.Context, id int64) (*ride.Passenger, error)
	ListByRide(ctx context.Context, rideID int64) ([]*ride.Passenger, error)
	// AdvanceStatus compare-and-swaps the passenger from `from` to `to`,
	// stamping pickup/dropoff timestamps first-write-only.
	AdvanceStatus(ctx context.Context, id int64, from, to ride.PassengerStatus, at time.Time) (bool, error)
}

// UserRepository persists users, including the driver-only fields.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	// LockByID reads the user while holding its row lock for the rest of
	// the surrounding transaction. Check-then-act sequences keyed on one
	// user (one active ride per rider, one per driver) serialize on it.
	LockByID(ctx context.Context, id int64) (*user.User, error)
	ListAll(ctx context.Context) ([]*user.User, error)
	UpdateRole(ctx context.Context, id int64, role user.Role) error
	UpdateDriverStatus(ctx context.Context, id int64, status user.DriverStatus) error
	UpdateDriverLocation(ctx context.Context, id int64, p geo.Point, at time.Time) error
	SetVerified(ctx context.Context, id int64, verified bool) error
	SetAverageRating(ctx context.Context, id int64, scaled int) error
	IncrementTotalRides(ctx context.Context, id int64) error
	// ListAvailableDrivers returns drivers with status available whose last
	// location update is at or after updatedSince.
	ListAvailableDrivers(ctx context.Context, updatedSince time.Time) ([]*user.User, error)
}

// VehicleRepository persists driver-owned vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, v *vehicle.Vehicle) error
	GetByID(ctx context.Context, id int64) (*vehicle.Vehicle, error)
	ListByDriver(ctx context.Context, driverID int64) ([]*vehicle.Vehicle, error)
	Update(ctx context.Context, v *vehicle.Vehicle) error
	// Delete removes a vehicle only when it belongs to driverID.
	Delete(ctx context.Context, id, driverID int64) (bool, error)
}

// PaymentRepository persists per-ride payment rows.
type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	GetByRide(ctx context.Context, rideID int64) (*payment.Payment, error)
	ListCompletedByDriver(ctx context.Context, driverID int64) ([]*payment.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status payment.Status) error
}

// RatingRepository persists per-ride rating rows (one per ride, upserted).
type RatingRepository interface {
	GetByRide(ctx context.Context, rideID int64) (*rating.Rating, error)
	UpsertRiderToDriver(ctx context.Context, rideID int64, score int, comment string) error
	UpsertDriverToRider(ctx context.Context, rideID int64, score int, comment string) error
	// RiderToDriverScores returns all rider-to-driver scores across the
	// driver's completed rides, for average recomputation.
	RiderToDriverScores(ctx context.Context, driverID int64) ([]int, error)
}

// LocationHistoryRepository archives driver position samples per ride.
type LocationHistoryRepository interface {
	Append(ctx context.Context, rec *geo.LocationRecord) error
	ListByRide(ctx context.Context, rideID int64) ([]*geo.LocationRecord, error)
}

// DriverGeoCache is the redis-backed geo index of driver positions, used for
// proximity lookups on the available-drivers feed.
type DriverGeoCache interface {
	Upsert(ctx context.Context, driverID int64, p geo.Point) error
	Remove(ctx context.Context, driverID int64) error
	Nearby(ctx context.Context, p geo.Point, radiusKM float64, limit int) ([]int64, error)
}
