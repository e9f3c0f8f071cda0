package ride

import (
	"errors"
	"strings"
	"time"

	"ride-share/internal/domain/geo"
)

// Ride is the domain entity corresponding to the `rides` table.
type Ride struct {
	// Identity & audit
	ID         int64
	RideNumber string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Actors
	RiderID   int64
	DriverID  *int64 // nil until accepted
	VehicleID *int64 // nil until accepted

	// Trip
	Pickup         geo.Point
	PickupAddress  string
	Dropoff        geo.Point
	DropoffAddress string
	VehicleClass   VehicleClass
	Status         Status

	// Pricing, integer minor currency units
	EstimatedFare   int64
	ActualFare      *int64
	DistanceMeters  int64
	DurationSeconds int64

	// Shared-ride bookkeeping
	IsShared          bool
	MaxPassengers     int
	CurrentPassengers int

	// Cancellation metadata
	CancellationReason *string
	CancelledBy        *CancelActor
	RefundAmount       *int64
	RefundStatus       *RefundStatus

	// Lifecycle timestamps, set once per transition
	RequestedAt time.Time
	AcceptedAt  *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

var (
	ErrRiderRequired           = errors.New("rider id is required")
	ErrRideNumberRequired      = errors.New("ride number is required")
	ErrAddressRequired         = errors.New("pickup and dropoff addresses are required")
	ErrFareNegative            = errors.New("estimated fare must not be negative")
	ErrCapacityOutOfRange      = errors.New("max passengers must be between 2 and 6 for shared rides")
	ErrInvalidStatusTransition = errors.New("invalid ride status transition")
	ErrAlreadyAssigned         = errors.New("driver already assigned")
	ErrNoDriverAssigned        = errors.New("no driver assigned")
	ErrDriverRequired          = errors.New("driver id is required")
	ErrNotShared               = errors.New("ride is not a shared ride")
	ErrRideFull                = errors.New("ride is full")
)

// NewRequest builds a new ride in `searching` state from a rider request.
// Shared rides start with the requesting rider already counted as the first
// passenger; non-shared rides are fixed at capacity 1/1.
type NewRequest struct {
	RideNumber      string
	RiderID         int64
	Pickup          geo.Point
	PickupAddress   string
	Dropoff         geo.Point
	DropoffAddress  string
	VehicleClass    VehicleClass
	EstimatedFare   int64
	DistanceMeters  int64
	DurationSeconds int64
	IsShared        bool
	MaxPassengers   int
}

func New(req NewRequest) (*Ride, error) {
	if strings.TrimSpace(req.RideNumber) == "" {
		return nil, ErrRideNumberRequired
	}
	if req.RiderID <= 0 {
		return nil, ErrRiderRequired
	}
	if strings.TrimSpace(req.PickupAddress) == "" || strings.TrimSpace(req.DropoffAddress) == "" {
		return nil, ErrAddressRequired
	}
	if err := req.Pickup.Validate(); err != nil {
		return nil, err
	}
	if err := req.Dropoff.Validate(); err != nil {
		return nil, err
	}
	if !req.VehicleClass.Valid() {
		return nil, ErrInvalidVehicleClass
	}
	if req.EstimatedFare < 0 {
		return nil, ErrFareNegative
	}

	now := time.Now().UTC()
	r := &Ride{
		RideNumber:      strings.TrimSpace(req.RideNumber),
		CreatedAt:       now,
		UpdatedAt:       now,
		RiderID:         req.RiderID,
		Pickup:          req.Pickup,
		PickupAddress:   strings.TrimSpace(req.PickupAddress),
		Dropoff:         req.Dropoff,
		DropoffAddress:  strings.TrimSpace(req.DropoffAddress),
		VehicleClass:    req.VehicleClass,
		Status:          StatusSearching,
		EstimatedFare:   req.EstimatedFare,
		DistanceMeters:  req.DistanceMeters,
		DurationSeconds: req.DurationSeconds,
		RequestedAt:     now,
		MaxPassengers:   1,
		CurrentPassengers: 1,
	}

	if req.IsShared {
		capacity := req.MaxPassengers
		if capacity == 0 {
			capacity = DefaultSharedCapacity
		}
		if capacity < 2 || capacity > 6 {
			return nil, ErrCapacityOutOfRange
		}
		r.IsShared = true
		r.MaxPassengers = capacity
	}

	return r, nil
}

// DefaultSharedCapacity is used when a shared-ride request omits capacity.
const DefaultSharedCapacity = 4

// Accept assigns the driver and vehicle and moves searching -> accepted.
func (r *Ride) Accept(driverID, vehicleID int64) error {
	if driverID <= 0 {
		return ErrDriverRequired
	}
	if r.DriverID != nil {
		return ErrAlreadyAssigned
	}
	if r.Status != StatusSearching {
		return ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	r.DriverID = &driverID
	r.VehicleID = &vehicleID
	r.AcceptedAt = &now
	r.setStatus(StatusAccepted)
	return nil
}

// MarkDriverArriving transitions accepted -> driver_arriving.
func (r *Ride) MarkDriverArriving() error {
	if r.DriverID == nil {
		return ErrNoDriverAssigned
	}
	if !r.Status.CanTransitionTo(StatusDriverArriving) {
		return ErrInvalidStatusTransition
	}
	r.setStatus(StatusDriverArriving)
	return nil
}

// Start transitions driver_arriving -> in_progress.
func (r *Ride) Start() error {
	if r.DriverID == nil {
		return ErrNoDriverAssigned
	}
	if !r.Status.CanTransitionTo(StatusInProgress) {
		return ErrInvalidStatusTransition
	}
	if r.StartedAt == nil {
		now := time.Now().UTC()
		r.StartedAt = &now
	}
	r.setStatus(StatusInProgress)
	return nil
}

// Complete transitions in_progress -> completed and fixes the actual fare.
func (r *Ride) Complete(actualFare int64) error {
	if !r.Status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidStatusTransition
	}
	if r.CompletedAt == nil {
		now := time.Now().UTC()
		r.CompletedAt = &now
	}
	r.ActualFare = &actualFare
	r.setStatus(StatusCompleted)
	return nil
}

// Cancel transitions any non-terminal status to cancelled and records who
// cancelled and why. Refund fields are left untouched; refunds are a separate
// admin action.
func (r *Ride) Cancel(actor CancelActor, reason string) error {
	if !actor.Valid() {
		return ErrInvalidCancelActor
	}
	if r.Status.Terminal() {
		return ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	r.CancelledAt = &now
	r.CancelledBy = &actor
	if rs := strings.TrimSpace(reason); rs != "" {
		r.CancellationReason = &rs
	}
	r.setStatus(StatusCancelled)
	return nil
}

// FinalAmount returns the amount to charge for this ride: the actual fare when
// recorded, falling back to the estimate.
func (r *Ride) FinalAmount() int64 {
	if r.ActualFare != nil {
		return *r.ActualFare
	}
	return r.EstimatedFare
}

// SeatsLeft returns the number of open seats on a shared ride.
func (r *Ride) SeatsLeft() int {
	if n := r.MaxPassengers - r.CurrentPassengers; n > 0 {
		return n
	}
	return 0
}

// Joinable reports whether a new passenger may still join this shared ride.
// Joining is closed once the trip starts.
func (r *Ride) Joinable() bool {
	if !r.IsShared {
		return false
	}
	if r.Status != StatusSearching && r.Status != StatusAccepted {
		return false
	}
	return r.CurrentPassengers < r.MaxPassengers
}

// ----- internal helpers -----

func (r *Ride) setStatus(status Status) {
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
}
