package ride

import (
	"errors"
	"strings"
	"time"

	"ride-share/internal/domain/geo"
)

// PassengerStatus tracks a single participant through a shared ride.
type PassengerStatus string

const (
	PassengerWaiting    PassengerStatus = "waiting"
	PassengerPickedUp   PassengerStatus = "picked_up"
	PassengerDroppedOff PassengerStatus = "dropped_off"
)

var ErrInvalidPassengerStatus = errors.New("invalid passenger status")

// ParsePassengerStatus normalizes and validates a passenger status string.
func ParsePassengerStatus(in string) (PassengerStatus, error) {
	status := PassengerStatus(strings.ToLower(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidPassengerStatus
}

// Valid reports whether status is one of the allowed passenger status constants.
func (status PassengerStatus) Valid() bool {
	switch status {
	case PassengerWaiting, PassengerPickedUp, PassengerDroppedOff:
		return true
	default:
		return false
	}
}

// String returns the string representation of the PassengerStatus.
func (status PassengerStatus) String() string {
	return string(status)
}

// CanTransitionTo enforces waiting -> picked_up -> dropped_off, forward only.
func (status PassengerStatus) CanTransitionTo(next PassengerStatus) bool {
	switch status {
	case PassengerWaiting:
		return next == PassengerPickedUp
	case PassengerPickedUp:
		return next == PassengerDroppedOff
	default:
		return false
	}
}

// Passenger is the domain entity corresponding to the `ride_passengers` table:
// one row per participant in a shared ride, including the creator, each with
// an independent pickup, dropoff, and fare share.
type Passenger struct {
	ID          int64
	RideID      int64
	PassengerID int64

	Pickup         geo.Point
	PickupAddress  string
	Dropoff        geo.Point
	DropoffAddress string

	Fare   int64 // individual fare share in minor currency units
	Status PassengerStatus

	PickedUpAt   *time.Time
	DroppedOffAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var ErrPassengerRequired = errors.New("passenger id is required")

// NewPassenger builds a waiting Passenger row for the given ride.
func NewPassenger(rideID, passengerID int64, pickup geo.Point, pickupAddr string, dropoff geo.Point, dropoffAddr string, fare int64) (*Passenger, error) {
	if rideID <= 0 {
		return nil, ErrRideIDRequired
	}
	if passengerID <= 0 {
		return nil, ErrPassengerRequired
	}
	if strings.TrimSpace(pickupAddr) == "" || strings.TrimSpace(dropoffAddr) == "" {
		return nil, ErrAddressRequired
	}
	if err := pickup.Validate(); err != nil {
		return nil, err
	}
	if err := dropoff.Validate(); err != nil {
		return nil, err
	}
	if fare < 0 {
		return nil, ErrFareNegative
	}

	now := time.Now().UTC()
	return &Passenger{
		RideID:         rideID,
		PassengerID:    passengerID,
		Pickup:         pickup,
		PickupAddress:  strings.TrimSpace(pickupAddr),
		Dropoff:        dropoff,
		DropoffAddress: strings.TrimSpace(dropoffAddr),
		Fare:           fare,
		Status:         PassengerWaiting,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

var ErrRideIDRequired = errors.New("ride id is required")
