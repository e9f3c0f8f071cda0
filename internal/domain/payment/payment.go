// Package payment holds the payment record created when a ride completes.
// Rows are immutable once written except for status corrections.
package payment

import (
	"errors"
	"strings"
	"time"
)

// Method is the payment method recorded on a payment row.
type Method string

const (
	MethodCash       Method = "cash"
	MethodCreditCard Method = "credit_card"
	MethodWallet     Method = "wallet"
)

// Valid reports whether m is one of the allowed method constants.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodWallet:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Method.
func (m Method) String() string { return string(m) }

// Status tracks settlement of a payment row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

var ErrInvalidStatus = errors.New("invalid payment status")

// ParseStatus normalizes and validates a payment status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(in)))
	switch status {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// String returns the string representation of the Status.
func (s Status) String() string { return string(s) }

// Valid reports whether s is one of the allowed status constants.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment is the domain entity corresponding to the `payments` table. One row
// per completed ride, created automatically on the completed transition.
type Payment struct {
	ID       int64
	RideID   int64
	RiderID  int64
	DriverID int64

	Amount int64 // minor currency units
	Method Method
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrRideRequired   = errors.New("ride id is required")
	ErrPartiesMissing = errors.New("rider and driver ids are required")
	ErrAmountNegative = errors.New("payment amount must not be negative")
)

// NewCompleted builds the payment row written when a ride completes. The
// method defaults to cash; it can be corrected later.
func NewCompleted(rideID, riderID, driverID, amount int64) (*Payment, error) {
	if rideID <= 0 {
		return nil, ErrRideRequired
	}
	if riderID <= 0 || driverID <= 0 {
		return nil, ErrPartiesMissing
	}
	if amount < 0 {
		return nil, ErrAmountNegative
	}

	now := time.Now().UTC()
	return &Payment{
		RideID:    rideID,
		RiderID:   riderID,
		DriverID:  driverID,
		Amount:    amount,
		Method:    MethodCash,
		Status:    StatusCompleted,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
