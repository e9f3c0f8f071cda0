package ride

import (
	"errors"
	"strings"
)

// Status is a ride status as stored in the `rides.status` column.
type Status string

const (
	StatusSearching      Status = "searching"
	StatusAccepted       Status = "accepted"
	StatusDriverArriving Status = "driver_arriving"
	// StatusArrived exists in the status taxonomy but no engine transition
	// produces it today. Recognized on parse for forward compatibility.
	StatusArrived    Status = "arrived"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid ride status")

// ParseStatus normalizes (lowercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed ride status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusSearching, StatusAccepted, StatusDriverArriving, StatusArrived, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}

// CanTransitionTo specifies if the status can transition to the next status.
func (status Status) CanTransitionTo(next Status) bool {
	switch status {
	case StatusSearching:
		return next == StatusAccepted || next == StatusCancelled

	case StatusAccepted:
		return next == StatusDriverArriving || next == StatusCancelled

	case StatusDriverArriving:
		return next == StatusInProgress || next == StatusCancelled

	case StatusInProgress:
		return next == StatusCompleted || next == StatusCancelled

	case StatusArrived, StatusCompleted, StatusCancelled:
		return false

	default:
		return false
	}
}

// Terminal indicates if the status is in a terminal state. Terminal rides
// accept no further lifecycle mutation other than refund bookkeeping.
func (status Status) Terminal() bool {
	return status == StatusCompleted || status == StatusCancelled
}

// Active reports whether the status counts against the one-active-ride
// constraint for riders.
func (status Status) Active() bool {
	switch status {
	case StatusSearching, StatusAccepted, StatusDriverArriving, StatusInProgress:
		return true
	default:
		return false
	}
}

// ActiveForDriver reports whether the status counts against the
// one-active-ride constraint for drivers. A searching ride has no driver yet,
// so it is excluded.
func (status Status) ActiveForDriver() bool {
	switch status {
	case StatusAccepted, StatusDriverArriving, StatusInProgress:
		return true
	default:
		return false
	}
}
