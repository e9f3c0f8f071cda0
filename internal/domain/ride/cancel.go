package ride

import (
	"errors"
	"strings"
)

// CancelActor identifies who cancelled a ride.
type CancelActor string

const (
	CancelledByRider  CancelActor = "rider"
	CancelledByDriver CancelActor = "driver"
	CancelledByAdmin  CancelActor = "admin"
	CancelledBySystem CancelActor = "system"
)

var ErrInvalidCancelActor = errors.New("invalid cancel actor")

// ParseCancelActor normalizes and validates a cancel actor string.
func ParseCancelActor(in string) (CancelActor, error) {
	actor := CancelActor(strings.ToLower(strings.TrimSpace(in)))
	if actor.Valid() {
		return actor, nil
	}
	return "", ErrInvalidCancelActor
}

// Valid reports whether actor is one of the allowed cancel actor constants.
func (actor CancelActor) Valid() bool {
	switch actor {
	case CancelledByRider, CancelledByDriver, CancelledByAdmin, CancelledBySystem:
		return true
	default:
		return false
	}
}

// String returns the string representation of the CancelActor.
func (actor CancelActor) String() string {
	return string(actor)
}

// RefundStatus tracks admin refund processing on a cancelled ride.
type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundProcessed RefundStatus = "processed"
	RefundRejected  RefundStatus = "rejected"
)

var ErrInvalidRefundStatus = errors.New("invalid refund status")

// ParseRefundStatus normalizes and validates a refund status string.
func ParseRefundStatus(in string) (RefundStatus, error) {
	status := RefundStatus(strings.ToLower(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidRefundStatus
}

// Valid reports whether status is one of the allowed refund status constants.
func (status RefundStatus) Valid() bool {
	switch status {
	case RefundPending, RefundProcessed, RefundRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the RefundStatus.
func (status RefundStatus) String() string {
	return string(status)
}
