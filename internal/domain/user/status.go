package user

import (
	"errors"
	"strings"
)

// DriverStatus is the availability state of a driver.
type DriverStatus string

const (
	DriverOffline   DriverStatus = "offline"
	DriverAvailable DriverStatus = "available"
	DriverBusy      DriverStatus = "busy"
)

var ErrInvalidDriverStatus = errors.New("invalid driver status")

// ParseDriverStatus normalizes and validates a driver status string.
func ParseDriverStatus(in string) (DriverStatus, error) {
	status := DriverStatus(strings.ToLower(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidDriverStatus
}

// Valid reports whether status is one of the allowed driver status constants.
func (status DriverStatus) Valid() bool {
	switch status {
	case DriverOffline, DriverAvailable, DriverBusy:
		return true
	default:
		return false
	}
}

// String returns the string representation of the DriverStatus.
func (status DriverStatus) String() string {
	return string(status)
}
