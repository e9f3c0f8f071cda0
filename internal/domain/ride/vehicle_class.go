package ride

import (
	"errors"
	"strings"
)

// VehicleClass is a fare/service tier as stored in the `vehicle_class` columns.
type VehicleClass string

const (
	ClassEconomy VehicleClass = "economy"
	ClassComfort VehicleClass = "comfort"
	ClassPremium VehicleClass = "premium"
)

var ErrInvalidVehicleClass = errors.New("invalid vehicle class")

// ParseVehicleClass normalizes (lowercases+trims) and validates a class string.
func ParseVehicleClass(in string) (VehicleClass, error) {
	class := VehicleClass(strings.ToLower(strings.TrimSpace(in)))
	if class.Valid() {
		return class, nil
	}
	return "", ErrInvalidVehicleClass
}

// Valid reports whether class is one of the allowed vehicle class constants.
func (class VehicleClass) Valid() bool {
	switch class {
	case ClassEconomy, ClassComfort, ClassPremium:
		return true
	default:
		return false
	}
}

// String returns the string representation of the VehicleClass.
func (class VehicleClass) String() string {
	return string(class)
}
