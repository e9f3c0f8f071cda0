// Package vehicle holds the driver-owned vehicle aggregate. A vehicle belongs
// to exactly one driver and is assigned to a ride at acceptance time.
package vehicle

import (
	"errors"
	"strings"
	"time"

	"ride-share/internal/domain/ride"
)

// Vehicle is the domain entity corresponding to the `vehicles` table.
type Vehicle struct {
	ID       int64
	DriverID int64

	Make         string
	Model        string
	Year         int
	Color        string
	LicensePlate string
	Class        ride.VehicleClass
	Capacity     int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultCapacity is used when registration omits passenger capacity.
const DefaultCapacity = 4

var (
	ErrDriverRequired = errors.New("driver id is required")
	ErrFieldsRequired = errors.New("make, model, color and license plate are required")
	ErrYearOutOfRange = errors.New("vehicle year is out of range")
	ErrBadCapacity    = errors.New("capacity must be between 1 and 8")
)

// New validates registration input and returns a Vehicle.
func New(driverID int64, make, model string, year int, color, plate string, class ride.VehicleClass, capacity int) (*Vehicle, error) {
	if driverID <= 0 {
		return nil, ErrDriverRequired
	}
	make, model = strings.TrimSpace(make), strings.TrimSpace(model)
	color, plate = strings.TrimSpace(color), strings.TrimSpace(plate)
	if make == "" || model == "" || color == "" || plate == "" {
		return nil, ErrFieldsRequired
	}
	if year < 1990 || year > time.Now().UTC().Year()+1 {
		return nil, ErrYearOutOfRange
	}
	if !class.Valid() {
		return nil, ride.ErrInvalidVehicleClass
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if capacity < 1 || capacity > 8 {
		return nil, ErrBadCapacity
	}

	now := time.Now().UTC()
	return &Vehicle{
		DriverID:     driverID,
		Make:         make,
		Model:        model,
		Year:         year,
		Color:        color,
		LicensePlate: plate,
		Class:        class,
		Capacity:     capacity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// OwnedBy reports whether the vehicle belongs to the given driver.
func (v *Vehicle) OwnedBy(driverID int64) bool {
	return v.DriverID == driverID
}
