package user

import (
	"time"

	"ride-share/internal/domain/geo"
)

// User is the domain entity corresponding to the `users` table. Riders,
// drivers, and admins share the table; driver-only fields stay zero-valued
// for everyone else.
type User struct {
	ID    int64
	Name  string
	Email string
	Phone string
	Role  Role

	// Driver-only fields
	LicenseNumber      string
	DriverStatus       DriverStatus
	CurrentLocation    *geo.Point
	LastLocationUpdate *time.Time
	IsVerified         bool
	TotalRides         int
	// AverageRating is the mean of rider-to-driver ratings scaled x100 and
	// stored as an integer (4.5 stars -> 450) to avoid floating-point storage.
	AverageRating int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDriver reports whether the user holds the driver role.
func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}

// LocationFresh reports whether the user's last location update is within
// maxAge of now. Used by the available-drivers feed, which filters out
// drivers without a recent position report.
func (u *User) LocationFresh(now time.Time, maxAge time.Duration) bool {
	if u.CurrentLocation == nil || u.LastLocationUpdate == nil {
		return false
	}
	return now.Sub(*u.LastLocationUpdate) <= maxAge
}

// Stars returns the average rating back on the 0-5 scale for display.
func (u *User) Stars() float64 {
	return float64(u.AverageRating) / 100.0
}
