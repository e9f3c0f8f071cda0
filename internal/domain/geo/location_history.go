package geo

import "time"

// LocationRecord is one append-only sample of a driver's position during a
// ride, kept in the `location_tracking` table for trip replay.
type LocationRecord struct {
	ID       int64
	RideID   int64
	DriverID int64
	Position Point
	RecordedAt time.Time
}
