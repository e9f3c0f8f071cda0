package service

import "ride-share/internal/general/fault"

// Conflict messages are part of the API contract; clients match on them.
const (
	msgRiderActiveRide  = "You already have an active ride. Please complete or cancel it first."
	msgDriverActiveRide = "You already have an active ride. Please complete it before accepting new rides."
)

func errRideNotFound(rideID int64) *fault.Error {
	return fault.NotFound("ride %d not found", rideID)
}

func errUserNotFound(userID int64) *fault.Error {
	return fault.NotFound("user %d not found", userID)
}
