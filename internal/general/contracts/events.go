package contracts

import "time"

// RideStatusEvent is pushed to "rider:<id>" and "driver:<id>" topics on
// every lifecycle change and mirrored to ExchangeRideTopic with routing
// key "ride.status.{status}".
type RideStatusEvent struct {
	Type       string       `json:"type"` // "ride_status_update"
	RideID     int64        `json:"rideId"`
	RideNumber string       `json:"rideNumber,omitempty"`
	Status     string       `json:"status"`
	DriverInfo *DriverBrief `json:"driverInfo,omitempty"`
	FinalFare  *int64       `json:"finalFare,omitempty"` // cents, completed rides only
	Timestamp  time.Time    `json:"timestamp"`
	Envelope
}

// RideRequestEvent is pushed to the available-drivers feed when a new ride
// enters searching, so idle drivers see open requests in real time.
type RideRequestEvent struct {
	Type          string   `json:"type"` // "new_ride_request"
	RideID        int64    `json:"rideId"`
	RideNumber    string   `json:"rideNumber,omitempty"`
	Pickup        GeoPoint `json:"pickup"`
	Dropoff       GeoPoint `json:"dropoff"`
	VehicleClass  string   `json:"vehicleClass"`
	EstimatedFare int64    `json:"estimatedFare"` // cents
	IsShared      bool     `json:"isShared"`
	Envelope
}

// DriverLocationEvent is pushed to "ride:<id>:driver:location" while a ride
// is active and broadcast on ExchangeLocationFanout.
type DriverLocationEvent struct {
	Type      string    `json:"type"` // "driver_location_update"
	RideID    int64     `json:"rideId,omitempty"`
	DriverID  int64     `json:"driverId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Envelope
}

// DriverStatusEvent is pushed to the available-drivers feed when a driver
// goes available, busy or offline.
type DriverStatusEvent struct {
	Type      string    `json:"type"` // "driver_status_update"
	DriverID  int64     `json:"driverId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Envelope
}

// PassengerStatusEvent is pushed to "ride:<id>" subscribers of a shared ride
// when a co-passenger is picked up or dropped off.
type PassengerStatusEvent struct {
	Type        string    `json:"type"` // "passenger_status_update"
	RideID      int64     `json:"rideId"`
	PassengerID int64     `json:"passengerId"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Envelope
}
