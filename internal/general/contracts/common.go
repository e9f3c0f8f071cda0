package contracts

import "time"

// Envelope carries the cross-cutting headers every published message
// embeds: who sent it, when, and the correlation ID threading a request
// across services.
type Envelope struct {
	CorrelationID string    `json:"correlation_id,omitempty"`
	Producer      string    `json:"producer,omitempty"` // e.g. "ride-service"
	SentAt        time.Time `json:"sent_at,omitempty"`  // UTC
}

// GeoPoint is a coordinate pair with an optional human-readable address.
type GeoPoint struct {
	Lat     float64 `json:"latitude"`
	Lng     float64 `json:"longitude"`
	Address string  `json:"address,omitempty"`
}

// VehicleInfo is the subset of vehicle data shown to riders.
type VehicleInfo struct {
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	Color        string `json:"color,omitempty"`
	LicensePlate string `json:"licensePlate,omitempty"`
}

// DriverBrief summarizes an assigned driver for rider-facing events.
type DriverBrief struct {
	DriverID int64        `json:"driverId"`
	Name     string       `json:"name,omitempty"`
	Rating   float64      `json:"rating,omitempty"`
	Vehicle  *VehicleInfo `json:"vehicle,omitempty"`
}
