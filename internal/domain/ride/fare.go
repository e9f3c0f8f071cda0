package ride

import "math"

// fareRate is a per-class price schedule in minor currency units (cents).
type fareRate struct {
	base  int64 // flag-fall charged on every ride
	perKm int64 // charge per whole kilometer, prorated
}

var fareRates = map[VehicleClass]fareRate{
	ClassEconomy: {base: 300, perKm: 80},
	ClassComfort: {base: 500, perKm: 120},
	ClassPremium: {base: 800, perKm: 180},
}

// SharedRideDiscount is the flat discount applied to shared rides.
const SharedRideDiscount = 0.20

// CalculateFare returns the fare in minor currency units for a trip of the
// given distance. Deterministic and side-effect-free; the same function backs
// the server-side authoritative quote and the public estimate endpoint.
//
//	fare = base + (distanceMeters/1000) * perKm
//
// Shared rides get a flat 20% discount. The result is rounded half away from
// zero to a whole cent.
func CalculateFare(distanceMeters int64, class VehicleClass, shared bool) int64 {
	rate, ok := fareRates[class]
	if !ok {
		rate = fareRates[ClassEconomy]
	}

	if distanceMeters < 0 {
		distanceMeters = 0
	}

	fare := float64(rate.base) + float64(distanceMeters)/1000.0*float64(rate.perKm)
	if shared {
		fare *= 1 - SharedRideDiscount
	}

	return int64(math.Round(fare))
}
