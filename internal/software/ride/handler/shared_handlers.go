package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/ride"
	"ride-share/internal/ports"
)

type joinSharedRequest struct {
	PickupLatitude   float64 `json:"pickupLatitude"`
	PickupLongitude  float64 `json:"pickupLongitude"`
	PickupAddress    string  `json:"pickupAddress"`
	DropoffLatitude  float64 `json:"dropoffLatitude"`
	DropoffLongitude float64 `json:"dropoffLongitude"`
	DropoffAddress   string  `json:"dropoffAddress"`
	Fare             int64   `json:"fare,omitempty"`
}

// ----- GET /rides/shared/available -----

// Candidate trip coordinates travel as query parameters so the endpoint stays
// a cacheable GET.
func (handler *RideHTTPHandler) handleFindShared(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	q := r.URL.Query()

	pickupLat, ok := handler.queryFloat(w, r, "pickupLatitude")
	if !ok {
		return
	}
	pickupLng, ok := handler.queryFloat(w, r, "pickupLongitude")
	if !ok {
		return
	}
	dropoffLat, ok := handler.queryFloat(w, r, "dropoffLatitude")
	if !ok {
		return
	}
	dropoffLng, ok := handler.queryFloat(w, r, "dropoffLongitude")
	if !ok {
		return
	}

	class, err := ride.ParseVehicleClass(q.Get("vehicleClass"))
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "vehicleClass must be one of: economy, comfort, premium", err)
		return
	}

	in := ports.FindSharedInput{
		Pickup:       geo.Point{Latitude: pickupLat, Longitude: pickupLng},
		Dropoff:      geo.Point{Latitude: dropoffLat, Longitude: dropoffLng},
		VehicleClass: class,
	}
	if raw := q.Get("maxDetourKm"); raw != "" {
		detour, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "maxDetourKm must be a number", err)
			return
		}
		in.MaxDetourKM = detour
	}

	rides, err := handler.svc.FindCompatibleSharedRides(ctx, in)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"rides": rides})
}

// ----- POST /rides/shared/{ride_id}/join -----

func (handler *RideHTTPHandler) handleJoinShared(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	riderID, ok := handler.callerID(w, r)
	if !ok {
		return
	}
	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	var req joinSharedRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := handler.svc.JoinSharedRide(ctxTimeout, ports.JoinSharedInput{
		RiderID:        riderID,
		RideID:         rideID,
		Pickup:         geo.Point{Latitude: req.PickupLatitude, Longitude: req.PickupLongitude},
		PickupAddress:  req.PickupAddress,
		Dropoff:        geo.Point{Latitude: req.DropoffLatitude, Longitude: req.DropoffLongitude},
		DropoffAddress: req.DropoffAddress,
		Fare:           req.Fare,
	})
	if err != nil {
		handler.serviceError(ctxTimeout, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"rideId": rideID,
		"status": ride.PassengerWaiting.String(),
	})
}

// ----- GET /rides/{ride_id}/passengers -----

func (handler *RideHTTPHandler) handleRidePassengers(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	passengers, err := handler.svc.RidePassengers(ctx, rideID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"passengers": passengers})
}

// queryFloat parses a required float query parameter.
func (handler *RideHTTPHandler) queryFloat(w http.ResponseWriter, r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		handler.httpError(r.Context(), w, http.StatusBadRequest, name+" is required", nil)
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		handler.httpError(r.Context(), w, http.StatusBadRequest, name+" must be a number", err)
		return 0, false
	}
	return v, true
}
