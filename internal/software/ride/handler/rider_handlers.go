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

// --- Request DTOs (HTTP boundary) ---

type requestRideRequest struct {
	PickupLatitude   float64 `json:"pickupLatitude"`
	PickupLongitude  float64 `json:"pickupLongitude"`
	PickupAddress    string  `json:"pickupAddress"`
	DropoffLatitude  float64 `json:"dropoffLatitude"`
	DropoffLongitude float64 `json:"dropoffLongitude"`
	DropoffAddress   string  `json:"dropoffAddress"`
	VehicleClass     string  `json:"vehicleClass"` // economy | comfort | premium
	DistanceMeters   int64   `json:"distanceMeters"`
	DurationSeconds  int64   `json:"durationSeconds"`
	IsShared         bool    `json:"isShared"`
	MaxPassengers    int     `json:"maxPassengers,omitempty"`
}

type cancelRideRequest struct {
	Reason string `json:"reason,omitempty"`
}

type rateRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// ----- POST /rides -----

func (handler *RideHTTPHandler) handleRequestRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	riderID, ok := handler.callerID(w, r)
	if !ok {
		return
	}

	var req requestRideRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	class, err := ride.ParseVehicleClass(req.VehicleClass)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "vehicleClass must be one of: economy, comfort, premium", err)
		return
	}

	in := ports.RequestRideInput{
		RiderID:         riderID,
		Pickup:          geo.Point{Latitude: req.PickupLatitude, Longitude: req.PickupLongitude},
		PickupAddress:   req.PickupAddress,
		Dropoff:         geo.Point{Latitude: req.DropoffLatitude, Longitude: req.DropoffLongitude},
		DropoffAddress:  req.DropoffAddress,
		VehicleClass:    class,
		DistanceMeters:  req.DistanceMeters,
		DurationSeconds: req.DurationSeconds,
		IsShared:        req.IsShared,
		MaxPassengers:   req.MaxPassengers,
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.RequestRide(ctxTimeout, in)
	if err != nil {
		handler.serviceError(ctxTimeout, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusCreated, map[string]any{
		"rideId":        res.RideID,
		"rideNumber":    res.RideNumber,
		"status":        res.Status.String(),
		"estimatedFare": res.EstimatedFare,
	})
}

// ----- GET /rides/active -----

func (handler *RideHTTPHandler) handleActiveRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	riderID, ok := handler.callerID(w, r)
	if !ok {
		return
	}

	view, err := handler.svc.ActiveRide(ctx, riderID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	if view == nil {
		handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"ride": nil})
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"ride":   view.Ride,
		"driver": view.Driver,
	})
}

// ----- GET /rides/history -----

func (handler *RideHTTPHandler) handleRideHistory(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	riderID, ok := handler.callerID(w, r)
	if !ok {
		return
	}

	rides, err := handler.svc.RideHistory(ctx, riderID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"rides": rides})
}

// ----- GET /rides/{ride_id} -----

func (handler *RideHTTPHandler) handleGetRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	callerID, ok := handler.callerID(w, r)
	if !ok {
		return
	}
	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	rd, err := handler.svc.RideByID(ctx, callerID, rideID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, rd)
}

// ----- POST /rides/{ride_id}/cancel -----

// The cancel actor comes from the token role, so the same endpoint serves
// riders and drivers with ownership enforced downstream.
func (handler *RideHTTPHandler) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	callerID, ok := handler.callerID(w, r)
	if !ok {
		return
	}
	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	var req cancelRideRequest
	if r.ContentLength > 0 && !handler.decodeJSON(w, r, &req) {
		return
	}

	actor := ride.CancelledByRider
	if jwtRole(r).CanDrive() {
		actor = ride.CancelledByDriver
	}

	err := handler.svc.CancelRide(ctx, ports.CancelRideInput{
		RideID:      rideID,
		Actor:       actor,
		ActorUserID: callerID,
		Reason:      req.Reason,
	})
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"status": ride.StatusCancelled.String()})
}

// ----- POST /rides/{ride_id}/rate -----

func (handler *RideHTTPHandler) handleRateDriver(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	riderID, ok := handler.callerID(w, r)
	if !ok {
		return
	}
	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	var req rateRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	if err := handler.svc.RateDriver(ctx, riderID, rideID, req.Rating, req.Comment); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"status": "rated"})
}

// ----- GET /fare/estimate -----

// Fare estimation needs no account: the rates are public and the calculation
// is pure, so the endpoint skips auth entirely.
func (handler *RideHTTPHandler) handleFareEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	q := r.URL.Query()

	distance, err := strconv.ParseInt(q.Get("distanceMeters"), 10, 64)
	if err != nil || distance < 0 {
		handler.httpError(ctx, w, http.StatusBadRequest, "distanceMeters must be a non-negative integer", err)
		return
	}

	class, err := ride.ParseVehicleClass(q.Get("vehicleClass"))
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "vehicleClass must be one of: economy, comfort, premium", err)
		return
	}

	shared := false
	if raw := q.Get("shared"); raw != "" {
		shared, err = strconv.ParseBool(raw)
		if err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "shared must be a boolean", err)
			return
		}
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"distanceMeters": distance,
		"vehicleClass":   class.String(),
		"isShared":       shared,
		"estimatedFare":  ride.CalculateFare(distance, class, shared),
	})
}
