package handler

import (
	"context"
	"net/http"
	"time"

	"ride-share/internal/domain/ride"
)

type acceptRideRequest struct {
	VehicleID int64 `json:"vehicleId"`
}

type advanceStatusRequest struct {
	Status string `json:"status"` // driver_arriving | in_progress | completed
}

type passengerStatusRequest struct {
	Status string `json:"status"` // picked_up | dropped_off
}

// ----- GET /driver/rides/pending -----

func (handler *RideHTTPHandler) handlePendingRides(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rides, err := handler.svc.PendingRides(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"rides": rides})
}

// ----- POST /rides/{ride_id}/accept -----

func (handler *RideHTTPHandler) handleAcceptRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}
	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	var req acceptRideRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}
	if req.VehicleID <= 0 {
		handler.httpError(ctx, w, http.StatusBadRequest, "vehicleId is required", nil)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := handler.svc.AcceptRide(ctxTimeout, driverID, rideID, req.VehicleID); err != nil {
		handler.serviceError(ctxTimeout, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"status": ride.StatusAccepted.String()})
}

// ----- POST /rides/{ride_id}/status -----

func (handler *RideHTTPHandler) handleAdvanceStatus(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}
	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	var req advanceStatusRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	next, err := ride.ParseStatus(req.Status)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "status must be one of: driver_arriving, in_progress, completed", err)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := handler.svc.AdvanceStatus(ctxTimeout, driverID, rideID, next); err != nil {
		handler.serviceError(ctxTimeout, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"status": next.String()})
}

// ----- POST /rides/{ride_id}/rate-rider -----

func (handler *RideHTTPHandler) handleRateRider(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
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

	if err := handler.svc.RateRider(ctx, driverID, rideID, req.Rating, req.Comment); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"status": "rated"})
}

// ----- GET /driver/rides/history -----

func (handler *RideHTTPHandler) handleDriverHistory(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}

	rides, err := handler.svc.DriverRideHistory(ctx, driverID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"rides": rides})
}

// ----- GET /driver/earnings -----

func (handler *RideHTTPHandler) handleEarnings(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}

	res, err := handler.svc.Earnings(ctx, driverID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"totalEarnings": res.TotalEarnings,
		"payments":      res.Payments,
	})
}

// ----- POST /passengers/{passenger_id}/status -----

func (handler *RideHTTPHandler) handlePassengerStatus(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}
	passengerID, ok := handler.pathID(w, r, "passenger_id")
	if !ok {
		return
	}

	var req passengerStatusRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	next, err := ride.ParsePassengerStatus(req.Status)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "status must be one of: picked_up, dropped_off", err)
		return
	}

	if err := handler.svc.UpdatePassengerStatus(ctx, driverID, passengerID, next); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"status": next.String()})
}
