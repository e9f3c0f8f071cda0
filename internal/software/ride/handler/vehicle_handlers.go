package handler

import (
	"net/http"

	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/vehicle"
)

type vehicleRequest struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Color        string `json:"color"`
	LicensePlate string `json:"licensePlate"`
	VehicleClass string `json:"vehicleClass"`
	Capacity     int    `json:"capacity,omitempty"`
}

// ----- POST /driver/vehicles -----

func (handler *RideHTTPHandler) handleAddVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}

	var req vehicleRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	class, err := ride.ParseVehicleClass(req.VehicleClass)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "vehicleClass must be one of: economy, comfort, premium", err)
		return
	}

	v, err := vehicle.New(driverID, req.Make, req.Model, req.Year, req.Color, req.LicensePlate, class, req.Capacity)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	if err := handler.svc.AddVehicle(ctx, v); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusCreated, v)
}

// ----- GET /driver/vehicles -----

func (handler *RideHTTPHandler) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}

	vehicles, err := handler.svc.Vehicles(ctx, driverID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"vehicles": vehicles})
}

// ----- PUT /driver/vehicles/{vehicle_id} -----

func (handler *RideHTTPHandler) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}
	vehicleID, ok := handler.pathID(w, r, "vehicle_id")
	if !ok {
		return
	}

	var req vehicleRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	class, err := ride.ParseVehicleClass(req.VehicleClass)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "vehicleClass must be one of: economy, comfort, premium", err)
		return
	}

	v, err := vehicle.New(driverID, req.Make, req.Model, req.Year, req.Color, req.LicensePlate, class, req.Capacity)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}
	v.ID = vehicleID

	if err := handler.svc.UpdateVehicle(ctx, driverID, v); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, v)
}

// ----- DELETE /driver/vehicles/{vehicle_id} -----

func (handler *RideHTTPHandler) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}
	vehicleID, ok := handler.pathID(w, r, "vehicle_id")
	if !ok {
		return
	}

	if err := handler.svc.DeleteVehicle(ctx, driverID, vehicleID); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}
