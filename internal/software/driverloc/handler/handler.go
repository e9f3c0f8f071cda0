// Package handler exposes the driver location service over HTTP and
// websocket: status and position reports, the public available-drivers feed,
// and per-ride track replay.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/fault"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/relay"
	"ride-share/internal/ports"
)

// LocationHTTPHandler adapts HTTP requests to the DriverLocationService.
type LocationHTTPHandler struct {
	svc    ports.DriverLocationService
	logger *logger.Logger
	auth   *jwt.Manager
	hub    *relay.Hub
}

// NewLocationHTTPHandler wires an HTTP handler around the location service.
func NewLocationHTTPHandler(
	svc ports.DriverLocationService,
	logger *logger.Logger,
	auth *jwt.Manager,
	hub *relay.Hub,
) *LocationHTTPHandler {
	return &LocationHTTPHandler{svc: svc, logger: logger, auth: auth, hub: hub}
}

// RegisterRoutes mounts location endpoints on the provided mux.
func (handler *LocationHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	driver := jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)
	anyRole := jwt.AuthMiddlewareFunc(handler.auth, user.RoleRider, user.RoleDriver)

	mux.HandleFunc("POST /driver/status", driver(handler.handleUpdateStatus))
	mux.HandleFunc("POST /driver/location", driver(handler.handleReportLocation))

	// the feed is readable by any authenticated user; riders use it to see
	// nearby cars before requesting
	mux.HandleFunc("GET /drivers/available", anyRole(handler.handleAvailableDrivers))
	mux.HandleFunc("GET /rides/{ride_id}/track", anyRole(handler.handleRideTrack))
	mux.HandleFunc("GET /ws/drivers/available", anyRole(handler.handleSubscribeFeed))

	mux.HandleFunc("GET /locations/healthz", handler.handleHealth)
}

type updateStatusRequest struct {
	Status string `json:"status"` // offline | available | busy
}

type reportLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (handler *LocationHTTPHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	status, err := user.ParseDriverStatus(req.Status)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "status must be one of: offline, available, busy", err)
		return
	}

	if err := handler.svc.UpdateStatus(ctx, driverID, status); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"status": status.String()})
}

func (handler *LocationHTTPHandler) handleReportLocation(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.callerID(w, r)
	if !ok {
		return
	}

	var req reportLocationRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	p := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := handler.svc.ReportLocation(ctx, driverID, p); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (handler *LocationHTTPHandler) handleAvailableDrivers(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	drivers, err := handler.svc.AvailableDrivers(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	type driverView struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Rating    float64 `json:"rating"`
	}
	out := make([]driverView, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, driverView{
			ID:        d.ID,
			Name:      d.Name,
			Latitude:  d.Position.Latitude,
			Longitude: d.Position.Longitude,
			Rating:    d.AverageRating,
		})
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"drivers": out})
}

func (handler *LocationHTTPHandler) handleRideTrack(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	track, err := handler.svc.RideTrack(ctx, rideID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	type sample struct {
		Latitude   float64 `json:"latitude"`
		Longitude  float64 `json:"longitude"`
		RecordedAt string  `json:"recordedAt"`
	}
	out := make([]sample, 0, len(track))
	for _, rec := range track {
		out = append(out, sample{
			Latitude:   rec.Position.Latitude,
			Longitude:  rec.Position.Longitude,
			RecordedAt: rec.RecordedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"rideId": rideID, "track": out})
}

func (handler *LocationHTTPHandler) handleSubscribeFeed(w http.ResponseWriter, r *http.Request) {
	handler.hub.ServeSubscription(w, r, contracts.TopicAvailableDrivers)
}

func (handler *LocationHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- shared helpers -----

func (handler *LocationHTTPHandler) callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims := jwt.RequireClaims(r)
	id, err := claims.UserID()
	if err != nil {
		handler.httpError(r.Context(), w, http.StatusUnauthorized, "invalid token subject", err)
		return 0, false
	}
	return id, true
}

func (handler *LocationHTTPHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		handler.httpError(r.Context(), w, http.StatusBadRequest, name+" must be a positive integer", err)
		return 0, false
	}
	return id, true
}

func (handler *LocationHTTPHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return false
	}
	return true
}

func (handler *LocationHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	code := fault.CodeOf(err)
	handler.httpError(ctx, w, fault.HTTPStatus(code), fault.MessageOf(err), err)
}

func (handler *LocationHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	buf, err := json.Marshal(data)
	if err != nil {
		handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func (handler *LocationHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	handler.jsonResponse(ctx, w, status, map[string]string{"error": msg})
}

func (handler *LocationHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if reqID == "" {
		return ctx
	}
	return handler.logger.WithRequestID(ctx, reqID)
}
