package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ride-share/internal/domain/user"
	"ride-share/internal/general/fault"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/relay"
	"ride-share/internal/ports"
)

// RideHTTPHandler adapts HTTP requests to the RideService.
type RideHTTPHandler struct {
	svc    ports.RideService
	logger *logger.Logger
	auth   *jwt.Manager
	hub    *relay.Hub
}

// NewRideHTTPHandler wires an HTTP handler around the RideService.
func NewRideHTTPHandler(
	svc ports.RideService,
	logger *logger.Logger,
	auth *jwt.Manager,
	hub *relay.Hub,
) *RideHTTPHandler {
	return &RideHTTPHandler{svc: svc, logger: logger, auth: auth, hub: hub}
}

// RegisterRoutes mounts ride endpoints on the provided mux.
func (handler *RideHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	rider := jwt.AuthMiddlewareFunc(handler.auth, user.RoleRider)
	driver := jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)
	anyRole := jwt.AuthMiddlewareFunc(handler.auth, user.RoleRider, user.RoleDriver)

	// rider surface
	mux.HandleFunc("POST /rides", rider(handler.handleRequestRide))
	mux.HandleFunc("GET /rides/active", rider(handler.handleActiveRide))
	mux.HandleFunc("GET /rides/history", rider(handler.handleRideHistory))
	mux.HandleFunc("GET /rides/{ride_id}", anyRole(handler.handleGetRide))
	mux.HandleFunc("POST /rides/{ride_id}/cancel", anyRole(handler.handleCancelRide))
	mux.HandleFunc("POST /rides/{ride_id}/rate", rider(handler.handleRateDriver))

	// shared rides
	mux.HandleFunc("GET /rides/shared/available", rider(handler.handleFindShared))
	mux.HandleFunc("POST /rides/shared/{ride_id}/join", rider(handler.handleJoinShared))
	mux.HandleFunc("GET /rides/{ride_id}/passengers", anyRole(handler.handleRidePassengers))
	mux.HandleFunc("POST /passengers/{passenger_id}/status", driver(handler.handlePassengerStatus))

	// driver surface
	mux.HandleFunc("GET /driver/rides/pending", driver(handler.handlePendingRides))
	mux.HandleFunc("POST /rides/{ride_id}/accept", driver(handler.handleAcceptRide))
	mux.HandleFunc("POST /rides/{ride_id}/status", driver(handler.handleAdvanceStatus))
	mux.HandleFunc("POST /rides/{ride_id}/rate-rider", driver(handler.handleRateRider))
	mux.HandleFunc("GET /driver/rides/history", driver(handler.handleDriverHistory))
	mux.HandleFunc("GET /driver/earnings", driver(handler.handleEarnings))

	// vehicles
	mux.HandleFunc("POST /driver/vehicles", driver(handler.handleAddVehicle))
	mux.HandleFunc("GET /driver/vehicles", driver(handler.handleListVehicles))
	mux.HandleFunc("PUT /driver/vehicles/{vehicle_id}", driver(handler.handleUpdateVehicle))
	mux.HandleFunc("DELETE /driver/vehicles/{vehicle_id}", driver(handler.handleDeleteVehicle))

	// real-time subscriptions; the token travels as a query parameter
	mux.HandleFunc("GET /ws", anyRole(handler.handleSubscribeSelf))
	mux.HandleFunc("GET /ws/rides/{ride_id}/location", anyRole(handler.handleSubscribeRideLocation))

	// fare estimation is a pure calculation over public rates, no auth
	mux.HandleFunc("GET /fare/estimate", handler.handleFareEstimate)

	mux.HandleFunc("GET /rides/healthz", handler.handleHealth)
	mux.HandleFunc("POST /tokens", handler.handleCreateToken)
}

// ----- token issuing (development convenience, mirrors the auth gateway) -----

type tokenRequest struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    int64     `json:"userId"`
	Role      string    `json:"role"`
}

func (handler *RideHTTPHandler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.UserID <= 0 {
		handler.httpError(ctx, w, http.StatusBadRequest, "userId is required", nil)
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "role must be one of: rider, driver, admin", err)
		return
	}

	token, claims, err := handler.auth.IssueUserToken(req.UserID, role)
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "failed to generate token", err)
		return
	}

	handler.logger.Info(ctx, "token_generated", "JWT token generated successfully",
		map[string]any{"user_id": req.UserID, "role": role.String()})

	handler.jsonResponse(ctx, w, http.StatusCreated, tokenResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    req.UserID,
		Role:      role.String(),
	})
}

func (handler *RideHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- shared helpers -----

// callerID extracts the authenticated user's ID from the JWT claims.
func (handler *RideHTTPHandler) callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims := jwt.RequireClaims(r)
	id, err := claims.UserID()
	if err != nil {
		handler.httpError(r.Context(), w, http.StatusUnauthorized, "invalid token subject", err)
		return 0, false
	}
	return id, true
}

// jwtRole returns the caller's role from the JWT claims.
func jwtRole(r *http.Request) user.Role {
	return jwt.RequireClaims(r).Role
}

// pathID parses a numeric path parameter.
func (handler *RideHTTPHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		handler.httpError(r.Context(), w, http.StatusBadRequest, name+" must be a positive integer", err)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes a bounded, strict JSON body into dst.
func (handler *RideHTTPHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return false
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return false
	}
	return true
}

// serviceError maps an engine rejection to its HTTP status.
func (handler *RideHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	code := fault.CodeOf(err)
	handler.httpError(ctx, w, fault.HTTPStatus(code), fault.MessageOf(err), err)
}

func (handler *RideHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *RideHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	} else if status == http.StatusConflict {
		action = "conflict_rejected"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *RideHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
