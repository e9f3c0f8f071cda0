// Package handler exposes the admin board over HTTP: dashboard and
// cancellation stats, ride and user listings, role and verification
// management, administrative cancellation and refund processing. Every route
// requires the admin role.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"ride-share/internal/domain/payment"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/fault"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// AdminHTTPHandler adapts HTTP requests to the AdminService.
type AdminHTTPHandler struct {
	svc    ports.AdminService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewAdminHTTPHandler wires an HTTP handler around the admin service.
func NewAdminHTTPHandler(svc ports.AdminService, logger *logger.Logger, auth *jwt.Manager) *AdminHTTPHandler {
	return &AdminHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts admin endpoints on the provided mux.
func (handler *AdminHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	admin := jwt.AuthMiddlewareFunc(handler.auth, user.RoleAdmin)

	mux.HandleFunc("GET /admin/dashboard", admin(handler.handleDashboard))
	mux.HandleFunc("GET /admin/stats/cancellations", admin(handler.handleCancellationStats))
	mux.HandleFunc("GET /admin/rides", admin(handler.handleAllRides))
	mux.HandleFunc("GET /admin/rides/active", admin(handler.handleActiveRides))
	mux.HandleFunc("GET /admin/rides/cancelled", admin(handler.handleCancelledRides))
	mux.HandleFunc("POST /admin/rides/{ride_id}/cancel", admin(handler.handleCancelRide))
	mux.HandleFunc("POST /admin/rides/{ride_id}/refund", admin(handler.handleProcessRefund))
	mux.HandleFunc("PUT /admin/rides/{ride_id}/payment", admin(handler.handleCorrectPayment))
	mux.HandleFunc("GET /admin/users", admin(handler.handleAllUsers))
	mux.HandleFunc("PUT /admin/users/{user_id}/role", admin(handler.handleUpdateRole))
	mux.HandleFunc("PUT /admin/users/{user_id}/verify", admin(handler.handleVerifyDriver))

	mux.HandleFunc("GET /admin/healthz", handler.handleHealth)
}

type updateRoleRequest struct {
	Role string `json:"role"` // rider | driver | admin
}

type verifyDriverRequest struct {
	Verified bool `json:"verified"`
}

type adminCancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

type refundRequest struct {
	Amount int64  `json:"amount"` // cents
	Status string `json:"status"` // pending | processed | rejected
}

type correctPaymentRequest struct {
	Status string `json:"status"` // pending | completed | failed | refunded
}

func (handler *AdminHTTPHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	stats, err := handler.svc.DashboardStats(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"totalRides":     stats.TotalRides,
		"completedRides": stats.CompletedRides,
		"activeRides":    stats.ActiveRides,
		"totalRevenue":   stats.TotalRevenue,
		"totalUsers":     stats.TotalUsers,
		"totalDrivers":   stats.TotalDrivers,
		"activeDrivers":  stats.ActiveDrivers,
	})
}

func (handler *AdminHTTPHandler) handleCancellationStats(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	stats, err := handler.svc.CancellationStats(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"totalCancellations": stats.TotalCancellations,
		"cancellationRate":   stats.CancellationRate,
		"byReason":           stats.ByReason,
		"byActor":            stats.ByActor,
	})
}

func (handler *AdminHTTPHandler) handleAllRides(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rides, err := handler.svc.AllRides(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"rides": rides})
}

func (handler *AdminHTTPHandler) handleActiveRides(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rides, err := handler.svc.ActiveRides(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"rides": rides})
}

// Filters travel as optional query parameters: cancelledBy, refundStatus.
func (handler *AdminHTTPHandler) handleCancelledRides(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var f ports.CancelledRideFilter
	if raw := r.URL.Query().Get("cancelledBy"); raw != "" {
		actor, err := ride.ParseCancelActor(raw)
		if err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "cancelledBy must be one of: rider, driver, admin, system", err)
			return
		}
		f.By = &actor
	}
	if raw := r.URL.Query().Get("refundStatus"); raw != "" {
		status, err := ride.ParseRefundStatus(raw)
		if err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "refundStatus must be one of: pending, processed, rejected", err)
			return
		}
		f.Refund = &status
	}

	rides, err := handler.svc.CancelledRides(ctx, f)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"rides": rides})
}

func (handler *AdminHTTPHandler) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	var req adminCancelRequest
	if r.ContentLength > 0 && !handler.decodeJSON(w, r, &req) {
		return
	}

	if err := handler.svc.CancelRide(ctx, rideID, req.Reason); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"status": ride.StatusCancelled.String()})
}

func (handler *AdminHTTPHandler) handleProcessRefund(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	var req refundRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	status, err := ride.ParseRefundStatus(req.Status)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "status must be one of: pending, processed, rejected", err)
		return
	}

	if err := handler.svc.ProcessRefund(ctx, rideID, req.Amount, status); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"rideId":       rideID,
		"refundStatus": status.String(),
	})
}

func (handler *AdminHTTPHandler) handleCorrectPayment(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	var req correctPaymentRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	status, err := payment.ParseStatus(req.Status)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "status must be one of: pending, completed, failed, refunded", err)
		return
	}

	if err := handler.svc.CorrectPaymentStatus(ctx, rideID, status); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"rideId":        rideID,
		"paymentStatus": status.String(),
	})
}

func (handler *AdminHTTPHandler) handleAllUsers(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	users, err := handler.svc.AllUsers(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"users": users})
}

func (handler *AdminHTTPHandler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	userID, ok := handler.pathID(w, r, "user_id")
	if !ok {
		return
	}

	var req updateRoleRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "role must be one of: rider, driver, admin", err)
		return
	}

	if err := handler.svc.UpdateUserRole(ctx, userID, role); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"role": role.String()})
}

func (handler *AdminHTTPHandler) handleVerifyDriver(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	userID, ok := handler.pathID(w, r, "user_id")
	if !ok {
		return
	}

	var req verifyDriverRequest
	if !handler.decodeJSON(w, r, &req) {
		return
	}

	if err := handler.svc.VerifyDriver(ctx, userID, req.Verified); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{"verified": req.Verified})
}

func (handler *AdminHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- shared helpers -----

func (handler *AdminHTTPHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		handler.httpError(r.Context(), w, http.StatusBadRequest, name+" must be a positive integer", err)
		return 0, false
	}
	return id, true
}

func (handler *AdminHTTPHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
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

func (handler *AdminHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	code := fault.CodeOf(err)
	handler.httpError(ctx, w, fault.HTTPStatus(code), fault.MessageOf(err), err)
}

func (handler *AdminHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
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

func (handler *AdminHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	handler.jsonResponse(ctx, w, status, map[string]string{"error": msg})
}

func (handler *AdminHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if reqID == "" {
		return ctx
	}
	return handler.logger.WithRequestID(ctx, reqID)
}
