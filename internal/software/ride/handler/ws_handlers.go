package handler

import (
	"net/http"

	"ride-share/internal/general/contracts"
)

// ----- GET /ws -----

// handleSubscribeSelf attaches the caller to their personal event room. The
// room is derived from the token, so a rider cannot listen on another rider's
// updates. Drivers additionally receive the open ride-request feed.
func (handler *RideHTTPHandler) handleSubscribeSelf(w http.ResponseWriter, r *http.Request) {
	callerID, ok := handler.callerID(w, r)
	if !ok {
		return
	}

	topics := []string{contracts.TopicRider(callerID)}
	if jwtRole(r).CanDrive() {
		topics = []string{contracts.TopicDriver(callerID), contracts.TopicAvailableDrivers}
	}

	handler.hub.ServeSubscription(w, r, topics...)
}

// ----- GET /ws/rides/{ride_id}/location -----

// handleSubscribeRideLocation streams the assigned driver's position for one
// ride. Access control is the ride-level ownership check: the caller must be
// the rider or the assigned driver.
func (handler *RideHTTPHandler) handleSubscribeRideLocation(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	callerID, ok := handler.callerID(w, r)
	if !ok {
		return
	}
	rideID, ok := handler.pathID(w, r, "ride_id")
	if !ok {
		return
	}

	if _, err := handler.svc.RideByID(ctx, callerID, rideID); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.hub.ServeSubscription(w, r, contracts.TopicRideDriverLocation(rideID))
}
