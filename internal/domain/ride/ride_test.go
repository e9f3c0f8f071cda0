package ride

import (
	"testing"

	"ride-share/internal/domain/geo"
)

func validRequest() NewRequest {
	return NewRequest{
		RideNumber:     "RIDE_20260830_abcd1234",
		RiderID:        7,
		Pickup:         geo.Point{Latitude: 40.7128, Longitude: -74.0060},
		PickupAddress:  "Broadway 1",
		Dropoff:        geo.Point{Latitude: 40.7484, Longitude: -73.9857},
		DropoffAddress: "5th Ave 350",
		VehicleClass:   ClassEconomy,
		EstimatedFare:  700,
		DistanceMeters: 5000,
	}
}

func TestNewRequestDefaults(t *testing.T) {
	r, err := New(validRequest())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Status != StatusSearching {
		t.Errorf("status = %s, want searching", r.Status)
	}
	if r.IsShared || r.MaxPassengers != 1 || r.CurrentPassengers != 1 {
		t.Errorf("solo ride capacity = %d/%d, want 1/1", r.CurrentPassengers, r.MaxPassengers)
	}
	if r.DriverID != nil || r.VehicleID != nil {
		t.Error("new ride must be unassigned")
	}
}

func TestNewSharedCapacity(t *testing.T) {
	req := validRequest()
	req.IsShared = true
	r, err := New(req)
	if err != nil {
		t.Fatalf("New shared: %v", err)
	}
	if r.MaxPassengers != DefaultSharedCapacity {
		t.Errorf("default shared capacity = %d, want %d", r.MaxPassengers, DefaultSharedCapacity)
	}
	if r.CurrentPassengers != 1 {
		t.Errorf("creator must occupy the first seat, got %d", r.CurrentPassengers)
	}

	req.MaxPassengers = 7
	if _, err := New(req); err != ErrCapacityOutOfRange {
		t.Errorf("capacity 7: got %v, want ErrCapacityOutOfRange", err)
	}
	req.MaxPassengers = 1
	if _, err := New(req); err != ErrCapacityOutOfRange {
		t.Errorf("capacity 1: got %v, want ErrCapacityOutOfRange", err)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewRequest)
		want   error
	}{
		{"missing rider", func(r *NewRequest) { r.RiderID = 0 }, ErrRiderRequired},
		{"missing ride number", func(r *NewRequest) { r.RideNumber = "  " }, ErrRideNumberRequired},
		{"missing address", func(r *NewRequest) { r.DropoffAddress = "" }, ErrAddressRequired},
		{"bad coordinates", func(r *NewRequest) { r.Pickup.Latitude = 91 }, geo.ErrInvalidCoordinates},
		{"bad class", func(r *NewRequest) { r.VehicleClass = "luxury" }, ErrInvalidVehicleClass},
		{"negative fare", func(r *NewRequest) { r.EstimatedFare = -1 }, ErrFareNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			if _, err := New(req); err != tt.want {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	r, _ := New(validRequest())

	if err := r.Accept(11, 3); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if r.Status != StatusAccepted || r.DriverID == nil || *r.DriverID != 11 {
		t.Fatalf("after accept: status=%s driver=%v", r.Status, r.DriverID)
	}
	if err := r.Accept(12, 4); err != ErrAlreadyAssigned {
		t.Errorf("second accept: got %v, want ErrAlreadyAssigned", err)
	}

	if err := r.MarkDriverArriving(); err != nil {
		t.Fatalf("MarkDriverArriving: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.StartedAt == nil {
		t.Error("StartedAt not stamped")
	}

	if err := r.Complete(720); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if r.ActualFare == nil || *r.ActualFare != 720 {
		t.Errorf("actual fare = %v, want 720", r.ActualFare)
	}
	if r.FinalAmount() != 720 {
		t.Errorf("FinalAmount = %d, want 720", r.FinalAmount())
	}

	if err := r.Cancel(CancelledByRider, "late"); err != ErrInvalidStatusTransition {
		t.Errorf("cancel after complete: got %v, want ErrInvalidStatusTransition", err)
	}
}

func TestFinalAmountFallsBackToEstimate(t *testing.T) {
	r, _ := New(validRequest())
	if r.FinalAmount() != 700 {
		t.Errorf("FinalAmount = %d, want estimate 700", r.FinalAmount())
	}
}

func TestCancelRecordsActorAndReason(t *testing.T) {
	r, _ := New(validRequest())
	if err := r.Cancel(CancelledByDriver, " no show "); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if r.Status != StatusCancelled || r.CancelledBy == nil || *r.CancelledBy != CancelledByDriver {
		t.Errorf("cancel metadata wrong: status=%s by=%v", r.Status, r.CancelledBy)
	}
	if r.CancellationReason == nil || *r.CancellationReason != "no show" {
		t.Errorf("reason = %v, want trimmed 'no show'", r.CancellationReason)
	}
	if r.RefundStatus != nil || r.RefundAmount != nil {
		t.Error("cancel must not touch refund fields")
	}
}

func TestJoinable(t *testing.T) {
	req := validRequest()
	req.IsShared = true
	req.MaxPassengers = 2
	r, _ := New(req)

	if !r.Joinable() || r.SeatsLeft() != 1 {
		t.Fatalf("fresh shared ride: joinable=%v seats=%d", r.Joinable(), r.SeatsLeft())
	}

	r.CurrentPassengers = 2
	if r.Joinable() || r.SeatsLeft() != 0 {
		t.Error("full ride must not be joinable")
	}

	r.CurrentPassengers = 1
	r.Status = StatusInProgress
	if r.Joinable() {
		t.Error("in-progress ride must not be joinable")
	}

	solo, _ := New(validRequest())
	if solo.Joinable() {
		t.Error("solo ride must not be joinable")
	}
}
