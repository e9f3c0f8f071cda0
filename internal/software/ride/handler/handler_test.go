package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
)

// The estimate endpoint never touches the service or the hub, so nil
// collaborators are fine here.
func newFareMux() *http.ServeMux {
	h := NewRideHTTPHandler(nil, logger.New("ride-handler-test"), jwt.NewManager("test-secret", time.Hour), nil)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func TestFareEstimateEndpoint(t *testing.T) {
	mux := newFareMux()

	tests := []struct {
		name     string
		query    string
		wantFare int64
	}{
		{"economy 10km", "distanceMeters=10000&vehicleClass=economy", 1100},
		{"shared comfort 5km", "distanceMeters=5000&vehicleClass=comfort&shared=true", 880},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/fare/estimate?"+tt.query, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			var body struct {
				EstimatedFare int64 `json:"estimatedFare"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.EstimatedFare != tt.wantFare {
				t.Fatalf("estimatedFare = %d, want %d", body.EstimatedFare, tt.wantFare)
			}
		})
	}
}

func TestFareEstimateRejectsBadInput(t *testing.T) {
	mux := newFareMux()

	for _, query := range []string{
		"distanceMeters=-5&vehicleClass=economy",
		"distanceMeters=abc&vehicleClass=economy",
		"distanceMeters=1000&vehicleClass=jetpack",
		"distanceMeters=1000&vehicleClass=economy&shared=maybe",
	} {
		req := httptest.NewRequest(http.MethodGet, "/fare/estimate?"+query, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("query %q: status = %d, want 400", query, w.Code)
		}
	}
}

func TestFareEstimateNeedsNoToken(t *testing.T) {
	mux := newFareMux()

	req := httptest.NewRequest(http.MethodGet, "/fare/estimate?distanceMeters=1000&vehicleClass=economy", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unauthenticated estimate: status = %d, want 200", w.Code)
	}
}
