package service

import (
	"github.com/google/uuid"

	"ride-share/internal/general/contracts"
)

// generateCorrelationID creates a correlation ID for tracing requests.
func generateCorrelationID() string {
	return "req_" + uuid.NewString()
}

// envelope stamps the shared event headers.
func (service *driverLocationService) envelope(corrID string) contracts.Envelope {
	return contracts.Envelope{
		CorrelationID: corrID,
		Producer:      "driver-location-service",
		SentAt:        service.clock.Now(),
	}
}
