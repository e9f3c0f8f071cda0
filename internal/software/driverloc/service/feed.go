package service

import (
	"context"
	"time"

	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// LocationMaxAge is the freshness window of the available-drivers feed:
// drivers whose last position report is older drop out even while their
// status row still says available.
const LocationMaxAge = 5 * time.Minute

// AvailableDrivers returns drivers that are available and have reported a
// position within the freshness window.
func (service *driverLocationService) AvailableDrivers(ctx context.Context) ([]ports.AvailableDriver, error) {
	since := service.clock.Now().Add(-LocationMaxAge)

	var drivers []*user.User
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		drivers, err = service.userRepo.ListAvailableDrivers(ctx, since)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]ports.AvailableDriver, 0, len(drivers))
	for _, d := range drivers {
		if d.CurrentLocation == nil {
			continue
		}
		out = append(out, ports.AvailableDriver{
			ID:            d.ID,
			Name:          d.Name,
			Position:      *d.CurrentLocation,
			AverageRating: d.Stars(),
		})
	}
	return out, nil
}
