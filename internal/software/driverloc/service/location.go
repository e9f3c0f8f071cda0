package service

import (
	"context"

	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/fault"
)

// ReportLocation persists a driver's current position, refreshes the geo
// index, and fans the sample out in real time. When the driver is on an
// active ride the sample is also archived to the ride's track and pushed to
// the ride's location room.
func (service *driverLocationService) ReportLocation(ctx context.Context, driverID int64, p geo.Point) error {
	if err := p.Validate(); err != nil {
		return fault.Invalid("latitude must be in [-90, 90] and longitude in [-180, 180]")
	}

	now := service.clock.Now()

	// position row and track sample commit together
	var driver *user.User
	var active *ride.Ride
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		driver, err = service.userRepo.GetByID(ctx, driverID)
		if err != nil {
			return err
		}
		if driver == nil {
			return fault.NotFound("user %d not found", driverID)
		}
		if !driver.Role.CanDrive() {
			return fault.Forbidden("only drivers can report a location")
		}

		active, err = service.rideRepo.ActiveByDriver(ctx, driverID)
		if err != nil {
			return err
		}

		if err := service.userRepo.UpdateDriverLocation(ctx, driverID, p, now); err != nil {
			return err
		}
		if active != nil {
			return service.historyRepo.Append(ctx, &geo.LocationRecord{
				RideID:     active.ID,
				DriverID:   driverID,
				Position:   p,
				RecordedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	if driver.DriverStatus == user.DriverAvailable {
		if err := service.geoCache.Upsert(ctx, driverID, p); err != nil {
			service.logger.Error(ctx, "geo_cache_upsert_failed", "Failed to index driver position", err,
				map[string]any{"driver_id": driverID})
		}
	}

	ev := contracts.DriverLocationEvent{
		Type:      "driver_location_update",
		DriverID:  driverID,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Timestamp: now,
		Envelope:  service.envelope(generateCorrelationID()),
	}
	if active != nil {
		ev.RideID = active.ID
		rideCtx := service.logger.WithRideID(ctx, active.ID)
		_ = service.relay.Publish(rideCtx, contracts.TopicRideDriverLocation(active.ID), ev)
	}
	_ = service.relay.Publish(ctx, contracts.TopicAvailableDrivers, ev)

	return nil
}

// RideTrack returns the archived position samples of one ride in recording
// order.
func (service *driverLocationService) RideTrack(ctx context.Context, rideID int64) ([]*geo.LocationRecord, error) {
	var track []*geo.LocationRecord

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rd, err := service.rideRepo.GetByID(ctx, rideID)
		if err != nil {
			return err
		}
		if rd == nil {
			return fault.NotFound("ride %d not found", rideID)
		}

		track, err = service.historyRepo.ListByRide(ctx, rideID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return track, nil
}
