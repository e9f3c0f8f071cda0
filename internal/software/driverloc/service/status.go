package service

import (
	"context"

	"ride-share/internal/domain/user"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/fault"
)

// UpdateStatus moves a driver between offline, available and busy. Going
// available requires no active ride; the engine sets busy itself at accept
// time, so a manual busy is also accepted for app-side breaks.
func (service *driverLocationService) UpdateStatus(ctx context.Context, driverID int64, status user.DriverStatus) error {
	if !status.Valid() {
		return fault.Invalid("driver status must be one of: offline, available, busy")
	}

	var driver *user.User
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
			return fault.Forbidden("only drivers can change availability")
		}

		if status != user.DriverBusy {
			active, err := service.rideRepo.ActiveByDriver(ctx, driverID)
			if err != nil {
				return err
			}
			if active != nil {
				return fault.Conflict("cannot change availability during an active ride")
			}
		}

		return service.userRepo.UpdateDriverStatus(ctx, driverID, status)
	})
	if err != nil {
		return err
	}

	// the geo index only holds drivers the matcher may offer rides to
	if status == user.DriverAvailable && driver.CurrentLocation != nil {
		if err := service.geoCache.Upsert(ctx, driverID, *driver.CurrentLocation); err != nil {
			service.logger.Error(ctx, "geo_cache_upsert_failed", "Failed to index driver position", err,
				map[string]any{"driver_id": driverID})
		}
	}
	if status != user.DriverAvailable {
		if err := service.geoCache.Remove(ctx, driverID); err != nil {
			service.logger.Error(ctx, "geo_cache_remove_failed", "Failed to drop driver from geo index", err,
				map[string]any{"driver_id": driverID})
		}
	}

	service.logger.Info(ctx, "driver_status_updated", "Driver availability changed",
		map[string]any{"driver_id": driverID, "status": status.String()})

	_ = service.relay.Publish(ctx, contracts.TopicAvailableDrivers, contracts.DriverStatusEvent{
		Type:      "driver_status_update",
		DriverID:  driverID,
		Status:    status.String(),
		Timestamp: service.clock.Now(),
		Envelope:  service.envelope(generateCorrelationID()),
	})
	return nil
}
