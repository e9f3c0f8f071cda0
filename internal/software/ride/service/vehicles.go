package service

import (
	"context"

	"ride-share/internal/domain/vehicle"
	"ride-share/internal/general/fault"
)

// AddVehicle registers a vehicle for its driver.
func (service *rideService) AddVehicle(ctx context.Context, v *vehicle.Vehicle) error {
	return service.uow.WithinTx(ctx, func(ctx context.Context) error {
		drv, err := service.userRepo.GetByID(ctx, v.DriverID)
		if err != nil {
			return err
		}
		if drv == nil {
			return errUserNotFound(v.DriverID)
		}
		if !drv.Role.CanDrive() {
			return fault.Forbidden("only drivers can register vehicles")
		}
		return service.vehicleRepo.Create(ctx, v)
	})
}

// Vehicles lists the driver's registered vehicles.
func (service *rideService) Vehicles(ctx context.Context, driverID int64) ([]*vehicle.Vehicle, error) {
	var out []*vehicle.Vehicle
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = service.vehicleRepo.ListByDriver(ctx, driverID)
		return err
	})
	return out, err
}

// UpdateVehicle rewrites a vehicle's details; only the owner may do it.
func (service *rideService) UpdateVehicle(ctx context.Context, driverID int64, v *vehicle.Vehicle) error {
	return service.uow.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := service.vehicleRepo.GetByID(ctx, v.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fault.NotFound("vehicle %d not found", v.ID)
		}
		if !existing.OwnedBy(driverID) {
			return fault.Forbidden("vehicle %d does not belong to you", v.ID)
		}

		v.DriverID = driverID
		return service.vehicleRepo.Update(ctx, v)
	})
}

// DeleteVehicle removes a driver's vehicle. The ownership check folds into
// the delete, so a mismatch reads as NOT_FOUND.
func (service *rideService) DeleteVehicle(ctx context.Context, driverID, vehicleID int64) error {
	return service.uow.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := service.vehicleRepo.Delete(ctx, vehicleID, driverID)
		if err != nil {
			return err
		}
		if !ok {
			return fault.NotFound("vehicle %d not found", vehicleID)
		}
		return nil
	})
}
