package service

import (
	"context"

	"ride-share/internal/domain/ride"
	"ride-share/internal/ports"
)

// ActiveRide returns the rider's current non-terminal ride with the assigned
// driver's public details, or (nil, nil) when the rider has no active ride.
func (service *rideService) ActiveRide(ctx context.Context, riderID int64) (*ports.ActiveRideView, error) {
	var view *ports.ActiveRideView

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rd, err := service.rideRepo.ActiveByRider(ctx, riderID)
		if err != nil {
			return err
		}
		if rd == nil {
			return nil
		}

		view = &ports.ActiveRideView{Ride: rd}
		if rd.DriverID == nil {
			return nil
		}

		drv, err := service.userRepo.GetByID(ctx, *rd.DriverID)
		if err != nil {
			return err
		}
		if drv != nil {
			view.Driver = &ports.DriverBrief{
				ID:            drv.ID,
				Name:          drv.Name,
				Phone:         drv.Phone,
				AverageRating: drv.Stars(),
				Location:      drv.CurrentLocation,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// RideByID returns a ride visible to the caller: its rider, its driver, or
// nobody else. Unauthorized lookups read as NOT_FOUND.
func (service *rideService) RideByID(ctx context.Context, callerID, rideID int64) (*ride.Ride, error) {
	var out *ride.Ride

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rd, err := service.loadRide(ctx, rideID)
		if err != nil {
			return err
		}
		if rd.RiderID != callerID && (rd.DriverID == nil || *rd.DriverID != callerID) {
			return errRideNotFound(rideID)
		}
		out = rd
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// RideHistory returns the rider's rides, newest first.
func (service *rideService) RideHistory(ctx context.Context, riderID int64) ([]*ride.Ride, error) {
	var out []*ride.Ride
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = service.rideRepo.ListByRider(ctx, riderID)
		return err
	})
	return out, err
}

// DriverRideHistory returns rides the driver has been assigned to, newest first.
func (service *rideService) DriverRideHistory(ctx context.Context, driverID int64) ([]*ride.Ride, error) {
	var out []*ride.Ride
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = service.rideRepo.ListByDriver(ctx, driverID)
		return err
	})
	return out, err
}

// PendingRides lists unassigned searching rides for drivers browsing open
// requests.
func (service *rideService) PendingRides(ctx context.Context) ([]*ride.Ride, error) {
	var out []*ride.Ride
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = service.rideRepo.ListPending(ctx)
		return err
	})
	return out, err
}

// Earnings totals the driver's completed payments.
func (service *rideService) Earnings(ctx context.Context, driverID int64) (ports.EarningsResult, error) {
	var res ports.EarningsResult

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		payments, err := service.paymentRepo.ListCompletedByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		res.Payments = payments
		for _, p := range payments {
			res.TotalEarnings += p.Amount
		}
		return nil
	})
	if err != nil {
		return ports.EarningsResult{}, err
	}

	return res, nil
}
