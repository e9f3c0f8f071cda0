package service

import (
	"context"

	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/ride"
	"ride-share/internal/general/fault"
)

// RateDriver records the rider's 1-5 rating of the driver on a completed ride
// and recomputes the driver's stored average from every score. Re-submitting
// overwrites the previous score, then the average is rebuilt the same way.
func (service *rideService) RateDriver(ctx context.Context, riderID, rideID int64, score int, comment string) error {
	if err := rating.ValidateScore(score); err != nil {
		return fault.Invalid("%v", err)
	}

	return service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rd, err := service.loadRide(ctx, rideID)
		if err != nil {
			return err
		}
		if rd.RiderID != riderID {
			return errRideNotFound(rideID)
		}
		if rd.Status != ride.StatusCompleted {
			return fault.Conflict("only completed rides can be rated")
		}
		if rd.DriverID == nil {
			return fault.Conflict("ride %d has no driver to rate", rideID)
		}

		if err := service.ratingRepo.UpsertRiderToDriver(ctx, rideID, score, comment); err != nil {
			return err
		}

		scores, err := service.ratingRepo.RiderToDriverScores(ctx, *rd.DriverID)
		if err != nil {
			return err
		}
		return service.userRepo.SetAverageRating(ctx, *rd.DriverID, rating.ScaledAverage(scores))
	})
}

// RateRider records the driver's 1-5 rating of the rider on a completed ride.
// Rider averages are not stored; the per-ride row is the record.
func (service *rideService) RateRider(ctx context.Context, driverID, rideID int64, score int, comment string) error {
	if err := rating.ValidateScore(score); err != nil {
		return fault.Invalid("%v", err)
	}

	return service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rd, err := service.loadRide(ctx, rideID)
		if err != nil {
			return err
		}
		if rd.DriverID == nil || *rd.DriverID != driverID {
			return fault.Forbidden("ride %d is not assigned to you", rideID)
		}
		if rd.Status != ride.StatusCompleted {
			return fault.Conflict("only completed rides can be rated")
		}

		return service.ratingRepo.UpsertDriverToRider(ctx, rideID, score, comment)
	})
}
