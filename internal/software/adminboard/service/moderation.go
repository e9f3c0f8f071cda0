package service

import (
	"context"

	"ride-share/internal/domain/payment"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/fault"
	"ride-share/internal/ports"
)

func (service *adminService) AllRides(ctx context.Context) ([]*ride.Ride, error) {
	var rides []*ride.Ride
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rides, err = service.rideRepo.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rides, nil
}

func (service *adminService) ActiveRides(ctx context.Context) ([]*ride.Ride, error) {
	var rides []*ride.Ride
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rides, err = service.rideRepo.ListActive(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rides, nil
}

func (service *adminService) AllUsers(ctx context.Context) ([]*user.User, error) {
	var users []*user.User
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		users, err = service.userRepo.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole reassigns a user's role.
func (service *adminService) UpdateUserRole(ctx context.Context, userID int64, role user.Role) error {
	if !role.Valid() {
		return fault.Invalid("role must be one of: rider, driver, admin")
	}

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		u, err := service.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return fault.NotFound("user %d not found", userID)
		}

		return service.userRepo.UpdateRole(ctx, userID, role)
	})
	if err != nil {
		return err
	}

	service.logger.Info(ctx, "user_role_updated", "User role changed",
		map[string]any{"user_id": userID, "role": role.String()})
	return nil
}

// VerifyDriver flips a driver's verification flag.
func (service *adminService) VerifyDriver(ctx context.Context, userID int64, verified bool) error {
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		u, err := service.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return fault.NotFound("user %d not found", userID)
		}
		if !u.IsDriver() {
			return fault.Invalid("user %d is not a driver", userID)
		}

		return service.userRepo.SetVerified(ctx, userID, verified)
	})
	if err != nil {
		return err
	}

	service.logger.Info(ctx, "driver_verified", "Driver verification updated",
		map[string]any{"user_id": userID, "verified": verified})
	return nil
}

// CancelRide cancels any non-terminal ride on behalf of the platform. The
// lifecycle engine enforces the guard and releases the assigned driver.
func (service *adminService) CancelRide(ctx context.Context, rideID int64, reason string) error {
	return service.rides.CancelRide(ctx, ports.CancelRideInput{
		RideID: rideID,
		Actor:  ride.CancelledByAdmin,
		Reason: reason,
	})
}

func (service *adminService) CancelledRides(ctx context.Context, f ports.CancelledRideFilter) ([]*ride.Ride, error) {
	var rides []*ride.Ride
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rides, err = service.rideRepo.ListCancelled(ctx, f.By, f.Refund)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rides, nil
}

// ProcessRefund records refund bookkeeping on a cancelled ride. The write is
// guarded on the ride being cancelled, so a race with a still-running ride
// cannot attach a refund.
func (service *adminService) ProcessRefund(ctx context.Context, rideID, amount int64, status ride.RefundStatus) error {
	if !status.Valid() {
		return fault.Invalid("refund status must be one of: pending, processed, rejected")
	}
	if amount < 0 {
		return fault.Invalid("refund amount must not be negative")
	}

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rd, err := service.rideRepo.GetByID(ctx, rideID)
		if err != nil {
			return err
		}
		if rd == nil {
			return fault.NotFound("ride %d not found", rideID)
		}

		ok, err := service.rideRepo.SetRefund(ctx, rideID, amount, status)
		if err != nil {
			return err
		}
		if !ok {
			return fault.Conflict("refunds apply to cancelled rides only")
		}
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.Info(ctx, "refund_processed", "Refund recorded on cancelled ride",
		map[string]any{"ride_id": rideID, "amount": amount, "status": status.String()})
	return nil
}

// CorrectPaymentStatus overrides the settlement status of a ride's payment
// row, for support cases where the recorded outcome is wrong.
func (service *adminService) CorrectPaymentStatus(ctx context.Context, rideID int64, status payment.Status) error {
	if !status.Valid() {
		return fault.Invalid("payment status must be one of: pending, completed, failed, refunded")
	}

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		p, err := service.paymentRepo.GetByRide(ctx, rideID)
		if err != nil {
			return err
		}
		if p == nil {
			return fault.NotFound("ride %d has no payment", rideID)
		}

		return service.paymentRepo.UpdateStatus(ctx, p.ID, status)
	})
	if err != nil {
		return err
	}

	service.logger.Info(ctx, "payment_status_corrected", "Payment settlement status overridden",
		map[string]any{"ride_id": rideID, "status": status.String()})
	return nil
}
