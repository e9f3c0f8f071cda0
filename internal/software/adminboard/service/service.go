// Package service implements the admin reporting and moderation surface:
// dashboard aggregates, cancellation analytics, role and verification
// management, administrative cancellation and refund processing.
package service

import (
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

type adminService struct {
	logger      *logger.Logger
	uow         ports.UnitOfWork
	rideRepo    ports.RideRepository
	userRepo    ports.UserRepository
	paymentRepo ports.PaymentRepository
	// rides delegates cancellation to the lifecycle engine so admin cancels
	// share the guard and the driver-release path.
	rides ports.RideService
	clock ports.Clock
}

// NewAdminService creates the admin surface over the shared repositories and
// the ride engine.
func NewAdminService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	rideRepo ports.RideRepository,
	userRepo ports.UserRepository,
	paymentRepo ports.PaymentRepository,
	rides ports.RideService,
	clock ports.Clock,
) ports.AdminService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &adminService{
		logger:      logger,
		uow:         uow,
		rideRepo:    rideRepo,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		rides:       rides,
		clock:       clock,
	}
}
