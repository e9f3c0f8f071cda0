// Package service implements the ride lifecycle engine: request, accept,
// progress, complete, cancel, shared-ride matching and the rating flow. All
// state changes go through conditional repository writes inside a unit of
// work, so concurrent conflicting commands resolve to exactly one winner.
package service

import (
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

type rideService struct {
	logger        *logger.Logger
	uow           ports.UnitOfWork
	rideRepo      ports.RideRepository
	passengerRepo ports.PassengerRepository
	userRepo      ports.UserRepository
	vehicleRepo   ports.VehicleRepository
	paymentRepo   ports.PaymentRepository
	ratingRepo    ports.RatingRepository
	relay         ports.Relay
	clock         ports.Clock
}

// NewRideService creates the ride engine with the provided dependencies.
func NewRideService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	rideRepo ports.RideRepository,
	passengerRepo ports.PassengerRepository,
	userRepo ports.UserRepository,
	vehicleRepo ports.VehicleRepository,
	paymentRepo ports.PaymentRepository,
	ratingRepo ports.RatingRepository,
	relay ports.Relay,
	clock ports.Clock,
) ports.RideService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &rideService{
		logger:        logger,
		uow:           uow,
		rideRepo:      rideRepo,
		passengerRepo: passengerRepo,
		userRepo:      userRepo,
		vehicleRepo:   vehicleRepo,
		paymentRepo:   paymentRepo,
		ratingRepo:    ratingRepo,
		relay:         relay,
		clock:         clock,
	}
}
