// Package service implements driver availability and the position relay
// path: status changes, location reports feeding the geo cache and the
// real-time rooms, the public available-drivers feed, and per-ride track
// replay.
package service

import (
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

type driverLocationService struct {
	logger      *logger.Logger
	uow         ports.UnitOfWork
	userRepo    ports.UserRepository
	rideRepo    ports.RideRepository
	historyRepo ports.LocationHistoryRepository
	geoCache    ports.DriverGeoCache
	relay       ports.Relay
	clock       ports.Clock
}

// NewDriverLocationService creates the driver location engine.
func NewDriverLocationService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	userRepo ports.UserRepository,
	rideRepo ports.RideRepository,
	historyRepo ports.LocationHistoryRepository,
	geoCache ports.DriverGeoCache,
	relay ports.Relay,
	clock ports.Clock,
) ports.DriverLocationService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &driverLocationService{
		logger:      logger,
		uow:         uow,
		userRepo:    userRepo,
		rideRepo:    rideRepo,
		historyRepo: historyRepo,
		geoCache:    geoCache,
		relay:       relay,
		clock:       clock,
	}
}
