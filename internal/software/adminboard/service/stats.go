package service

import (
	"context"
	"math"

	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// DashboardStats aggregates the platform overview in one pass over rides and
// users.
func (service *adminService) DashboardStats(ctx context.Context) (ports.DashboardStats, error) {
	var stats ports.DashboardStats

	var rides []*ride.Ride
	var users []*user.User
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if rides, err = service.rideRepo.ListAll(ctx); err != nil {
			return err
		}
		users, err = service.userRepo.ListAll(ctx)
		return err
	})
	if err != nil {
		return stats, err
	}

	stats.TotalRides = len(rides)
	for _, rd := range rides {
		switch {
		case rd.Status == ride.StatusCompleted:
			stats.CompletedRides++
			if rd.ActualFare != nil {
				stats.TotalRevenue += *rd.ActualFare
			}
		case rd.Status.Active():
			stats.ActiveRides++
		}
	}

	stats.TotalUsers = len(users)
	for _, u := range users {
		if u.IsDriver() {
			stats.TotalDrivers++
			if u.DriverStatus == user.DriverAvailable || u.DriverStatus == user.DriverBusy {
				stats.ActiveDrivers++
			}
		}
	}

	return stats, nil
}

// CancellationStats breaks cancelled rides down by reason and by actor and
// reports the cancellation rate as a percentage with two decimals.
func (service *adminService) CancellationStats(ctx context.Context) (ports.CancellationStats, error) {
	stats := ports.CancellationStats{
		ByReason: map[string]int{},
		ByActor:  map[string]int{},
	}

	var all, cancelled []*ride.Ride
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if all, err = service.rideRepo.ListAll(ctx); err != nil {
			return err
		}
		cancelled, err = service.rideRepo.ListCancelled(ctx, nil, nil)
		return err
	})
	if err != nil {
		return stats, err
	}

	stats.TotalCancellations = len(cancelled)
	if len(all) > 0 {
		rate := float64(len(cancelled)) / float64(len(all)) * 100
		stats.CancellationRate = math.Round(rate*100) / 100
	}

	for _, rd := range cancelled {
		reason := "unspecified"
		if rd.CancellationReason != nil && *rd.CancellationReason != "" {
			reason = *rd.CancellationReason
		}
		stats.ByReason[reason]++

		actor := "unknown"
		if rd.CancelledBy != nil {
			actor = rd.CancelledBy.String()
		}
		stats.ByActor[actor]++
	}

	return stats, nil
}
