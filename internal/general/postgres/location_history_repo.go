package postgres

import (
	"context"
	"fmt"

	"ride-share/internal/domain/geo"
	"ride-share/internal/ports"
)

// LocationHistoryRepo archives driver position samples using pgx and plain SQL.
type LocationHistoryRepo struct{}

// NewLocationHistoryRepo constructs a new LocationHistoryRepo.
func NewLocationHistoryRepo() ports.LocationHistoryRepository {
	return &LocationHistoryRepo{}
}

// Append inserts one position sample into the append-only tracking table.
func (repo *LocationHistoryRepo) Append(ctx context.Context, rec *geo.LocationRecord) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO location_tracking (ride_id, driver_id, latitude, longitude, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		rec.RideID, rec.DriverID, rec.Position.Latitude, rec.Position.Longitude, rec.RecordedAt,
	).Scan(&rec.ID)
}

// ListByRide returns the ride's position trail in recording order.
func (repo *LocationHistoryRepo) ListByRide(ctx context.Context, rideID int64) ([]*geo.LocationRecord, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, ride_id, driver_id, latitude, longitude, recorded_at
		FROM location_tracking
		WHERE ride_id = $1
		ORDER BY recorded_at ASC
	`, rideID)
	if err != nil {
		return nil, fmt.Errorf("query location tracking: %w", err)
	}
	defer rows.Close()

	var out []*geo.LocationRecord
	for rows.Next() {
		var rec geo.LocationRecord
		if err := rows.Scan(&rec.ID, &rec.RideID, &rec.DriverID, &rec.Position.Latitude, &rec.Position.Longitude, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan location record: %w", err)
		}
		out = append(out, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}
