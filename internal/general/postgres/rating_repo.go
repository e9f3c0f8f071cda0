package postgres

import (
	"context"
	"errors"
	"fmt"

	"ride-share/internal/domain/rating"
	"ride-share/internal/ports"

	"github.com/jackc/pgx/v5"
)

// RatingRepo persists per-ride rating rows using pgx and plain SQL. Each ride
// has at most one row holding both half-ratings; submissions upsert.
type RatingRepo struct{}

// NewRatingRepo constructs a new RatingRepo.
func NewRatingRepo() ports.RatingRepository {
	return &RatingRepo{}
}

// GetByRide fetches the rating row for a ride. Returns (nil, nil) when absent.
func (repo *RatingRepo) GetByRide(ctx context.Context, rideID int64) (*rating.Rating, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out rating.Rating
	err = tx.QueryRow(ctx, `
		SELECT id, created_at, updated_at, ride_id,
		       rider_to_driver_rating, rider_to_driver_comment,
		       driver_to_rider_rating, driver_to_rider_comment
		FROM ratings
		WHERE ride_id = $1
	`, rideID).Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.RideID,
		&out.RiderToDriverRating, &out.RiderToDriverComment,
		&out.DriverToRiderRating, &out.DriverToRiderComment,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &out, nil
}

// UpsertRiderToDriver records or overwrites the rider's half-rating.
func (repo *RatingRepo) UpsertRiderToDriver(ctx context.Context, rideID int64, score int, comment string) error {
	return upsertHalf(ctx, rideID, "rider_to_driver", score, comment)
}

// UpsertDriverToRider records or overwrites the driver's half-rating.
func (repo *RatingRepo) UpsertDriverToRider(ctx context.Context, rideID int64, score int, comment string) error {
	return upsertHalf(ctx, rideID, "driver_to_rider", score, comment)
}

func upsertHalf(ctx context.Context, rideID int64, side string, score int, comment string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if err := rating.ValidateScore(score); err != nil {
		return err
	}

	var commentArg *string
	if comment != "" {
		commentArg = &comment
	}

	// side is one of two fixed literals, never user input
	query := fmt.Sprintf(`
		INSERT INTO ratings (ride_id, %[1]s_rating, %[1]s_comment)
		VALUES ($1, $2, $3)
		ON CONFLICT (ride_id) DO UPDATE
		SET %[1]s_rating = EXCLUDED.%[1]s_rating,
		    %[1]s_comment = EXCLUDED.%[1]s_comment,
		    updated_at = now()
	`, side)

	_, err = tx.Exec(ctx, query, rideID, score, commentArg)
	return err
}

// RiderToDriverScores returns every rider-to-driver score across the driver's
// rides, used to recompute the stored average.
func (repo *RatingRepo) RiderToDriverScores(ctx context.Context, driverID int64) ([]int, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT rt.rider_to_driver_rating
		FROM ratings rt
		JOIN rides r ON r.id = rt.ride_id
		WHERE r.driver_id = $1
		  AND rt.rider_to_driver_rating IS NOT NULL
		ORDER BY rt.created_at ASC
	`, driverID)
	if err != nil {
		return nil, fmt.Errorf("query driver scores: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return scores, nil
}
