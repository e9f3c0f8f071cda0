// Package rating holds the per-ride rating row carrying the two independent
// half-ratings (rider-to-driver and driver-to-rider).
package rating

import (
	"errors"
	"math"
	"time"
)

// Rating is the domain entity corresponding to the `ratings` table. At most
// one row per ride, created lazily on the first half-rating submission.
type Rating struct {
	ID     int64
	RideID int64

	RiderToDriverRating  *int // 1-5
	RiderToDriverComment *string
	DriverToRiderRating  *int // 1-5
	DriverToRiderComment *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

var ErrOutOfRange = errors.New("rating must be between 1 and 5")

// ValidateScore checks the 1-5 star range.
func ValidateScore(score int) error {
	if score < 1 || score > 5 {
		return ErrOutOfRange
	}
	return nil
}

// ScaledAverage computes the mean of the given star scores scaled x100 and
// rounded half away from zero, the integer form stored on the driver row
// (4.5 stars -> 450). Every recomputation must round the same way.
func ScaledAverage(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores)) * 100))
}
