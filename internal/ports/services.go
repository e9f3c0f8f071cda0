package ports

import (
	"context"
	"time"

	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/payment"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/domain/vehicle"
)

// Relay is the injected publish/subscribe fan-out used for real-time events.
// Delivery is best-effort and at-most-once: a publish failure is the
// publisher's to log, never to retry, and a disconnected subscriber simply
// misses events published while absent. Ordering is FIFO per topic per
// publisher, unordered across topics.
type Relay interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// ----- ride service -----

// RequestRideInput carries a rider's ride request.
type RequestRideInput struct {
	RiderID         int64
	Pickup          geo.Point
	PickupAddress   string
	Dropoff         geo.Point
	DropoffAddress  string
	VehicleClass    ride.VehicleClass
	DistanceMeters  int64
	DurationSeconds int64
	IsShared        bool
	MaxPassengers   int
}

// RequestRideResult reports the created ride back to the rider.
type RequestRideResult struct {
	RideID        int64
	RideNumber    string
	Status        ride.Status
	EstimatedFare int64
}

// CancelRideInput carries a cancellation from any actor.
type CancelRideInput struct {
	RideID int64
	Actor  ride.CancelActor
	// ActorUserID is the cancelling user; ownership is enforced for riders
	// and drivers, skipped for admin/system.
	ActorUserID int64
	Reason      string
}

// FindSharedInput is a candidate trip looking for compatible open shared rides.
type FindSharedInput struct {
	Pickup       geo.Point
	Dropoff      geo.Point
	VehicleClass ride.VehicleClass
	// MaxDetourKM defaults to DefaultMaxDetourKM when zero.
	MaxDetourKM float64
}

// DefaultMaxDetourKM bounds how far apart two trips' endpoints may be and
// still share a ride.
const DefaultMaxDetourKM = 2.0

// JoinSharedInput carries a rider joining an existing shared ride.
type JoinSharedInput struct {
	RiderID        int64
	RideID         int64
	Pickup         geo.Point
	PickupAddress  string
	Dropoff        geo.Point
	DropoffAddress string
	Fare           int64
}

// ActiveRideView is the rider's active ride together with the assigned
// driver's public details once one exists.
type ActiveRideView struct {
	Ride   *ride.Ride
	Driver *DriverBrief
}

// DriverBrief is the driver summary exposed to riders.
type DriverBrief struct {
	ID            int64
	Name          string
	Phone         string
	AverageRating float64 // back on the 0-5 scale
	Location      *geo.Point
}

// EarningsResult aggregates a driver's completed payments.
type EarningsResult struct {
	TotalEarnings int64
	Payments      []*payment.Payment
}

// RideService is the ride lifecycle engine plus the shared-ride matcher.
type RideService interface {
	RequestRide(ctx context.Context, in RequestRideInput) (RequestRideResult, error)
	AcceptRide(ctx context.Context, driverID, rideID, vehicleID int64) error
	AdvanceStatus(ctx context.Context, driverID, rideID int64, next ride.Status) error
	CancelRide(ctx context.Context, in CancelRideInput) error

	RateDriver(ctx context.Context, riderID, rideID int64, score int, comment string) error
	RateRider(ctx context.Context, driverID, rideID int64, score int, comment string) error

	ActiveRide(ctx context.Context, riderID int64) (*ActiveRideView, error)
	RideByID(ctx context.Context, callerID, rideID int64) (*ride.Ride, error)
	RideHistory(ctx context.Context, riderID int64) ([]*ride.Ride, error)
	DriverRideHistory(ctx context.Context, driverID int64) ([]*ride.Ride, error)
	PendingRides(ctx context.Context) ([]*ride.Ride, error)
	Earnings(ctx context.Context, driverID int64) (EarningsResult, error)

	FindCompatibleSharedRides(ctx context.Context, in FindSharedInput) ([]*ride.Ride, error)
	JoinSharedRide(ctx context.Context, in JoinSharedInput) error
	RidePassengers(ctx context.Context, rideID int64) ([]*ride.Passenger, error)
	UpdatePassengerStatus(ctx context.Context, driverID, passengerID int64, next ride.PassengerStatus) error

	AddVehicle(ctx context.Context, v *vehicle.Vehicle) error
	Vehicles(ctx context.Context, driverID int64) ([]*vehicle.Vehicle, error)
	UpdateVehicle(ctx context.Context, driverID int64, v *vehicle.Vehicle) error
	DeleteVehicle(ctx context.Context, driverID, vehicleID int64) error
}

// ----- driver location service -----

// AvailableDriver is one entry of the public available-drivers feed.
type AvailableDriver struct {
	ID            int64
	Name          string
	Position      geo.Point
	AverageRating float64
}

// DriverLocationService owns driver availability and the position relay path.
type DriverLocationService interface {
	UpdateStatus(ctx context.Context, driverID int64, status user.DriverStatus) error
	// ReportLocation persists the driver's current position, updates the geo
	// cache, and broadcasts to the global feed and the active ride's room.
	ReportLocation(ctx context.Context, driverID int64, p geo.Point) error
	AvailableDrivers(ctx context.Context) ([]AvailableDriver, error)
	RideTrack(ctx context.Context, rideID int64) ([]*geo.LocationRecord, error)
}

// ----- admin service -----

// DashboardStats is the admin overview aggregate.
type DashboardStats struct {
	TotalRides     int
	CompletedRides int
	ActiveRides    int
	TotalRevenue   int64
	TotalUsers     int
	TotalDrivers   int
	ActiveDrivers  int
}

// CancellationStats breaks down cancelled rides for the admin board.
type CancellationStats struct {
	TotalCancellations int
	CancellationRate   float64 // percent, two decimals
	ByReason           map[string]int
	ByActor            map[string]int
}

// CancelledRideFilter narrows the cancelled-rides listing.
type CancelledRideFilter struct {
	By     *ride.CancelActor
	Refund *ride.RefundStatus
}

// AdminService is the admin reporting and moderation surface.
type AdminService interface {
	DashboardStats(ctx context.Context) (DashboardStats, error)
	CancellationStats(ctx context.Context) (CancellationStats, error)
	AllRides(ctx context.Context) ([]*ride.Ride, error)
	ActiveRides(ctx context.Context) ([]*ride.Ride, error)
	AllUsers(ctx context.Context) ([]*user.User, error)
	UpdateUserRole(ctx context.Context, userID int64, role user.Role) error
	VerifyDriver(ctx context.Context, userID int64, verified bool) error
	CancelRide(ctx context.Context, rideID int64, reason string) error
	CancelledRides(ctx context.Context, f CancelledRideFilter) ([]*ride.Ride, error)
	ProcessRefund(ctx context.Context, rideID, amount int64, status ride.RefundStatus) error
	// CorrectPaymentStatus overrides the settlement status recorded on a
	// ride's payment row.
	CorrectPaymentStatus(ctx context.Context, rideID int64, status payment.Status) error
}

// Clock abstracts time for deterministic tests of freshness windows.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
