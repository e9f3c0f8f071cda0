package service

import (
	"context"
	"errors"
	"testing"

	"ride-share/internal/domain/payment"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/fault"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// The fakes embed the port interface and implement only the methods the
// admin surface touches.

// The repo fakes refuse calls outside WithinTx, like the real pgx repos do.
type txMarker struct{}

func requireTx(ctx context.Context) error {
	if ctx.Value(txMarker{}) == nil {
		return errors.New("no transaction in context: call this repository within UnitOfWork.WithinTx")
	}
	return nil
}

type passthroughUoW struct{}

func (passthroughUoW) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(context.WithValue(ctx, txMarker{}, true))
}

type fakeRideRepo struct {
	ports.RideRepository
	rides map[int64]*ride.Ride
}

func (f *fakeRideRepo) ListAll(ctx context.Context) ([]*ride.Ride, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	var out []*ride.Ride
	for _, rd := range f.rides {
		out = append(out, rd)
	}
	return out, nil
}

func (f *fakeRideRepo) ListActive(ctx context.Context) ([]*ride.Ride, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	var out []*ride.Ride
	for _, rd := range f.rides {
		if !rd.Status.Terminal() {
			out = append(out, rd)
		}
	}
	return out, nil
}

func (f *fakeRideRepo) ListCancelled(ctx context.Context, by *ride.CancelActor, refund *ride.RefundStatus) ([]*ride.Ride, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	var out []*ride.Ride
	for _, rd := range f.rides {
		if rd.Status != ride.StatusCancelled {
			continue
		}
		if by != nil && (rd.CancelledBy == nil || *rd.CancelledBy != *by) {
			continue
		}
		if refund != nil && (rd.RefundStatus == nil || *rd.RefundStatus != *refund) {
			continue
		}
		out = append(out, rd)
	}
	return out, nil
}

func (f *fakeRideRepo) GetByID(ctx context.Context, id int64) (*ride.Ride, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	return f.rides[id], nil
}

func (f *fakeRideRepo) SetRefund(ctx context.Context, rideID, amount int64, status ride.RefundStatus) (bool, error) {
	if err := requireTx(ctx); err != nil {
		return false, err
	}
	rd, ok := f.rides[rideID]
	if !ok || rd.Status != ride.StatusCancelled {
		return false, nil
	}
	rd.RefundAmount = &amount
	rd.RefundStatus = &status
	return true, nil
}

type fakeUserRepo struct {
	ports.UserRepository
	users map[int64]*user.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	return f.users[id], nil
}

func (f *fakeUserRepo) ListAll(ctx context.Context) ([]*user.User, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	var out []*user.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id int64, role user.Role) error {
	if err := requireTx(ctx); err != nil {
		return err
	}
	f.users[id].Role = role
	return nil
}

func (f *fakeUserRepo) SetVerified(ctx context.Context, id int64, verified bool) error {
	if err := requireTx(ctx); err != nil {
		return err
	}
	f.users[id].IsVerified = verified
	return nil
}

type fakePaymentRepo struct {
	ports.PaymentRepository
	byRide map[int64]*payment.Payment
}

func (f *fakePaymentRepo) GetByRide(ctx context.Context, rideID int64) (*payment.Payment, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	return f.byRide[rideID], nil
}

func (f *fakePaymentRepo) UpdateStatus(ctx context.Context, id int64, status payment.Status) error {
	if err := requireTx(ctx); err != nil {
		return err
	}
	for _, p := range f.byRide {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return errors.New("payment not found")
}

type adminEnv struct {
	svc      ports.AdminService
	rides    *fakeRideRepo
	users    *fakeUserRepo
	payments *fakePaymentRepo
}

func newAdminEnv() *adminEnv {
	rides := &fakeRideRepo{rides: map[int64]*ride.Ride{}}
	users := &fakeUserRepo{users: map[int64]*user.User{}}
	payments := &fakePaymentRepo{byRide: map[int64]*payment.Payment{}}
	svc := NewAdminService(logger.New("admin-test"), passthroughUoW{}, rides, users, payments, nil, nil)
	return &adminEnv{svc: svc, rides: rides, users: users, payments: payments}
}

func fare(v int64) *int64 { return &v }

func TestDashboardStats(t *testing.T) {
	env := newAdminEnv()
	env.rides.rides[1] = &ride.Ride{ID: 1, Status: ride.StatusCompleted, ActualFare: fare(700)}
	env.rides.rides[2] = &ride.Ride{ID: 2, Status: ride.StatusCompleted, ActualFare: fare(1100)}
	env.rides.rides[3] = &ride.Ride{ID: 3, Status: ride.StatusInProgress}
	env.rides.rides[4] = &ride.Ride{ID: 4, Status: ride.StatusSearching}
	env.rides.rides[5] = &ride.Ride{ID: 5, Status: ride.StatusCancelled}

	env.users.users[1] = &user.User{ID: 1, Role: user.RoleRider}
	env.users.users[2] = &user.User{ID: 2, Role: user.RoleDriver, DriverStatus: user.DriverAvailable}
	env.users.users[3] = &user.User{ID: 3, Role: user.RoleDriver, DriverStatus: user.DriverBusy}
	env.users.users[4] = &user.User{ID: 4, Role: user.RoleDriver, DriverStatus: user.DriverOffline}

	stats, err := env.svc.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}

	want := ports.DashboardStats{
		TotalRides:     5,
		CompletedRides: 2,
		ActiveRides:    2,
		TotalRevenue:   1800,
		TotalUsers:     4,
		TotalDrivers:   3,
		ActiveDrivers:  2,
	}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestCancellationStats(t *testing.T) {
	env := newAdminEnv()
	rider := ride.CancelledByRider
	reason := "driver too far"
	env.rides.rides[1] = &ride.Ride{ID: 1, Status: ride.StatusCompleted}
	env.rides.rides[2] = &ride.Ride{ID: 2, Status: ride.StatusCompleted}
	env.rides.rides[3] = &ride.Ride{ID: 3, Status: ride.StatusCancelled, CancelledBy: &rider, CancellationReason: &reason}
	env.rides.rides[4] = &ride.Ride{ID: 4, Status: ride.StatusCancelled}

	stats, err := env.svc.CancellationStats(context.Background())
	if err != nil {
		t.Fatalf("CancellationStats: %v", err)
	}
	if stats.TotalCancellations != 2 {
		t.Fatalf("total = %d, want 2", stats.TotalCancellations)
	}
	// 2 of 4 rides
	if stats.CancellationRate != 50.0 {
		t.Fatalf("rate = %v, want 50", stats.CancellationRate)
	}
	if stats.ByReason["driver too far"] != 1 || stats.ByReason["unspecified"] != 1 {
		t.Fatalf("byReason = %v", stats.ByReason)
	}
	if stats.ByActor["rider"] != 1 || stats.ByActor["unknown"] != 1 {
		t.Fatalf("byActor = %v", stats.ByActor)
	}
}

func TestVerifyDriverRejectsNonDriver(t *testing.T) {
	env := newAdminEnv()
	env.users.users[1] = &user.User{ID: 1, Role: user.RoleRider}

	err := env.svc.VerifyDriver(context.Background(), 1, true)
	if fault.CodeOf(err) != fault.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION", err)
	}
}

func TestVerifyDriverSetsFlag(t *testing.T) {
	env := newAdminEnv()
	env.users.users[2] = &user.User{ID: 2, Role: user.RoleDriver}

	if err := env.svc.VerifyDriver(context.Background(), 2, true); err != nil {
		t.Fatalf("VerifyDriver: %v", err)
	}
	if !env.users.users[2].IsVerified {
		t.Fatal("verification flag not set")
	}
}

func TestUpdateUserRole(t *testing.T) {
	env := newAdminEnv()
	env.users.users[1] = &user.User{ID: 1, Role: user.RoleRider}

	if err := env.svc.UpdateUserRole(context.Background(), 1, user.RoleDriver); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if env.users.users[1].Role != user.RoleDriver {
		t.Fatalf("role = %s, want driver", env.users.users[1].Role)
	}

	err := env.svc.UpdateUserRole(context.Background(), 1, user.Role("superuser"))
	if fault.CodeOf(err) != fault.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION", err)
	}
}

func TestProcessRefundRequiresCancelledRide(t *testing.T) {
	env := newAdminEnv()
	env.rides.rides[1] = &ride.Ride{ID: 1, Status: ride.StatusCompleted}

	err := env.svc.ProcessRefund(context.Background(), 1, 700, ride.RefundProcessed)
	if fault.CodeOf(err) != fault.CodeConflict {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
	if got := fault.MessageOf(err); got != "refunds apply to cancelled rides only" {
		t.Fatalf("message = %q", got)
	}
}

func TestProcessRefundRecordsBookkeeping(t *testing.T) {
	env := newAdminEnv()
	env.rides.rides[1] = &ride.Ride{ID: 1, Status: ride.StatusCancelled}

	if err := env.svc.ProcessRefund(context.Background(), 1, 700, ride.RefundProcessed); err != nil {
		t.Fatalf("ProcessRefund: %v", err)
	}
	rd := env.rides.rides[1]
	if rd.RefundAmount == nil || *rd.RefundAmount != 700 {
		t.Fatalf("refund amount = %v, want 700", rd.RefundAmount)
	}
	if rd.RefundStatus == nil || *rd.RefundStatus != ride.RefundProcessed {
		t.Fatalf("refund status = %v, want processed", rd.RefundStatus)
	}

	filter := ride.RefundProcessed
	got, err := env.svc.CancelledRides(context.Background(), ports.CancelledRideFilter{Refund: &filter})
	if err != nil {
		t.Fatalf("CancelledRides: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("filtered rides = %v", got)
	}
}

func TestCorrectPaymentStatus(t *testing.T) {
	env := newAdminEnv()
	env.payments.byRide[1] = &payment.Payment{ID: 10, RideID: 1, Status: payment.StatusFailed}

	if err := env.svc.CorrectPaymentStatus(context.Background(), 1, payment.StatusCompleted); err != nil {
		t.Fatalf("CorrectPaymentStatus: %v", err)
	}
	if got := env.payments.byRide[1].Status; got != payment.StatusCompleted {
		t.Fatalf("status = %s, want completed", got)
	}
}

func TestCorrectPaymentStatusUnknownRide(t *testing.T) {
	env := newAdminEnv()

	err := env.svc.CorrectPaymentStatus(context.Background(), 42, payment.StatusCompleted)
	if fault.CodeOf(err) != fault.CodeNotFound {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestCorrectPaymentStatusRejectsBadStatus(t *testing.T) {
	env := newAdminEnv()
	env.payments.byRide[1] = &payment.Payment{ID: 10, RideID: 1, Status: payment.StatusPending}

	err := env.svc.CorrectPaymentStatus(context.Background(), 1, payment.Status("settled"))
	if fault.CodeOf(err) != fault.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION", err)
	}
	if got := env.payments.byRide[1].Status; got != payment.StatusPending {
		t.Fatalf("status mutated to %s", got)
	}
}
