package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/payment"
	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/domain/vehicle"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// memStore is a mutex-guarded in-memory stand-in for the SQL store. Guarded
// repository writes check and mutate under one lock, which gives them the
// same winner-picking behavior as the conditional UPDATEs they fake.
type memStore struct {
	mu sync.Mutex

	rides      map[int64]*ride.Ride
	passengers map[int64]*ride.Passenger
	users      map[int64]*user.User
	vehicles   map[int64]*vehicle.Vehicle
	payments   map[int64]*payment.Payment
	ratings    map[int64]*rating.Rating // keyed by ride ID
	userLocks  map[int64]*sync.Mutex    // per-user row locks, see LockByID

	nextRideID      int64
	nextPassengerID int64
	nextVehicleID   int64
	nextPaymentID   int64
	nextRatingID    int64
}

func newMemStore() *memStore {
	return &memStore{
		rides:      map[int64]*ride.Ride{},
		passengers: map[int64]*ride.Passenger{},
		users:      map[int64]*user.User{},
		vehicles:   map[int64]*vehicle.Vehicle{},
		payments:   map[int64]*payment.Payment{},
		ratings:    map[int64]*rating.Rating{},
		userLocks:  map[int64]*sync.Mutex{},
	}
}

func (s *memStore) addUser(id int64, role user.Role) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user.User{ID: id, Name: "user", Role: role}
	if role == user.RoleDriver {
		u.DriverStatus = user.DriverAvailable
	}
	s.users[id] = u
	return u
}

func (s *memStore) addVehicle(driverID int64, capacity int) *vehicle.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextVehicleID++
	v := &vehicle.Vehicle{
		ID: s.nextVehicleID, DriverID: driverID,
		Make: "Toyota", Model: "Prius", Year: 2020, Color: "white",
		LicensePlate: "TEST", Class: ride.ClassEconomy, Capacity: capacity,
	}
	s.vehicles[v.ID] = v
	return v
}

func (s *memStore) driverStatus(id int64) user.DriverStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].DriverStatus
}

func (s *memStore) paymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

func cloneRide(r *ride.Ride) *ride.Ride {
	c := *r
	return &c
}

func clonePassenger(p *ride.Passenger) *ride.Passenger {
	c := *p
	return &c
}

// ----- unit of work -----

// rowLocks tracks the per-user locks a unit of work acquired via LockByID.
// They release when the unit of work finishes, mirroring FOR UPDATE holding
// a row lock until commit or rollback.
type rowLocks struct{ held []*sync.Mutex }

type rowLocksKey struct{}

type fakeUoW struct{}

func (fakeUoW) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(rowLocksKey{}).(*rowLocks); ok {
		return fn(ctx)
	}
	locks := &rowLocks{}
	err := fn(context.WithValue(ctx, rowLocksKey{}, locks))
	for i := len(locks.held) - 1; i >= 0; i-- {
		locks.held[i].Unlock()
	}
	return err
}

// ----- ride repo -----

type fakeRideRepo struct{ s *memStore }

func (r *fakeRideRepo) Create(ctx context.Context, rd *ride.Ride) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextRideID++
	rd.ID = r.s.nextRideID
	r.s.rides[rd.ID] = cloneRide(rd)
	return nil
}

func (r *fakeRideRepo) GetByID(ctx context.Context, id int64) (*ride.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rd, ok := r.s.rides[id]
	if !ok {
		return nil, nil
	}
	return cloneRide(rd), nil
}

func (r *fakeRideRepo) ActiveByRider(ctx context.Context, riderID int64) (*ride.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rd := range r.s.rides {
		if rd.RiderID == riderID && rd.Status.Active() {
			return cloneRide(rd), nil
		}
	}
	return nil, nil
}

func (r *fakeRideRepo) ActiveByDriver(ctx context.Context, driverID int64) (*ride.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rd := range r.s.rides {
		if rd.DriverID != nil && *rd.DriverID == driverID && rd.Status.ActiveForDriver() {
			return cloneRide(rd), nil
		}
	}
	return nil, nil
}

func (r *fakeRideRepo) Accept(ctx context.Context, rideID, driverID, vehicleID int64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rd, ok := r.s.rides[rideID]
	if !ok || rd.Status != ride.StatusSearching || rd.DriverID != nil {
		return false, nil
	}
	rd.DriverID = &driverID
	rd.VehicleID = &vehicleID
	rd.Status = ride.StatusAccepted
	rd.AcceptedAt = &at
	return true, nil
}

func (r *fakeRideRepo) AdvanceStatus(ctx context.Context, rideID int64, from, to ride.Status, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rd, ok := r.s.rides[rideID]
	if !ok || rd.Status != from || !from.CanTransitionTo(to) {
		return false, nil
	}
	rd.Status = to
	switch to {
	case ride.StatusInProgress:
		if rd.StartedAt == nil {
			rd.StartedAt = &at
		}
	case ride.StatusCompleted:
		if rd.CompletedAt == nil {
			rd.CompletedAt = &at
		}
	}
	return true, nil
}

func (r *fakeRideRepo) Complete(ctx context.Context, rideID, actualFare int64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rd, ok := r.s.rides[rideID]
	if !ok || rd.Status != ride.StatusInProgress {
		return false, nil
	}
	rd.Status = ride.StatusCompleted
	rd.ActualFare = &actualFare
	if rd.CompletedAt == nil {
		rd.CompletedAt = &at
	}
	return true, nil
}

func (r *fakeRideRepo) Cancel(ctx context.Context, rideID int64, actor ride.CancelActor, reason string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rd, ok := r.s.rides[rideID]
	if !ok || rd.Status.Terminal() {
		return false, nil
	}
	rd.Status = ride.StatusCancelled
	rd.CancelledBy = &actor
	if reason != "" {
		rd.CancellationReason = &reason
	}
	rd.CancelledAt = &at
	return true, nil
}

func (r *fakeRideRepo) AddPassengerSeat(ctx context.Context, rideID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rd, ok := r.s.rides[rideID]
	if !ok || !rd.IsShared || rd.CurrentPassengers >= rd.MaxPassengers {
		return false, nil
	}
	if rd.Status != ride.StatusSearching && rd.Status != ride.StatusAccepted {
		return false, nil
	}
	rd.CurrentPassengers++
	return true, nil
}

func (r *fakeRideRepo) SetRefund(ctx context.Context, rideID, amount int64, status ride.RefundStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rd, ok := r.s.rides[rideID]
	if !ok || rd.Status != ride.StatusCancelled {
		return false, nil
	}
	rd.RefundAmount = &amount
	rd.RefundStatus = &status
	return true, nil
}

func (r *fakeRideRepo) ListOpenShared(ctx context.Context, class ride.VehicleClass) ([]*ride.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*ride.Ride
	for _, rd := range r.s.rides {
		if rd.IsShared && rd.VehicleClass == class && rd.Joinable() {
			out = append(out, cloneRide(rd))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (r *fakeRideRepo) ListPending(ctx context.Context) ([]*ride.Ride, error) {
	return r.listWhere(func(rd *ride.Ride) bool { return rd.Status == ride.StatusSearching })
}

func (r *fakeRideRepo) ListActive(ctx context.Context) ([]*ride.Ride, error) {
	return r.listWhere(func(rd *ride.Ride) bool { return rd.Status.Active() })
}

func (r *fakeRideRepo) ListByRider(ctx context.Context, riderID int64) ([]*ride.Ride, error) {
	return r.listWhere(func(rd *ride.Ride) bool { return rd.RiderID == riderID })
}

func (r *fakeRideRepo) ListByDriver(ctx context.Context, driverID int64) ([]*ride.Ride, error) {
	return r.listWhere(func(rd *ride.Ride) bool { return rd.DriverID != nil && *rd.DriverID == driverID })
}

func (r *fakeRideRepo) ListAll(ctx context.Context) ([]*ride.Ride, error) {
	return r.listWhere(func(*ride.Ride) bool { return true })
}

func (r *fakeRideRepo) ListCancelled(ctx context.Context, by *ride.CancelActor, refund *ride.RefundStatus) ([]*ride.Ride, error) {
	return r.listWhere(func(rd *ride.Ride) bool {
		if rd.Status != ride.StatusCancelled {
			return false
		}
		if by != nil && (rd.CancelledBy == nil || *rd.CancelledBy != *by) {
			return false
		}
		if refund != nil && (rd.RefundStatus == nil || *rd.RefundStatus != *refund) {
			return false
		}
		return true
	})
}

func (r *fakeRideRepo) listWhere(keep func(*ride.Ride) bool) ([]*ride.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*ride.Ride
	for _, rd := range r.s.rides {
		if keep(rd) {
			out = append(out, cloneRide(rd))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- passenger repo -----

type fakePassengerRepo struct{ s *memStore }

func (r *fakePassengerRepo) Add(ctx context.Context, p *ride.Passenger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextPassengerID++
	p.ID = r.s.nextPassengerID
	r.s.passengers[p.ID] = clonePassenger(p)
	return nil
}

func (r *fakePassengerRepo) GetByID(ctx context.Context, id int64) (*ride.Passenger, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.passengers[id]
	if !ok {
		return nil, nil
	}
	return clonePassenger(p), nil
}

func (r *fakePassengerRepo) ListByRide(ctx context.Context, rideID int64) ([]*ride.Passenger, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*ride.Passenger
	for _, p := range r.s.passengers {
		if p.RideID == rideID {
			out = append(out, clonePassenger(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePassengerRepo) AdvanceStatus(ctx context.Context, id int64, from, to ride.PassengerStatus, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.passengers[id]
	if !ok || p.Status != from || !from.CanTransitionTo(to) {
		return false, nil
	}
	p.Status = to
	switch to {
	case ride.PassengerPickedUp:
		if p.PickedUpAt == nil {
			p.PickedUpAt = &at
		}
	case ride.PassengerDroppedOff:
		if p.DroppedOffAt == nil {
			p.DroppedOffAt = &at
		}
	}
	return true, nil
}

// ----- user repo -----

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) LockByID(ctx context.Context, id int64) (*user.User, error) {
	r.s.mu.Lock()
	m, ok := r.s.userLocks[id]
	if !ok {
		m = &sync.Mutex{}
		r.s.userLocks[id] = m
	}
	r.s.mu.Unlock()

	m.Lock()
	if locks, ok := ctx.Value(rowLocksKey{}).(*rowLocks); ok {
		locks.held = append(locks.held, m)
	} else {
		m.Unlock()
	}
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) ListAll(ctx context.Context) ([]*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*user.User
	for _, u := range r.s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id int64, role user.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[id].Role = role
	return nil
}

func (r *fakeUserRepo) UpdateDriverStatus(ctx context.Context, id int64, status user.DriverStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[id].DriverStatus = status
	return nil
}

func (r *fakeUserRepo) UpdateDriverLocation(ctx context.Context, id int64, p geo.Point, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := r.s.users[id]
	u.CurrentLocation = &p
	u.LastLocationUpdate = &at
	return nil
}

func (r *fakeUserRepo) SetVerified(ctx context.Context, id int64, verified bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[id].IsVerified = verified
	return nil
}

func (r *fakeUserRepo) SetAverageRating(ctx context.Context, id int64, scaled int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[id].AverageRating = scaled
	return nil
}

func (r *fakeUserRepo) IncrementTotalRides(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[id].TotalRides++
	return nil
}

func (r *fakeUserRepo) ListAvailableDrivers(ctx context.Context, updatedSince time.Time) ([]*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*user.User
	for _, u := range r.s.users {
		if u.Role != user.RoleDriver || u.DriverStatus != user.DriverAvailable {
			continue
		}
		if u.LastLocationUpdate == nil || u.LastLocationUpdate.Before(updatedSince) {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- vehicle repo -----

type fakeVehicleRepo struct{ s *memStore }

func (r *fakeVehicleRepo) Create(ctx context.Context, v *vehicle.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextVehicleID++
	v.ID = r.s.nextVehicleID
	c := *v
	r.s.vehicles[v.ID] = &c
	return nil
}

func (r *fakeVehicleRepo) GetByID(ctx context.Context, id int64) (*vehicle.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vehicles[id]
	if !ok {
		return nil, nil
	}
	c := *v
	return &c, nil
}

func (r *fakeVehicleRepo) ListByDriver(ctx context.Context, driverID int64) ([]*vehicle.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*vehicle.Vehicle
	for _, v := range r.s.vehicles {
		if v.DriverID == driverID {
			c := *v
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeVehicleRepo) Update(ctx context.Context, v *vehicle.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *v
	r.s.vehicles[v.ID] = &c
	return nil
}

func (r *fakeVehicleRepo) Delete(ctx context.Context, id, driverID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vehicles[id]
	if !ok || v.DriverID != driverID {
		return false, nil
	}
	delete(r.s.vehicles, id)
	return true, nil
}

// ----- payment repo -----

type fakePaymentRepo struct{ s *memStore }

func (r *fakePaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextPaymentID++
	p.ID = r.s.nextPaymentID
	c := *p
	r.s.payments[p.ID] = &c
	return nil
}

func (r *fakePaymentRepo) GetByRide(ctx context.Context, rideID int64) (*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.RideID == rideID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) ListCompletedByDriver(ctx context.Context, driverID int64) ([]*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*payment.Payment
	for _, p := range r.s.payments {
		if p.DriverID == driverID && p.Status == payment.StatusCompleted {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePaymentRepo) UpdateStatus(ctx context.Context, id int64, status payment.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.payments[id]; ok {
		p.Status = status
	}
	return nil
}

// ----- rating repo -----

type fakeRatingRepo struct{ s *memStore }

func (r *fakeRatingRepo) GetByRide(ctx context.Context, rideID int64) (*rating.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.ratings[rideID]
	if !ok {
		return nil, nil
	}
	c := *rt
	return &c, nil
}

func (r *fakeRatingRepo) UpsertRiderToDriver(ctx context.Context, rideID int64, score int, comment string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.ratings[rideID]
	if !ok {
		r.s.nextRatingID++
		rt = &rating.Rating{ID: r.s.nextRatingID, RideID: rideID}
		r.s.ratings[rideID] = rt
	}
	rt.RiderToDriverRating = &score
	rt.RiderToDriverComment = &comment
	return nil
}

func (r *fakeRatingRepo) UpsertDriverToRider(ctx context.Context, rideID int64, score int, comment string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.ratings[rideID]
	if !ok {
		r.s.nextRatingID++
		rt = &rating.Rating{ID: r.s.nextRatingID, RideID: rideID}
		r.s.ratings[rideID] = rt
	}
	rt.DriverToRiderRating = &score
	rt.DriverToRiderComment = &comment
	return nil
}

func (r *fakeRatingRepo) RiderToDriverScores(ctx context.Context, driverID int64) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var scores []int
	for rideID, rt := range r.s.ratings {
		if rt.RiderToDriverRating == nil {
			continue
		}
		rd, ok := r.s.rides[rideID]
		if !ok || rd.Status != ride.StatusCompleted || rd.DriverID == nil || *rd.DriverID != driverID {
			continue
		}
		scores = append(scores, *rt.RiderToDriverRating)
	}
	return scores, nil
}

// ----- relay -----

type publishedEvent struct {
	topic   string
	payload any
}

type fakeRelay struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *fakeRelay) Publish(ctx context.Context, topic string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{topic: topic, payload: payload})
	return nil
}

func (r *fakeRelay) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.topic
	}
	return out
}

// ----- clock -----

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ----- harness -----

type testEnv struct {
	svc   ports.RideService
	store *memStore
	relay *fakeRelay
	now   time.Time
}

func newTestEnv() *testEnv {
	store := newMemStore()
	rel := &fakeRelay{}
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	svc := NewRideService(
		logger.New("ride-service-test"),
		fakeUoW{},
		&fakeRideRepo{s: store},
		&fakePassengerRepo{s: store},
		&fakeUserRepo{s: store},
		&fakeVehicleRepo{s: store},
		&fakePaymentRepo{s: store},
		&fakeRatingRepo{s: store},
		rel,
		fixedClock{t: now},
	)
	return &testEnv{svc: svc, store: store, relay: rel, now: now}
}
