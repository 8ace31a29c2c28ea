package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotel-ops/apperrors"
	"hotel-ops/cache"
	"hotel-ops/models"
	"hotel-ops/repositories"
	"hotel-ops/repositories/memory"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	now   time.Time
	store repositories.Store
	mem   *memory.Store

	sync   *Synchronizer
	rooms  *RoomService
	res    *ReservationService
	guests *GuestService
	stats  *StatisticsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memory.NewStore()
	return newFixtureWithStore(t, mem, mem)
}

func newFixtureWithStore(t *testing.T, store repositories.Store, mem *memory.Store) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		now:   time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
		store: store,
		mem:   mem,
	}
	clock := Clock{Now: func() time.Time { return f.now }, Location: time.UTC}
	f.sync = NewSynchronizer(store, clock, time.Minute, nil)
	deps := Deps{Store: store, Cache: cache.NewMemory(), Sync: f.sync, Clock: clock}
	f.sync.OnChange(deps.withDefaults().InvalidateReadModels)

	f.rooms = NewRoomService(deps, time.Minute)
	f.res = NewReservationService(deps)
	f.guests = NewGuestService(deps)
	f.stats = NewStatisticsService(deps, time.Minute)
	return f
}

func (f *fixture) today() models.Date { return models.DateOf(f.now) }

// advance moves the clock forward by whole days.
func (f *fixture) advance(days int) { f.now = f.now.AddDate(0, 0, days) }

func (f *fixture) addRoom(number, typ string, price int64, status models.RoomStatus) *models.Room {
	f.t.Helper()
	room := &models.Room{
		ID:       uuid.NewString(),
		Number:   number,
		Type:     typ,
		Capacity: 4,
		Beds:     2,
		Price:    decimal.NewFromInt(price),
		Status:   status,
	}
	if err := f.mem.Rooms().Insert(f.ctx, room); err != nil {
		f.t.Fatalf("insert room: %v", err)
	}
	return room
}

func (f *fixture) input(roomID, name, email string, in, out int) CreateReservationInput {
	return CreateReservationInput{
		RoomID:    roomID,
		Guest:     GuestInput{Name: name, Email: email},
		CheckIn:   f.today().AddDays(in),
		CheckOut:  f.today().AddDays(out),
		NumGuests: 1,
	}
}

func (f *fixture) book(roomID, name, email string, in, out int) *models.Reservation {
	f.t.Helper()
	res, err := f.res.Create(f.ctx, f.input(roomID, name, email, in, out))
	if err != nil {
		f.t.Fatalf("create reservation for %s: %v", name, err)
	}
	return res
}

func (f *fixture) statusOf(id string) models.ReservationStatus {
	f.t.Helper()
	res, err := f.store.Reservations().Get(f.ctx, id)
	if err != nil {
		f.t.Fatalf("get reservation: %v", err)
	}
	return res.Status
}

func (f *fixture) effectiveStatus(roomID string) models.RoomStatus {
	f.t.Helper()
	room, err := f.rooms.Get(f.ctx, roomID)
	if err != nil {
		f.t.Fatalf("get room: %v", err)
	}
	return room.EffectiveStatus
}

func (f *fixture) activeCount(roomID string) int {
	f.t.Helper()
	active, err := f.store.Reservations().ListByRoom(f.ctx, roomID, models.ReservationActive)
	if err != nil {
		f.t.Fatalf("list active: %v", err)
	}
	return len(active)
}

func expectCode(t *testing.T, err error, kind apperrors.Kind, code apperrors.ErrorCode) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr, ok := apperrors.As(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Kind != kind || appErr.Code != code {
		t.Fatalf("expected %s/%s, got %s/%s (%s)", kind, code, appErr.Kind, appErr.Code, appErr.Message)
	}
	return appErr
}

// failingReservations wraps a store so reservation inserts fail.
type failingReservations struct {
	*memory.Store
}

type brokenInsert struct {
	repositories.ReservationRepository
}

var errInsertFailed = errors.New("insert failed")

func (brokenInsert) Insert(context.Context, *models.Reservation) error { return errInsertFailed }

func (s failingReservations) Reservations() repositories.ReservationRepository {
	return brokenInsert{s.Store.Reservations()}
}

func (s failingReservations) WithRoomLock(ctx context.Context, roomID string, fn func(tx repositories.Store) error) error {
	return s.Store.WithRoomLock(ctx, roomID, func(repositories.Store) error { return fn(s) })
}
