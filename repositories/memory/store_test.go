package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hotel-ops/models"
	"hotel-ops/repositories"
)

func seed(t *testing.T) (*Store, models.Room, models.Guest) {
	t.Helper()
	ctx := context.Background()
	s := NewStore()
	room := models.Room{ID: "room-1", Number: "101", Type: "Casal", Capacity: 2, Price: decimal.NewFromInt(100), Status: models.RoomAvailable}
	if err := s.Rooms().Insert(ctx, &room); err != nil {
		t.Fatalf("insert room: %v", err)
	}
	guest := models.Guest{ID: "guest-1", Name: "Ana", Email: "ana@x.com"}
	if err := s.Guests().Insert(ctx, &guest); err != nil {
		t.Fatalf("insert guest: %v", err)
	}
	return s, room, guest
}

func TestUpdateStatusIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s, room, guest := seed(t)
	today := models.NewDate(2025, time.March, 10)
	res := models.Reservation{
		ID: "res-1", RoomID: room.ID, GuestID: guest.ID, NumGuests: 1,
		Stay:   models.Stay{CheckIn: today, CheckOut: today.AddDays(2)},
		Status: models.ReservationFuture,
	}
	if err := s.Reservations().Insert(ctx, &res); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.Reservations().UpdateStatus(ctx, res.ID, models.ReservationFuture, models.ReservationActive); err != nil {
		t.Fatalf("update: %v", err)
	}
	err := s.Reservations().UpdateStatus(ctx, res.ID, models.ReservationFuture, models.ReservationCancelled)
	if !errors.Is(err, repositories.ErrStaleStatus) {
		t.Fatalf("expected ErrStaleStatus, got %v", err)
	}
	if err := s.Reservations().UpdateStatus(ctx, "missing", models.ReservationFuture, models.ReservationActive); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err := s.Reservations().Get(ctx, res.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.ReservationActive || got.Guest == nil || got.Room == nil {
		t.Fatalf("unexpected reservation %+v", got)
	}
}

func TestGuestUniqueness(t *testing.T) {
	ctx := context.Background()
	s, _, _ := seed(t)

	dup := models.Guest{ID: "guest-2", Name: "Other", Email: "ANA@x.com"}
	err := s.Guests().Insert(ctx, &dup)
	if field, ok := repositories.DuplicateField(err); !ok || field != "email" {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	found, err := s.Guests().FindByEmail(ctx, "Ana@X.com")
	if err != nil || found.ID != "guest-1" {
		t.Fatalf("expected case-insensitive match, got %v (%v)", found, err)
	}
}

func TestRoomLockSerializes(t *testing.T) {
	ctx := context.Background()
	s, room, _ := seed(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithRoomLock(ctx, room.ID, func(repositories.Store) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("expected exclusive access, saw %d holders", maxSeen)
	}

	if err := s.WithRoomLock(ctx, "missing", func(repositories.Store) error { return nil }); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown room, got %v", err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	s, room, _ := seed(t)

	got, err := s.Rooms().Get(ctx, room.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Status = models.RoomMaintenance

	again, _ := s.Rooms().Get(ctx, room.ID)
	if again.Status != models.RoomAvailable {
		t.Fatalf("store mutated through returned room")
	}
}
