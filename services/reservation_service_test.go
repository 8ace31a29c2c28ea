package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"hotel-ops/apperrors"
	"hotel-ops/models"
	"hotel-ops/repositories"
	"hotel-ops/repositories/memory"
)

func TestCreateActiveReservationAndConflict(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("102", "Casal", 100, models.RoomAvailable)

	res := f.book(room.ID, "Ana", "ana@x.com", 0, 2)
	if res.Status != models.ReservationActive {
		t.Fatalf("expected active, got %s", res.Status)
	}
	if got := f.effectiveStatus(room.ID); got != models.RoomOccupied {
		t.Fatalf("expected occupied, got %s", got)
	}

	_, err := f.res.Create(f.ctx, f.input(room.ID, "Bruno", "bruno@x.com", 1, 3))
	appErr := expectCode(t, err, apperrors.KindConflict, apperrors.ErrCodeDateConflict)
	if !strings.Contains(appErr.Message, "Ana") {
		t.Fatalf("expected conflict message to name Ana, got %q", appErr.Message)
	}
	if appErr.Conflict == nil || appErr.Conflict.ReservationID != res.ID {
		t.Fatalf("expected conflict details for %s, got %+v", res.ID, appErr.Conflict)
	}
}

func TestCreateFutureReservationLeavesRoomReservable(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("102", "Casal", 100, models.RoomAvailable)

	res := f.book(room.ID, "Ana", "ana@x.com", 5, 7)
	if res.Status != models.ReservationFuture {
		t.Fatalf("expected future, got %s", res.Status)
	}
	if got := f.effectiveStatus(room.ID); got != models.RoomReserved {
		t.Fatalf("expected reserved, got %s", got)
	}

	for _, tc := range []struct {
		in, out int
		want    bool
	}{
		{10, 12, true},
		{0, 2, true},
		{6, 8, false},
	} {
		stay := models.Stay{CheckIn: f.today().AddDays(tc.in), CheckOut: f.today().AddDays(tc.out)}
		avail, err := f.rooms.Availability(f.ctx, room.ID, stay)
		if err != nil {
			t.Fatalf("availability: %v", err)
		}
		if avail.Reservable != tc.want {
			t.Fatalf("stay +%d..+%d: expected reservable=%v, got %+v", tc.in, tc.out, tc.want, avail)
		}
	}

	// Touching the existing stay is fine.
	f.book(room.ID, "Bruno", "bruno@x.com", 0, 5)
}

func TestCreateBackdatedCheckInIsActive(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)

	res := f.book(room.ID, "Carla", "carla@x.com", -1, 1)
	if res.Status != models.ReservationActive {
		t.Fatalf("expected active, got %s", res.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	closed := f.addRoom("201", "Casal", 120, models.RoomMaintenance)

	_, err := f.res.Create(f.ctx, f.input(room.ID, "Ana", "ana@x.com", 3, 3))
	expectCode(t, err, apperrors.KindValidation, apperrors.ErrCodeInvalidDates)

	_, err = f.res.Create(f.ctx, f.input(room.ID, "Ana", "ana@x.com", -5, -2))
	expectCode(t, err, apperrors.KindValidation, apperrors.ErrCodeInvalidDates)

	_, err = f.res.Create(f.ctx, f.input(room.ID, "Ana", "not-an-email", 1, 2))
	expectCode(t, err, apperrors.KindValidation, apperrors.ErrCodeValidation)

	in := f.input(room.ID, "Ana", "ana@x.com", 1, 2)
	in.NumGuests = 9
	_, err = f.res.Create(f.ctx, in)
	expectCode(t, err, apperrors.KindValidation, apperrors.ErrCodeValidation)

	_, err = f.res.Create(f.ctx, f.input(closed.ID, "Ana", "ana@x.com", 1, 2))
	expectCode(t, err, apperrors.KindConflict, apperrors.ErrCodeRoomNotBookable)

	_, err = f.res.Create(f.ctx, f.input("missing", "Ana", "ana@x.com", 1, 2))
	expectCode(t, err, apperrors.KindNotFound, apperrors.ErrCodeRoomNotFound)
}

func TestCreateReusesGuestByEmailThenCPF(t *testing.T) {
	f := newFixture(t)
	r1 := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	r2 := f.addRoom("102", "Casal", 100, models.RoomAvailable)
	r3 := f.addRoom("103", "Casal", 100, models.RoomAvailable)

	in := f.input(r1.ID, "Ana", "ANA@x.com ", 1, 2)
	in.Guest.CPF = "111"
	first, err := f.res.Create(f.ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Guest.Email != "ana@x.com" {
		t.Fatalf("expected normalized email, got %q", first.Guest.Email)
	}

	second := f.book(r2.ID, "Ana Souza", "ana@x.com", 3, 4)
	if second.GuestID != first.GuestID {
		t.Fatalf("expected same guest by email")
	}
	if second.Guest.Name != "Ana Souza" {
		t.Fatalf("expected contact refresh, got %q", second.Guest.Name)
	}

	in = f.input(r3.ID, "Ana", "ana.new@x.com", 5, 6)
	in.Guest.CPF = "111"
	third, err := f.res.Create(f.ctx, in)
	if err != nil {
		t.Fatalf("create by cpf: %v", err)
	}
	if third.GuestID != first.GuestID {
		t.Fatalf("expected same guest by cpf")
	}

	// Stay dates never live on the guest: earlier reservations keep theirs.
	got, err := f.res.Get(f.ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CheckIn.Equal(first.CheckIn) || !got.CheckOut.Equal(first.CheckOut) {
		t.Fatalf("first stay changed: %+v", got.Stay)
	}
}

func TestCreateDuplicateGuestCPF(t *testing.T) {
	f := newFixture(t)
	r1 := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	r2 := f.addRoom("102", "Casal", 100, models.RoomAvailable)

	in := f.input(r1.ID, "Ana", "ana@x.com", 1, 2)
	in.Guest.CPF = "111"
	f.mustCreate(in)
	in = f.input(r1.ID, "Bia", "bia@x.com", 3, 4)
	in.Guest.CPF = "222"
	f.mustCreate(in)

	in = f.input(r2.ID, "Ana", "ana@x.com", 1, 2)
	in.Guest.CPF = "222"
	_, err := f.res.Create(f.ctx, in)
	expectCode(t, err, apperrors.KindConflict, apperrors.ErrCodeDuplicateCPF)
}

func (f *fixture) mustCreate(in CreateReservationInput) *models.Reservation {
	f.t.Helper()
	res, err := f.res.Create(f.ctx, in)
	if err != nil {
		f.t.Fatalf("create: %v", err)
	}
	return res
}

func TestCreateRollsBackNewGuestOnInsertFailure(t *testing.T) {
	mem := memory.NewStore()
	f := newFixtureWithStore(t, failingReservations{mem}, mem)
	room := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)

	_, err := f.res.Create(f.ctx, f.input(room.ID, "Ana", "ana@x.com", 1, 2))
	if !apperrors.IsKind(err, apperrors.KindDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !errors.Is(err, errInsertFailed) {
		t.Fatalf("expected wrapped insert failure, got %v", err)
	}
	if _, err := mem.Guests().FindByEmail(f.ctx, "ana@x.com"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected guest rollback, got %v", err)
	}
}

func TestCancelFreesRoom(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	res := f.book(room.ID, "Ana", "ana@x.com", 0, 2)

	cancelled, err := f.res.Cancel(f.ctx, res.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.ReservationCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if got := f.effectiveStatus(room.ID); got != models.RoomAvailable {
		t.Fatalf("expected available, got %s", got)
	}
	f.book(room.ID, "Bruno", "bruno@x.com", 0, 2)

	_, err = f.res.Cancel(f.ctx, "missing")
	expectCode(t, err, apperrors.KindNotFound, apperrors.ErrCodeReservationNotFound)
}

func TestStatusNeverMovesBackwards(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	res := f.book(room.ID, "Ana", "ana@x.com", 0, 2)

	if _, err := f.res.CheckOut(f.ctx, res.ID); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	_, err := f.res.Cancel(f.ctx, res.ID)
	expectCode(t, err, apperrors.KindConflict, apperrors.ErrCodeIllegalTransition)
	_, err = f.res.CheckIn(f.ctx, res.ID)
	expectCode(t, err, apperrors.KindConflict, apperrors.ErrCodeIllegalTransition)

	if got := f.statusOf(res.ID); got != models.ReservationCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
}

func TestCheckInRefusedWhileRoomOccupied(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	current := f.book(room.ID, "Ana", "ana@x.com", 0, 2)
	next := f.book(room.ID, "Bruno", "bruno@x.com", 2, 4)

	_, err := f.res.CheckIn(f.ctx, next.ID)
	expectCode(t, err, apperrors.KindConflict, apperrors.ErrCodeAlreadyOccupied)
	if n := f.activeCount(room.ID); n != 1 {
		t.Fatalf("expected one active reservation, got %d", n)
	}

	if _, err := f.res.CheckOut(f.ctx, current.ID); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	checkedIn, err := f.res.CheckIn(f.ctx, next.ID)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if checkedIn.Status != models.ReservationActive {
		t.Fatalf("expected active, got %s", checkedIn.Status)
	}
}

func TestCheckOutArchivesStay(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("102", "Casal", 100, models.RoomAvailable)
	in := f.input(room.ID, "Ana", "ana@x.com", 0, 3)
	in.NumGuests = 2
	res := f.mustCreate(in)

	if _, err := f.guests.AddExpense(f.ctx, res.GuestID, AddExpenseInput{
		Description: "Frigobar",
		Value:       decimal.RequireFromString("25.50"),
	}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	total, err := f.res.PriceBreakdown(f.ctx, res.ID)
	if err != nil {
		t.Fatalf("price breakdown: %v", err)
	}
	if !total.Total.Equal(decimal.RequireFromString("625.50")) {
		t.Fatalf("expected 625.50, got %s", total.Total)
	}

	if _, err := f.res.CheckOut(f.ctx, res.ID); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	history, err := f.guests.StayHistory(f.ctx, res.GuestID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history))
	}
	h := history[0]
	if h.RoomNumber != "102" || h.GuestName != "Ana" || !h.TotalPrice.Equal(total.Total) {
		t.Fatalf("unexpected history entry %+v", h)
	}
	if len(h.Expenses) != 1 {
		t.Fatalf("expected expense snapshot, got %d", len(h.Expenses))
	}
	if got := f.effectiveStatus(room.ID); got != models.RoomAvailable {
		t.Fatalf("expected available, got %s", got)
	}
}

func TestConcurrentOverlappingCreatesBookOnce(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("102", "Casal", 100, models.RoomAvailable)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < attempts; i++ {
		// [3,6), [4,7) and [5,8) all share day 5.
		in := f.input(room.ID, fmt.Sprintf("Guest %d", i), fmt.Sprintf("guest%d@x.com", i), 3+i%3, 6+i%3)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.res.Create(f.ctx, in)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			successes++
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one booking, got %d", successes)
	}
	if len(failures) != attempts-1 {
		t.Fatalf("expected %d rejections, got %d", attempts-1, len(failures))
	}
	for _, err := range failures {
		expectCode(t, err, apperrors.KindConflict, apperrors.ErrCodeDateConflict)
	}

	stored, err := f.store.Reservations().ListByRoom(f.ctx, room.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected one stored reservation, got %d", len(stored))
	}
}

func TestReturningGuestIsNotBilledForEarlierStays(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("102", "Casal", 100, models.RoomAvailable)

	first := f.book(room.ID, "Ana", "ana@x.com", 0, 2)
	if _, err := f.guests.AddExpense(f.ctx, first.GuestID, AddExpenseInput{
		Description: "Jantar",
		Value:       decimal.NewFromInt(50),
	}); err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if _, err := f.res.CheckOut(f.ctx, first.ID); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	_, err := f.guests.AddExpense(f.ctx, first.GuestID, AddExpenseInput{
		Description: "Late charge",
		Value:       decimal.NewFromInt(10),
	})
	expectCode(t, err, apperrors.KindConflict, apperrors.ErrCodeNoActiveStay)

	f.advance(10)
	second := f.book(room.ID, "Ana", "ana@x.com", 0, 1)
	if second.GuestID != first.GuestID {
		t.Fatalf("expected guest %s to be reused, got %s", first.GuestID, second.GuestID)
	}

	total, err := f.res.PriceBreakdown(f.ctx, second.ID)
	if err != nil {
		t.Fatalf("price breakdown: %v", err)
	}
	if !total.StayPrice.Equal(decimal.NewFromInt(100)) || !total.Expenses.IsZero() || !total.Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("second stay charged for earlier expenses: %+v", total)
	}

	if _, err := f.res.CheckOut(f.ctx, second.ID); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	history, err := f.guests.StayHistory(f.ctx, first.GuestID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two history entries, got %d", len(history))
	}
	for _, h := range history {
		switch h.ReservationID {
		case first.ID:
			if !h.TotalPrice.Equal(decimal.NewFromInt(250)) || len(h.Expenses) != 1 {
				t.Fatalf("first stay: expected total 250 with one expense, got %s with %d", h.TotalPrice, len(h.Expenses))
			}
		case second.ID:
			if !h.TotalPrice.Equal(decimal.NewFromInt(100)) || len(h.Expenses) != 0 {
				t.Fatalf("second stay: expected total 100 without expenses, got %s with %d", h.TotalPrice, len(h.Expenses))
			}
		default:
			t.Fatalf("unexpected history entry %s", h.ReservationID)
		}
	}
}

func TestListFutureOrderedByCheckIn(t *testing.T) {
	f := newFixture(t)
	r1 := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	r2 := f.addRoom("102", "Casal", 100, models.RoomAvailable)
	late := f.book(r1.ID, "Ana", "ana@x.com", 8, 9)
	early := f.book(r2.ID, "Bruno", "bruno@x.com", 2, 3)
	f.book(r2.ID, "Carla", "carla@x.com", 0, 1)

	list, err := f.res.ListFuture(f.ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != early.ID || list[1].ID != late.ID {
		t.Fatalf("unexpected future list %+v", list)
	}
}
