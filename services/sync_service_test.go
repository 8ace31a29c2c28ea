package services

import (
	"testing"

	"hotel-ops/models"
)

func TestSyncCompletesElapsedFutureReservation(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	res := f.book(room.ID, "Ana", "ana@x.com", 1, 3)

	f.advance(5)
	report, err := f.sync.Run(f.ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Completed != 1 || report.Activated != 0 {
		t.Fatalf("expected one completion, got %+v", report)
	}
	if got := f.statusOf(res.ID); got != models.ReservationCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
	if got := f.effectiveStatus(room.ID); got != models.RoomAvailable {
		t.Fatalf("expected available, got %s", got)
	}
}

func TestSyncActivatesDueReservation(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	res := f.book(room.ID, "Ana", "ana@x.com", 1, 3)

	f.advance(1)
	report, err := f.sync.Run(f.ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Activated != 1 {
		t.Fatalf("expected one activation, got %+v", report)
	}
	if got := f.statusOf(res.ID); got != models.ReservationActive {
		t.Fatalf("expected active, got %s", got)
	}
	if got := f.effectiveStatus(room.ID); got != models.RoomOccupied {
		t.Fatalf("expected occupied, got %s", got)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	r1 := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	r2 := f.addRoom("102", "Casal", 100, models.RoomAvailable)
	a := f.book(r1.ID, "Ana", "ana@x.com", 1, 2)
	b := f.book(r2.ID, "Bruno", "bruno@x.com", 1, 6)
	c := f.book(r2.ID, "Carla", "carla@x.com", 8, 9)

	f.advance(3)
	if _, err := f.sync.Run(f.ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	snapshot := map[string]models.ReservationStatus{}
	for _, id := range []string{a.ID, b.ID, c.ID} {
		snapshot[id] = f.statusOf(id)
	}

	report, err := f.sync.Run(f.ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Activated != 0 || report.Completed != 0 || report.Failed != 0 {
		t.Fatalf("expected no changes on second run, got %+v", report)
	}
	for id, want := range snapshot {
		if got := f.statusOf(id); got != want {
			t.Fatalf("reservation %s moved from %s to %s", id, want, got)
		}
	}
}

func TestSyncNeverCreatesSecondActive(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)
	current := f.book(room.ID, "Ana", "ana@x.com", 0, 2)
	next := f.book(room.ID, "Bruno", "bruno@x.com", 2, 4)

	// Ana overstays: nobody checked her out.
	f.advance(2)
	report, err := f.sync.Run(f.ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Failed != 1 || report.Activated != 0 {
		t.Fatalf("expected the activation to be refused, got %+v", report)
	}
	if n := f.activeCount(room.ID); n != 1 {
		t.Fatalf("expected one active reservation, got %d", n)
	}

	if _, err := f.res.CheckOut(f.ctx, current.ID); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := f.sync.Run(f.ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := f.statusOf(next.ID); got != models.ReservationActive {
		t.Fatalf("expected active after checkout, got %s", got)
	}
}

func TestRunIfStaleDebounces(t *testing.T) {
	f := newFixture(t)

	first, err := f.sync.RunIfStale(f.ctx)
	if err != nil || first.Skipped {
		t.Fatalf("expected first run to execute, got %+v (%v)", first, err)
	}
	second, err := f.sync.RunIfStale(f.ctx)
	if err != nil || !second.Skipped {
		t.Fatalf("expected debounce skip, got %+v (%v)", second, err)
	}

	f.now = f.now.Add(2 * DefaultSyncDebounce)
	third, err := f.sync.RunIfStale(f.ctx)
	if err != nil || third.Skipped {
		t.Fatalf("expected run after debounce window, got %+v (%v)", third, err)
	}
	if !f.sync.LastRun().Equal(f.now) {
		t.Fatalf("expected last run %s, got %s", f.now, f.sync.LastRun())
	}
}

func TestSyncSkipsWhileRunning(t *testing.T) {
	f := newFixture(t)
	f.sync.running.Store(true)
	report, err := f.sync.Run(f.ctx)
	if err != nil || !report.Skipped {
		t.Fatalf("expected skipped run, got %+v (%v)", report, err)
	}
}

func TestDueStatus(t *testing.T) {
	today := models.NewDate(2025, 3, 10)
	stay := models.Stay{CheckIn: today.AddDays(-1), CheckOut: today.AddDays(1)}
	if st, due := dueStatus(stay, today); !due || st != models.ReservationActive {
		t.Fatalf("expected active, got %s/%v", st, due)
	}
	if st, due := dueStatus(stay, today.AddDays(1)); !due || st != models.ReservationCompleted {
		t.Fatalf("expected completed on check-out day, got %s/%v", st, due)
	}
	if _, due := dueStatus(stay, today.AddDays(-2)); due {
		t.Fatalf("expected no move before check-in")
	}
}
