package models

import (
	"errors"
	"testing"
	"time"
)

func TestReservationTransitions(t *testing.T) {
	all := []ReservationStatus{ReservationFuture, ReservationActive, ReservationCompleted, ReservationCancelled}
	allowed := map[ReservationStatus][]ReservationStatus{
		ReservationFuture: {ReservationActive, ReservationCompleted, ReservationCancelled},
		ReservationActive: {ReservationCompleted, ReservationCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Fatalf("%s -> %s: expected %v, got %v", from, to, want, got)
			}
		}
	}
}

func TestTransitionNeverMovesBackwards(t *testing.T) {
	if _, err := ReservationActive.Transition(ReservationFuture); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	for _, terminal := range []ReservationStatus{ReservationCompleted, ReservationCancelled} {
		if _, err := terminal.Transition(ReservationActive); err == nil {
			t.Fatalf("expected %s to be terminal", terminal)
		}
	}
}

func TestInitialReservationStatus(t *testing.T) {
	today := NewDate(2025, time.June, 10)
	if s := InitialReservationStatus(today, today); s != ReservationActive {
		t.Fatalf("check-in today: expected active, got %s", s)
	}
	if s := InitialReservationStatus(today.AddDays(-1), today); s != ReservationActive {
		t.Fatalf("backdated check-in: expected active, got %s", s)
	}
	if s := InitialReservationStatus(today.AddDays(1), today); s != ReservationFuture {
		t.Fatalf("check-in tomorrow: expected future, got %s", s)
	}
}

func TestDeriveEffectiveStatus(t *testing.T) {
	active := Reservation{Status: ReservationActive}
	future := Reservation{Status: ReservationFuture}
	done := Reservation{Status: ReservationCompleted}

	tests := []struct {
		name   string
		stored RoomStatus
		res    []Reservation
		want   RoomStatus
	}{
		{"no reservations", RoomAvailable, nil, RoomAvailable},
		{"active wins", RoomAvailable, []Reservation{future, active}, RoomOccupied},
		{"future only", RoomAvailable, []Reservation{future}, RoomReserved},
		{"closed ignored", RoomAvailable, []Reservation{done}, RoomAvailable},
		{"maintenance kept with future", RoomMaintenance, []Reservation{future}, RoomMaintenance},
		{"cleaning kept", RoomCleaning, nil, RoomCleaning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := DeriveEffectiveStatus(tt.stored, tt.res)
			second := DeriveEffectiveStatus(tt.stored, tt.res)
			if first != tt.want || second != tt.want {
				t.Fatalf("expected %s twice, got %s and %s", tt.want, first, second)
			}
		})
	}
}

func TestRoomStatusStorable(t *testing.T) {
	for _, s := range []RoomStatus{RoomAvailable, RoomMaintenance, RoomCleaning} {
		if !s.Storable() {
			t.Fatalf("expected %s to be storable", s)
		}
	}
	for _, s := range []RoomStatus{RoomOccupied, RoomReserved} {
		if s.Storable() {
			t.Fatalf("expected %s to be derived only", s)
		}
	}
	if _, err := ParseRoomStatus("broken"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if s, err := ParseRoomStatus(" Maintenance "); err != nil || s != RoomMaintenance {
		t.Fatalf("expected maintenance, got %q (%v)", s, err)
	}
}
