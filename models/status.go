package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrIllegalTransition = errors.New("illegal reservation status transition")
)

// ----------------------------------------------------
// Room status
// ----------------------------------------------------

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomCleaning    RoomStatus = "cleaning"
	RoomReserved    RoomStatus = "reserved"
)

func ParseRoomStatus(s string) (RoomStatus, error) {
	st := RoomStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: room status %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomCleaning, RoomReserved:
		return true
	}
	return false
}

// Storable reports whether s may be persisted on a room. Occupied and reserved
// are always derived from the reservation set.
func (s RoomStatus) Storable() bool {
	switch s {
	case RoomAvailable, RoomMaintenance, RoomCleaning:
		return true
	case RoomOccupied, RoomReserved:
		return false
	}
	return false
}

// OutOfService is true for housekeeping states that block any new reservation.
func (s RoomStatus) OutOfService() bool {
	return s == RoomMaintenance || s == RoomCleaning
}

// ----------------------------------------------------
// Reservation status
// ----------------------------------------------------

type ReservationStatus string

const (
	ReservationFuture    ReservationStatus = "future"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// OpenReservationStatuses are the statuses that hold a room.
var OpenReservationStatuses = []ReservationStatus{ReservationActive, ReservationFuture}

func ParseReservationStatus(s string) (ReservationStatus, error) {
	st := ReservationStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: reservation status %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationFuture, ReservationActive, ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}

func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

func (s ReservationStatus) IsOpen() bool {
	return s == ReservationFuture || s == ReservationActive
}

// CanTransitionTo is the single authority on reservation status moves.
// A future reservation may jump straight to completed when its whole stay
// has elapsed before anyone activated it.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case ReservationFuture:
		return next == ReservationActive || next == ReservationCompleted || next == ReservationCancelled
	case ReservationActive:
		return next == ReservationCompleted || next == ReservationCancelled
	case ReservationCompleted, ReservationCancelled:
		return false
	}
	return false
}

// Transition validates a move and returns the new status.
func (s ReservationStatus) Transition(next ReservationStatus) (ReservationStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s, next)
	}
	return next, nil
}

// InitialReservationStatus is active when the stay has already started.
func InitialReservationStatus(checkIn, today Date) ReservationStatus {
	if checkIn.After(today) {
		return ReservationFuture
	}
	return ReservationActive
}

// ----------------------------------------------------
// Effective status
// ----------------------------------------------------

// DeriveEffectiveStatus overlays the room's open reservations on its stored
// status. Closed reservations are ignored.
func DeriveEffectiveStatus(stored RoomStatus, reservations []Reservation) RoomStatus {
	hasFuture := false
	for _, r := range reservations {
		switch r.Status {
		case ReservationActive:
			return RoomOccupied
		case ReservationFuture:
			hasFuture = true
		}
	}
	if hasFuture && stored == RoomAvailable {
		return RoomReserved
	}
	return stored
}
