// Package repositories holds the store contracts the services depend on and
// their gorm-backed implementation. Every method reports ErrNotFound,
// ErrDuplicate (as *ConstraintError) or ErrStaleStatus where relevant; any
// other error is a dependency failure.
package repositories

import (
	"context"

	"hotel-ops/models"
)

type RoomRepository interface {
	Get(ctx context.Context, id string) (*models.Room, error)
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
	Insert(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, id string, update models.RoomUpdate) (*models.Room, error)
	Delete(ctx context.Context, id string) error
}

type GuestRepository interface {
	Get(ctx context.Context, id string) (*models.Guest, error)
	FindByEmail(ctx context.Context, email string) (*models.Guest, error)
	FindByCPF(ctx context.Context, cpf string) (*models.Guest, error)
	Insert(ctx context.Context, guest *models.Guest) error
	Update(ctx context.Context, id string, update models.GuestUpdate) (*models.Guest, error)
	Delete(ctx context.Context, id string) error
}

// ReservationRepository returns reservations with Guest attached; ListByStatus
// and Get also attach Room.
type ReservationRepository interface {
	Get(ctx context.Context, id string) (*models.Reservation, error)
	ListByRoom(ctx context.Context, roomID string, statuses ...models.ReservationStatus) ([]models.Reservation, error)
	ListByStatus(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error)
	ListByGuest(ctx context.Context, guestID string, statuses ...models.ReservationStatus) ([]models.Reservation, error)
	Insert(ctx context.Context, reservation *models.Reservation) error
	// UpdateStatus moves a reservation from one status to another, failing
	// with ErrStaleStatus if it is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to models.ReservationStatus) error
}

type ExpenseRepository interface {
	Insert(ctx context.Context, expense *models.Expense) error
	ListByGuest(ctx context.Context, guestID string) ([]models.Expense, error)
	ListByReservation(ctx context.Context, reservationID string) ([]models.Expense, error)
}

type StayHistoryRepository interface {
	Insert(ctx context.Context, entry *models.StayHistory) error
	List(ctx context.Context) ([]models.StayHistory, error)
	ListByGuest(ctx context.Context, guestID string) ([]models.StayHistory, error)
}

// Store bundles the repositories of one backend.
type Store interface {
	Rooms() RoomRepository
	Guests() GuestRepository
	Reservations() ReservationRepository
	Expenses() ExpenseRepository
	StayHistory() StayHistoryRepository

	// WithRoomLock runs fn while holding an exclusive lock on the room.
	// The Store handed to fn shares the lock's transaction when the backend
	// has one. Calls must not nest for the same room.
	WithRoomLock(ctx context.Context, roomID string, fn func(tx Store) error) error
}
