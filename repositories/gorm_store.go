package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-ops/models"
)

// GormStore implements Store on top of a *gorm.DB (MySQL or Postgres).
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Rooms() RoomRepository               { return &gormRoomRepo{db: s.DB} }
func (s *GormStore) Guests() GuestRepository             { return &gormGuestRepo{db: s.DB} }
func (s *GormStore) Reservations() ReservationRepository { return &gormReservationRepo{db: s.DB} }
func (s *GormStore) Expenses() ExpenseRepository         { return &gormExpenseRepo{db: s.DB} }
func (s *GormStore) StayHistory() StayHistoryRepository  { return &gormStayHistoryRepo{db: s.DB} }

// WithRoomLock opens a transaction and takes SELECT ... FOR UPDATE on the
// room row, so concurrent writers for the same room queue on the database.
func (s *GormStore) WithRoomLock(ctx context.Context, roomID string, fn func(tx Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", roomID).
			First(&room).Error
		if err != nil {
			return translateError(err)
		}
		return fn(NewGormStore(tx))
	})
}

// AutoMigrate creates or updates the schema, parents before children.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Room{},
		&models.Guest{},
		&models.Reservation{},
		&models.Expense{},
		&models.StayHistory{},
	)
}
