package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-ops/models"
)

type gormReservationRepo struct {
	db *gorm.DB
}

func (r *gormReservationRepo) Get(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Guest").
		Preload("Room").
		Where("id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &res, nil
}

func (r *gormReservationRepo) ListByRoom(ctx context.Context, roomID string, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	q := r.db.WithContext(ctx).Preload("Guest").Where("room_id = ?", roomID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var list []models.Reservation
	if err := q.Order("check_in").Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

func (r *gormReservationRepo) ListByStatus(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	q := r.db.WithContext(ctx).Preload("Guest").Preload("Room")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var list []models.Reservation
	if err := q.Order("check_in").Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

func (r *gormReservationRepo) ListByGuest(ctx context.Context, guestID string, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	q := r.db.WithContext(ctx).Preload("Guest").Preload("Room").Where("guest_id = ?", guestID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var list []models.Reservation
	if err := q.Order("check_in").Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

func (r *gormReservationRepo) Insert(ctx context.Context, reservation *models.Reservation) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(reservation).Error
	return translateError(err)
}

func (r *gormReservationRepo) UpdateStatus(ctx context.Context, id string, from, to models.ReservationStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Reservation{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStaleStatus
}

// IsStale reports whether err means a concurrent writer won a status update.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleStatus)
}
