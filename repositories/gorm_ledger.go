package repositories

import (
	"context"

	"gorm.io/gorm"

	"hotel-ops/models"
)

type gormExpenseRepo struct {
	db *gorm.DB
}

func (r *gormExpenseRepo) Insert(ctx context.Context, expense *models.Expense) error {
	return translateError(r.db.WithContext(ctx).Create(expense).Error)
}

func (r *gormExpenseRepo) ListByGuest(ctx context.Context, guestID string) ([]models.Expense, error) {
	var list []models.Expense
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("created_at, id").
		Find(&list).Error
	if err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

func (r *gormExpenseRepo) ListByReservation(ctx context.Context, reservationID string) ([]models.Expense, error) {
	var list []models.Expense
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at, id").
		Find(&list).Error
	if err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

type gormStayHistoryRepo struct {
	db *gorm.DB
}

func (r *gormStayHistoryRepo) Insert(ctx context.Context, entry *models.StayHistory) error {
	return translateError(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *gormStayHistoryRepo) List(ctx context.Context) ([]models.StayHistory, error) {
	var list []models.StayHistory
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

func (r *gormStayHistoryRepo) ListByGuest(ctx context.Context, guestID string) ([]models.StayHistory, error) {
	var list []models.StayHistory
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, translateError(err)
	}
	return list, nil
}
