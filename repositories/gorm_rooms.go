package repositories

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hotel-ops/models"
)

type gormRoomRepo struct {
	db *gorm.DB
}

func (r *gormRoomRepo) Get(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, translateError(err)
	}
	return &room, nil
}

func (r *gormRoomRepo) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	q := r.db.WithContext(ctx).Model(&models.Room{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}

	var rooms []models.Room
	if err := q.Order("number").Find(&rooms).Error; err != nil {
		return nil, translateError(err)
	}
	return rooms, nil
}

func (r *gormRoomRepo) Insert(ctx context.Context, room *models.Room) error {
	return translateError(r.db.WithContext(ctx).Create(room).Error)
}

func (r *gormRoomRepo) Update(ctx context.Context, id string, update models.RoomUpdate) (*models.Room, error) {
	fields := map[string]interface{}{}
	if update.Number != nil {
		fields["number"] = *update.Number
	}
	if update.Type != nil {
		fields["type"] = *update.Type
	}
	if update.Capacity != nil {
		fields["capacity"] = *update.Capacity
	}
	if update.Beds != nil {
		fields["beds"] = *update.Beds
	}
	if update.Price != nil {
		fields["price"] = *update.Price
	}
	if update.Amenities != nil {
		fields["amenities"] = datatypes.JSONSlice[string](*update.Amenities)
	}
	if update.Status != nil {
		fields["status"] = *update.Status
	}

	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, translateError(res.Error)
		}
	}
	return r.Get(ctx, id)
}

func (r *gormRoomRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Room{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
