package repositories

import (
	"context"

	"gorm.io/gorm"

	"hotel-ops/models"
)

type gormGuestRepo struct {
	db *gorm.DB
}

func (r *gormGuestRepo) first(ctx context.Context, query string, arg interface{}) (*models.Guest, error) {
	var guest models.Guest
	if err := r.db.WithContext(ctx).Where(query, arg).First(&guest).Error; err != nil {
		return nil, translateError(err)
	}
	return &guest, nil
}

func (r *gormGuestRepo) Get(ctx context.Context, id string) (*models.Guest, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormGuestRepo) FindByEmail(ctx context.Context, email string) (*models.Guest, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *gormGuestRepo) FindByCPF(ctx context.Context, cpf string) (*models.Guest, error) {
	return r.first(ctx, "cpf = ?", cpf)
}

func (r *gormGuestRepo) Insert(ctx context.Context, guest *models.Guest) error {
	return translateError(r.db.WithContext(ctx).Create(guest).Error)
}

func (r *gormGuestRepo) Update(ctx context.Context, id string, update models.GuestUpdate) (*models.Guest, error) {
	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.Phone != nil {
		fields["phone"] = *update.Phone
	}
	if update.CPF != nil {
		fields["cpf"] = *update.CPF
	}

	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Guest{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, translateError(res.Error)
		}
	}
	return r.Get(ctx, id)
}

func (r *gormGuestRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Guest{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
