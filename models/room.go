package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Room struct {
	ID        string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Number    string                      `gorm:"column:number;uniqueIndex;type:varchar(20);not null" json:"number"`
	Type      string                      `gorm:"column:type;type:varchar(50);index" json:"type"`
	Capacity  int                         `gorm:"column:capacity;not null" json:"capacity"`
	Beds      int                         `gorm:"column:beds;not null" json:"beds"`
	Price     decimal.Decimal             `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Amenities datatypes.JSONSlice[string] `gorm:"column:amenities" json:"amenities"`
	Status    RoomStatus                  `gorm:"column:status;type:varchar(20);index;not null" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Filled on reads from the reservation set, never persisted.
	EffectiveStatus RoomStatus `gorm:"-" json:"effectiveStatus,omitempty"`
}

// RoomFilter narrows room listings. Zero values mean "any".
type RoomFilter struct {
	Type     string
	Status   RoomStatus
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// RoomUpdate carries a partial room edit; nil fields are left untouched.
type RoomUpdate struct {
	Number    *string
	Type      *string
	Capacity  *int
	Beds      *int
	Price     *decimal.Decimal
	Amenities *[]string
	Status    *RoomStatus
}

func (u RoomUpdate) Empty() bool {
	return u.Number == nil && u.Type == nil && u.Capacity == nil && u.Beds == nil &&
		u.Price == nil && u.Amenities == nil && u.Status == nil
}

// Apply copies the set fields of u onto r.
func (u RoomUpdate) Apply(r *Room) {
	if u.Number != nil {
		r.Number = *u.Number
	}
	if u.Type != nil {
		r.Type = *u.Type
	}
	if u.Capacity != nil {
		r.Capacity = *u.Capacity
	}
	if u.Beds != nil {
		r.Beds = *u.Beds
	}
	if u.Price != nil {
		r.Price = *u.Price
	}
	if u.Amenities != nil {
		r.Amenities = append(datatypes.JSONSlice[string]{}, (*u.Amenities)...)
	}
	if u.Status != nil {
		r.Status = *u.Status
	}
}
