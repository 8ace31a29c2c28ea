package models

import (
	"time"
)

type Reservation struct {
	ID      string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RoomID  string `gorm:"column:room_id;type:varchar(36);index;not null" json:"roomId"`
	GuestID string `gorm:"column:guest_id;type:varchar(36);index;not null" json:"guestId"`

	Stay
	NumGuests int               `gorm:"column:num_guests;not null" json:"numGuests"`
	Status    ReservationStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Room  *Room  `gorm:"foreignKey:RoomID;references:ID;constraint:OnDelete:RESTRICT" json:"room,omitempty"`
	Guest *Guest `gorm:"foreignKey:GuestID;references:ID;constraint:OnDelete:RESTRICT" json:"guest,omitempty"`
}

// GuestName is empty when the guest was not loaded.
func (r Reservation) GuestName() string {
	if r.Guest == nil {
		return ""
	}
	return r.Guest.Name
}

// ConflictResult is the outcome of checking a stay against a room's open reservations.
type ConflictResult struct {
	HasConflict   bool   `json:"hasConflict"`
	ReservationID string `json:"reservationId,omitempty"`
	GuestName     string `json:"guestName,omitempty"`
	Range         *Stay  `json:"range,omitempty"`
}

// RoomAvailability answers whether a room can take a candidate stay.
type RoomAvailability struct {
	RoomID          string         `json:"roomId"`
	EffectiveStatus RoomStatus     `json:"effectiveStatus"`
	Reservable      bool           `json:"reservable"`
	Conflict        ConflictResult `json:"conflict"`
}
