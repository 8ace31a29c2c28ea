package models

import (
	"time"
)

// Guest is identity and contact data only; stay dates live on Reservation.
type Guest struct {
	ID    string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name  string  `gorm:"type:varchar(150);not null" json:"name"`
	Email string  `gorm:"type:varchar(150);uniqueIndex:guests_email_key;not null" json:"email"`
	Phone string  `gorm:"type:varchar(30)" json:"phone,omitempty"`
	CPF   *string `gorm:"column:cpf;type:varchar(14);uniqueIndex:guests_cpf_key" json:"cpf,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GuestUpdate carries contact changes applied on upsert.
type GuestUpdate struct {
	Name  *string
	Email *string
	Phone *string
	CPF   *string
}

func (u GuestUpdate) Apply(g *Guest) {
	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Email != nil {
		g.Email = *u.Email
	}
	if u.Phone != nil {
		g.Phone = *u.Phone
	}
	if u.CPF != nil {
		cpf := *u.CPF
		g.CPF = &cpf
	}
}
