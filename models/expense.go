package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an extra charged to one stay of a guest.
type Expense struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	GuestID       string          `gorm:"column:guest_id;type:varchar(36);index;not null" json:"guestId"`
	ReservationID string          `gorm:"column:reservation_id;type:varchar(36);index" json:"reservationId"`
	Description   string          `gorm:"type:varchar(255);not null" json:"description"`
	Value         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func SumExpenses(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Value)
	}
	return total
}
