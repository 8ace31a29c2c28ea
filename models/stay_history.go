package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// StayHistory is the snapshot of a finished stay, kept after the guest and
// room records move on.
type StayHistory struct {
	ID            string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ReservationID string `gorm:"column:reservation_id;type:varchar(36);uniqueIndex" json:"reservationId"`
	GuestID       string `gorm:"column:guest_id;type:varchar(36);index" json:"guestId"`

	GuestName  string  `gorm:"type:varchar(150)" json:"guestName"`
	GuestEmail string  `gorm:"type:varchar(150)" json:"guestEmail"`
	GuestPhone string  `gorm:"type:varchar(30)" json:"guestPhone,omitempty"`
	GuestCPF   *string `gorm:"column:guest_cpf;type:varchar(14)" json:"guestCpf,omitempty"`

	RoomID     string `gorm:"column:room_id;type:varchar(36)" json:"roomId"`
	RoomNumber string `gorm:"type:varchar(20)" json:"roomNumber"`
	RoomType   string `gorm:"type:varchar(50)" json:"roomType"`

	Stay
	NumGuests  int                          `json:"numGuests"`
	TotalPrice decimal.Decimal              `gorm:"type:decimal(12,2)" json:"totalPrice"`
	Expenses   datatypes.JSONSlice[Expense] `gorm:"column:expenses" json:"expenses"`
	Status     ReservationStatus            `gorm:"type:varchar(20)" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
}

func (StayHistory) TableName() string { return "guest_history" }

// StayTotal prices a stay as rate × guests × nights (minimum one night) plus expenses.
func StayTotal(pricePerPerson decimal.Decimal, numGuests int, stay Stay, expenses []Expense) decimal.Decimal {
	base := pricePerPerson.
		Mul(decimal.NewFromInt(int64(numGuests))).
		Mul(decimal.NewFromInt(int64(stay.BilledNights())))
	return base.Add(SumExpenses(expenses))
}

// StayPriceBreakdown is the priced view of a reservation.
type StayPriceBreakdown struct {
	ReservationID string          `json:"reservationId"`
	Nights        int             `json:"nights"`
	NumGuests     int             `json:"numGuests"`
	PricePerGuest decimal.Decimal `json:"pricePerGuest"`
	StayPrice     decimal.Decimal `json:"stayPrice"`
	Expenses      decimal.Decimal `json:"expenses"`
	Total         decimal.Decimal `json:"total"`
}
