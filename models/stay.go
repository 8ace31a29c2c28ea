package models

import "errors"

var ErrInvalidStay = errors.New("check-out must be after check-in")

// Stay is the half-open interval [CheckIn, CheckOut) of a reservation.
type Stay struct {
	CheckIn  Date `gorm:"column:check_in;not null;index" json:"check_in"`
	CheckOut Date `gorm:"column:check_out;not null" json:"check_out"`
}

func NewStay(checkIn, checkOut Date) (Stay, error) {
	s := Stay{CheckIn: checkIn, CheckOut: checkOut}
	return s, s.Validate()
}

func (s Stay) Validate() error {
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() {
		return errors.New("check-in and check-out are required")
	}
	if !s.CheckOut.After(s.CheckIn) {
		return ErrInvalidStay
	}
	return nil
}

// Overlaps reports whether two stays share at least one night.
// Touching boundaries (one ends the day the other starts) do not overlap.
func (s Stay) Overlaps(o Stay) bool {
	return s.CheckIn.Before(o.CheckOut) && s.CheckOut.After(o.CheckIn)
}

func (s Stay) Nights() int {
	return s.CheckIn.DaysUntil(s.CheckOut)
}

// BilledNights is Nights with a floor of one, as used for pricing a stay.
func (s Stay) BilledNights() int {
	if n := s.Nights(); n > 0 {
		return n
	}
	return 1
}

// NightsWithin counts the nights of s falling inside [from, to).
func (s Stay) NightsWithin(from, to Date) int {
	start, end := s.CheckIn, s.CheckOut
	if from.After(start) {
		start = from
	}
	if to.Before(end) {
		end = to
	}
	if !end.After(start) {
		return 0
	}
	return start.DaysUntil(end)
}
