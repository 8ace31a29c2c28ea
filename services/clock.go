package services

import (
	"time"

	"hotel-ops/models"
)

// Clock decides what "today" is for the hotel.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) Today() models.Date {
	return models.DateOf(c.Now().In(c.Location))
}
