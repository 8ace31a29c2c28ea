package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hotel-ops/models"
)

func TestStatisticsEmptyHotel(t *testing.T) {
	f := newFixture(t)
	stats, err := f.stats.Get(f.ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalRooms != 0 || stats.OccupiedRooms != 0 || stats.AvailableRooms != 0 ||
		stats.ReservedRooms != 0 || stats.MaintenanceRooms != 0 || stats.ActiveGuests != 0 {
		t.Fatalf("expected all counts zero, got %+v", stats)
	}
	if stats.OccupancyRate != 0 {
		t.Fatalf("expected occupancy 0, got %v", stats.OccupancyRate)
	}
	if !stats.MonthlyRevenue.IsZero() {
		t.Fatalf("expected zero revenue, got %s", stats.MonthlyRevenue)
	}
}

func TestAggregate(t *testing.T) {
	today := models.NewDate(2025, time.March, 10)
	day := func(m time.Month, d int) models.Date { return models.NewDate(2025, m, d) }

	rooms := []models.Room{
		{ID: "r1", Type: "Casal", Price: decimal.NewFromInt(100), Status: models.RoomAvailable},
		{ID: "r2", Type: "Solteiro", Price: decimal.NewFromInt(50), Status: models.RoomAvailable},
		{ID: "r3", Type: "Casal", Price: decimal.NewFromInt(80), Status: models.RoomMaintenance},
		{ID: "r4", Type: "Suíte", Price: decimal.NewFromInt(200), Status: models.RoomAvailable},
	}
	reservations := []models.Reservation{
		{RoomID: "r1", Status: models.ReservationActive, NumGuests: 2,
			Stay: models.Stay{CheckIn: day(time.March, 9), CheckOut: day(time.March, 12)}},
		{RoomID: "r2", Status: models.ReservationFuture, NumGuests: 1,
			Stay: models.Stay{CheckIn: day(time.March, 28), CheckOut: day(time.April, 3)}},
		{RoomID: "r4", Status: models.ReservationCompleted, NumGuests: 2,
			Stay: models.Stay{CheckIn: day(time.February, 27), CheckOut: day(time.March, 2)}},
		{RoomID: "r4", Status: models.ReservationCompleted, NumGuests: 1,
			Stay: models.Stay{CheckIn: day(time.January, 5), CheckOut: day(time.January, 9)}},
	}

	stats := Aggregate(rooms, reservations, today)

	if stats.TotalRooms != 4 || stats.OccupiedRooms != 1 || stats.ReservedRooms != 1 ||
		stats.AvailableRooms != 1 || stats.MaintenanceRooms != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.OccupancyRate != 25 {
		t.Fatalf("expected 25%% occupancy, got %v", stats.OccupancyRate)
	}
	if stats.RoomsByType["Casal"] != 2 || stats.RoomsByType["Suíte"] != 1 {
		t.Fatalf("unexpected rooms by type %v", stats.RoomsByType)
	}
	if stats.ActiveGuests != 2 {
		t.Fatalf("expected 2 active guests, got %d", stats.ActiveGuests)
	}
	// 3*2*100 + 4*1*50 + 1*2*200
	if !stats.MonthlyRevenue.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected revenue 1200, got %s", stats.MonthlyRevenue)
	}
}

func TestAggregateRoundsOccupancy(t *testing.T) {
	rooms := []models.Room{
		{ID: "a", Status: models.RoomAvailable},
		{ID: "b", Status: models.RoomAvailable},
		{ID: "c", Status: models.RoomCleaning},
	}
	res := []models.Reservation{{RoomID: "a", Status: models.ReservationActive}}
	stats := Aggregate(rooms, res, models.NewDate(2025, time.March, 10))
	if stats.OccupancyRate != 33.33 {
		t.Fatalf("expected 33.33, got %v", stats.OccupancyRate)
	}
	if stats.MaintenanceRooms != 1 {
		t.Fatalf("expected cleaning to count as maintenance, got %d", stats.MaintenanceRooms)
	}
}

func TestStatisticsCacheInvalidatedByWrites(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom("101", "Solteiro", 80, models.RoomAvailable)

	before, err := f.stats.Get(f.ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if before.AvailableRooms != 1 {
		t.Fatalf("expected one available room, got %+v", before)
	}

	f.book(room.ID, "Ana", "ana@x.com", 0, 2)
	after, err := f.stats.Get(f.ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if after.OccupiedRooms != 1 || after.OccupancyRate != 100 {
		t.Fatalf("expected fresh statistics after booking, got %+v", after)
	}
	// 2 nights in March at 80 for one guest
	if !after.MonthlyRevenue.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("expected revenue 160, got %s", after.MonthlyRevenue)
	}
}
