package services

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

const statsCacheKey = statsCachePrefix + "hotel"

// revenueStatuses are the reservations that count toward monthly revenue.
var revenueStatuses = []models.ReservationStatus{
	models.ReservationActive,
	models.ReservationCompleted,
	models.ReservationFuture,
}

type StatisticsService struct {
	deps Deps
	ttl  time.Duration
}

func NewStatisticsService(deps Deps, cacheTTL time.Duration) *StatisticsService {
	return &StatisticsService{deps: deps.withDefaults(), ttl: cacheTTL}
}

func (s *StatisticsService) Get(ctx context.Context) (*models.HotelStatistics, error) {
	s.deps.syncBeforeRead(ctx)

	var cached models.HotelStatistics
	if hit, err := s.deps.Cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
		return &cached, nil
	} else if err != nil {
		s.deps.Log.Warn("statistics cache read failed", zap.Error(err))
	}

	rooms, err := s.deps.Store.Rooms().List(ctx, models.RoomFilter{})
	if err != nil {
		return nil, apperrors.Dependency("failed to list rooms", err)
	}
	reservations, err := s.deps.Store.Reservations().ListByStatus(ctx, revenueStatuses...)
	if err != nil {
		return nil, apperrors.Dependency("failed to list reservations", err)
	}

	stats := Aggregate(rooms, reservations, s.deps.Clock.Today())
	if err := s.deps.Cache.Set(ctx, statsCacheKey, stats, s.ttl); err != nil {
		s.deps.Log.Warn("statistics cache write failed", zap.Error(err))
	}
	return &stats, nil
}

// Aggregate computes the snapshot from rooms and their reservations. Room
// prices come from the reservations' attached rooms, falling back to rooms.
func Aggregate(rooms []models.Room, reservations []models.Reservation, today models.Date) models.HotelStatistics {
	stats := models.HotelStatistics{
		TotalRooms:     len(rooms),
		RoomsByType:    map[string]int{},
		MonthlyRevenue: decimal.Zero,
	}

	byRoom := make(map[string][]models.Reservation, len(rooms))
	for _, r := range reservations {
		byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
	}
	priceOf := make(map[string]decimal.Decimal, len(rooms))

	for _, room := range rooms {
		priceOf[room.ID] = room.Price
		stats.RoomsByType[room.Type]++
		switch models.DeriveEffectiveStatus(room.Status, byRoom[room.ID]) {
		case models.RoomOccupied:
			stats.OccupiedRooms++
		case models.RoomReserved:
			stats.ReservedRooms++
		case models.RoomAvailable:
			stats.AvailableRooms++
		case models.RoomMaintenance, models.RoomCleaning:
			stats.MaintenanceRooms++
		}
	}
	if stats.TotalRooms > 0 {
		rate := float64(stats.OccupiedRooms) / float64(stats.TotalRooms) * 100
		stats.OccupancyRate = math.Round(rate*100) / 100
	}

	monthStart, monthEnd := monthBounds(today)
	for _, r := range reservations {
		if r.Status.IsOpen() {
			stats.ActiveGuests++
		}
		nights := r.NightsWithin(monthStart, monthEnd)
		if nights == 0 {
			continue
		}
		price, ok := priceOf[r.RoomID]
		if r.Room != nil {
			price, ok = r.Room.Price, true
		}
		if !ok {
			continue
		}
		stats.MonthlyRevenue = stats.MonthlyRevenue.Add(
			price.Mul(decimal.NewFromInt(int64(nights * r.NumGuests))))
	}
	return stats
}

// monthBounds returns [first day of today's month, first day of next month).
func monthBounds(today models.Date) (models.Date, models.Date) {
	t := today.Time()
	start := models.NewDate(t.Year(), t.Month(), 1)
	end := models.DateOf(start.Time().AddDate(0, 1, 0))
	return start, end
}
