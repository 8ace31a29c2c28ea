package services

import (
	"context"

	"hotel-ops/apperrors"
	"hotel-ops/models"
	"hotel-ops/repositories"
)

// blockingWindowDays is how close a future check-in may get before the room
// stops accepting further reservations.
const blockingWindowDays = 1

// CheckConflict compares a candidate stay against the room's active and
// future reservations and reports the first overlap.
func CheckConflict(ctx context.Context, reservations repositories.ReservationRepository, roomID string, stay models.Stay) (models.ConflictResult, error) {
	if err := stay.Validate(); err != nil {
		return models.ConflictResult{}, apperrors.Validation(apperrors.ErrCodeInvalidDates, err.Error())
	}

	existing, err := reservations.ListByRoom(ctx, roomID, models.OpenReservationStatuses...)
	if err != nil {
		return models.ConflictResult{}, apperrors.Dependency("failed to load room reservations", err)
	}
	return firstConflict(existing, stay), nil
}

func firstConflict(existing []models.Reservation, stay models.Stay) models.ConflictResult {
	for _, r := range existing {
		if !r.Status.IsOpen() || !stay.Overlaps(r.Stay) {
			continue
		}
		rng := r.Stay
		return models.ConflictResult{
			HasConflict:   true,
			ReservationID: r.ID,
			GuestName:     r.GuestName(),
			Range:         &rng,
		}
	}
	return models.ConflictResult{}
}

// CanReserveRoom applies the room-level booking rules to an effective status.
// futureReservations may span several rooms; only roomID's entry is consulted.
func CanReserveRoom(status models.RoomStatus, futureReservations []models.Reservation, roomID string, today models.Date) bool {
	switch status {
	case models.RoomMaintenance, models.RoomCleaning, models.RoomOccupied:
		return false
	case models.RoomAvailable:
		return true
	case models.RoomReserved:
		var next *models.Date
		for i := range futureReservations {
			r := futureReservations[i]
			if r.RoomID != roomID || r.Status != models.ReservationFuture {
				continue
			}
			if next == nil || r.CheckIn.Before(*next) {
				next = &futureReservations[i].CheckIn
			}
		}
		if next == nil {
			// Reserved with nothing backing it; sync will return it to available.
			return false
		}
		return today.DaysUntil(*next) > blockingWindowDays
	}
	return false
}
