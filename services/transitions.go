package services

import (
	"context"
	"errors"
	"fmt"

	"hotel-ops/apperrors"
	"hotel-ops/models"
	"hotel-ops/repositories"
)

// moveReservation applies one status transition while the caller holds the
// room lock, and frees the room once the stay is over.
func moveReservation(ctx context.Context, tx repositories.Store, res *models.Reservation, to models.ReservationStatus) error {
	if _, err := res.Status.Transition(to); err != nil {
		return apperrors.New(apperrors.KindConflict, apperrors.ErrCodeIllegalTransition,
			fmt.Sprintf("reservation is %s and cannot become %s", res.Status, to), err)
	}
	if err := tx.Reservations().UpdateStatus(ctx, res.ID, res.Status, to); err != nil {
		return err
	}
	res.Status = to

	if to.IsTerminal() {
		return releaseRoom(ctx, tx, res.RoomID)
	}
	return nil
}

// ensureNoActive fails when another reservation already holds the room as active.
func ensureNoActive(ctx context.Context, tx repositories.Store, roomID, exceptID string) error {
	active, err := tx.Reservations().ListByRoom(ctx, roomID, models.ReservationActive)
	if err != nil {
		return apperrors.Dependency("failed to load room reservations", err)
	}
	for _, r := range active {
		if r.ID != exceptID {
			return apperrors.Conflict(apperrors.ErrCodeAlreadyOccupied,
				fmt.Sprintf("room is still occupied by %s until %s", r.GuestName(), r.CheckOut))
		}
	}
	return nil
}

func releaseRoom(ctx context.Context, tx repositories.Store, roomID string) error {
	available := models.RoomAvailable
	if _, err := tx.Rooms().Update(ctx, roomID, models.RoomUpdate{Status: &available}); err != nil {
		return fmt.Errorf("release room %s: %w", roomID, err)
	}
	return nil
}

// storeError turns a repository failure on the named record into an
// AppError. AppErrors pass through.
func storeError(err error, what string, notFound apperrors.ErrorCode) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.New(apperrors.KindNotFound, notFound, what+" not found", err)
	case errors.Is(err, repositories.ErrStaleStatus):
		return apperrors.New(apperrors.KindConflict, apperrors.ErrCodeIllegalTransition,
			what+" was changed by another operation", err)
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.New(apperrors.KindConflict, apperrors.ErrCodeDuplicate, err.Error(), err)
	}
	return apperrors.Dependency("failed to access "+what, err)
}
