package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hotel-ops/apperrors"
	"hotel-ops/models"
	"hotel-ops/repositories"
)

// AddExpenseInput charges an extra to a stay. An empty ReservationID charges
// the guest's latest active stay.
type AddExpenseInput struct {
	ReservationID string          `json:"reservation_id"`
	Description   string          `json:"description" validate:"required,max=255"`
	Value         decimal.Decimal `json:"value"`
}

type GuestService struct {
	deps Deps
}

func NewGuestService(deps Deps) *GuestService {
	return &GuestService{deps: deps.withDefaults()}
}

func (s *GuestService) Get(ctx context.Context, id string) (*models.Guest, error) {
	g, err := s.deps.Store.Guests().Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "guest", apperrors.ErrCodeGuestNotFound)
	}
	return g, nil
}

// AddExpense charges an extra to the guest's active stay. The stay is
// re-checked under its room lock so a charge cannot land after check-out.
func (s *GuestService) AddExpense(ctx context.Context, guestID string, in AddExpenseInput) (*models.Expense, error) {
	in.ReservationID = strings.TrimSpace(in.ReservationID)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Value.IsNegative() {
		return nil, apperrors.Validation(apperrors.ErrCodeValidation, "value must not be negative")
	}
	if _, err := s.Get(ctx, guestID); err != nil {
		return nil, err
	}

	stay, err := s.activeStay(ctx, guestID, in.ReservationID)
	if err != nil {
		return nil, err
	}

	e := &models.Expense{
		GuestID:       guestID,
		ReservationID: stay.ID,
		Description:   in.Description,
		Value:         in.Value.Round(2),
	}
	err = s.deps.Store.WithRoomLock(ctx, stay.RoomID, func(tx repositories.Store) error {
		current, err := tx.Reservations().Get(ctx, stay.ID)
		if err != nil {
			return err
		}
		if current.Status != models.ReservationActive {
			return noActiveStay()
		}
		return tx.Expenses().Insert(ctx, e)
	})
	if err != nil {
		return nil, storeError(err, "reservation", apperrors.ErrCodeReservationNotFound)
	}
	s.deps.Log.Info("expense added",
		zap.String("guest_id", guestID),
		zap.String("reservation_id", e.ReservationID),
		zap.Uint("expense_id", e.ID),
		zap.String("value", e.Value.String()))
	return e, nil
}

// activeStay picks the stay an expense belongs to: the named reservation, or
// the guest's latest active one.
func (s *GuestService) activeStay(ctx context.Context, guestID, reservationID string) (*models.Reservation, error) {
	active, err := s.deps.Store.Reservations().ListByGuest(ctx, guestID, models.ReservationActive)
	if err != nil {
		return nil, apperrors.Dependency("failed to load guest reservations", err)
	}
	if reservationID != "" {
		for i := range active {
			if active[i].ID == reservationID {
				return &active[i], nil
			}
		}
		return nil, noActiveStay()
	}
	if len(active) == 0 {
		return nil, noActiveStay()
	}
	// ListByGuest orders by check-in.
	return &active[len(active)-1], nil
}

func noActiveStay() error {
	return apperrors.Conflict(apperrors.ErrCodeNoActiveStay, "guest has no active stay to charge")
}

func (s *GuestService) ListExpenses(ctx context.Context, guestID string) ([]models.Expense, error) {
	if _, err := s.Get(ctx, guestID); err != nil {
		return nil, err
	}
	list, err := s.deps.Store.Expenses().ListByGuest(ctx, guestID)
	if err != nil {
		return nil, apperrors.Dependency("failed to list expenses", err)
	}
	if list == nil {
		list = []models.Expense{}
	}
	return list, nil
}

func (s *GuestService) StayHistory(ctx context.Context, guestID string) ([]models.StayHistory, error) {
	if _, err := s.Get(ctx, guestID); err != nil {
		return nil, err
	}
	list, err := s.deps.Store.StayHistory().ListByGuest(ctx, guestID)
	if err != nil {
		return nil, apperrors.Dependency("failed to list stay history", err)
	}
	if list == nil {
		list = []models.StayHistory{}
	}
	return list, nil
}

func (s *GuestService) AllStayHistory(ctx context.Context) ([]models.StayHistory, error) {
	list, err := s.deps.Store.StayHistory().List(ctx)
	if err != nil {
		return nil, apperrors.Dependency("failed to list stay history", err)
	}
	if list == nil {
		list = []models.StayHistory{}
	}
	return list, nil
}
