package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hotel-ops/apperrors"
	"hotel-ops/models"
	"hotel-ops/repositories"
)

type GuestInput struct {
	Name  string `json:"name" validate:"required,max=150"`
	Email string `json:"email" validate:"required,email,max=150"`
	Phone string `json:"phone" validate:"max=30"`
	CPF   string `json:"cpf" validate:"max=14"`
}

type CreateReservationInput struct {
	RoomID    string      `json:"room_id" validate:"required"`
	Guest     GuestInput  `json:"guest"`
	CheckIn   models.Date `json:"check_in"`
	CheckOut  models.Date `json:"check_out"`
	NumGuests int         `json:"num_guests" validate:"min=1"`
}

type ReservationService struct {
	deps Deps
}

func NewReservationService(deps Deps) *ReservationService {
	return &ReservationService{deps: deps.withDefaults()}
}

// ----------------------------------------------------
// Create
// ----------------------------------------------------

// Create books a room for a guest. The room checks, the conflict check and
// the inserts run under the room lock so two overlapping requests for the
// same room cannot both succeed.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	in.RoomID = strings.TrimSpace(in.RoomID)
	in.Guest.Name = strings.TrimSpace(in.Guest.Name)
	in.Guest.Email = strings.ToLower(strings.TrimSpace(in.Guest.Email))
	in.Guest.Phone = strings.TrimSpace(in.Guest.Phone)
	in.Guest.CPF = strings.TrimSpace(in.Guest.CPF)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	stay, err := models.NewStay(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, apperrors.Validation(apperrors.ErrCodeInvalidDates, err.Error())
	}
	today := s.deps.Clock.Today()
	if !stay.CheckOut.After(today) {
		return nil, apperrors.Validation(apperrors.ErrCodeInvalidDates, "check-out must be after today")
	}
	status := models.InitialReservationStatus(stay.CheckIn, today)

	var (
		reservation *models.Reservation
		createdID   string
	)
	err = s.deps.Store.WithRoomLock(ctx, in.RoomID, func(tx repositories.Store) error {
		room, err := tx.Rooms().Get(ctx, in.RoomID)
		if err != nil {
			return storeError(err, "room", apperrors.ErrCodeRoomNotFound)
		}
		if room.Status.OutOfService() {
			return apperrors.Conflict(apperrors.ErrCodeRoomNotBookable,
				fmt.Sprintf("room %s is under %s", room.Number, room.Status))
		}
		if in.NumGuests > room.Capacity {
			return apperrors.Validation(apperrors.ErrCodeValidation,
				fmt.Sprintf("room %s holds at most %d guests", room.Number, room.Capacity))
		}

		conflict, err := CheckConflict(ctx, tx.Reservations(), room.ID, stay)
		if err != nil {
			return err
		}
		if conflict.HasConflict {
			return apperrors.DateConflict(conflict)
		}
		if status == models.ReservationActive {
			if err := ensureNoActive(ctx, tx, room.ID, ""); err != nil {
				return err
			}
		}

		guest, created, err := upsertGuest(ctx, tx.Guests(), in.Guest)
		if err != nil {
			return err
		}
		if created {
			createdID = guest.ID
		}

		res := &models.Reservation{
			ID:        uuid.NewString(),
			RoomID:    room.ID,
			GuestID:   guest.ID,
			Stay:      stay,
			NumGuests: in.NumGuests,
			Status:    status,
		}
		if err := tx.Reservations().Insert(ctx, res); err != nil {
			return err
		}
		res.Guest = guest
		res.Room = room
		reservation = res
		return nil
	})
	if err != nil {
		if createdID != "" {
			s.rollbackGuest(ctx, createdID)
		}
		return nil, storeError(err, "room", apperrors.ErrCodeRoomNotFound)
	}

	s.deps.Log.Info("reservation created",
		zap.String("reservation_id", reservation.ID),
		zap.String("room_id", reservation.RoomID),
		zap.String("guest_id", reservation.GuestID),
		zap.String("status", string(reservation.Status)))
	s.deps.InvalidateReadModels(ctx)
	// Debounced; occupied and reserved are derived at read time.
	s.deps.syncBeforeRead(ctx)
	return reservation, nil
}

// rollbackGuest removes a guest created for a reservation that was never stored.
func (s *ReservationService) rollbackGuest(ctx context.Context, guestID string) {
	err := s.deps.Store.Guests().Delete(ctx, guestID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		s.deps.Log.Error("guest rollback failed", zap.String("guest_id", guestID), zap.Error(err))
		return
	}
	s.deps.Log.Debug("guest rolled back", zap.String("guest_id", guestID))
}

// upsertGuest finds a guest by email, then by CPF. A match gets its contact
// fields refreshed; otherwise a new guest is inserted.
func upsertGuest(ctx context.Context, guests repositories.GuestRepository, in GuestInput) (*models.Guest, bool, error) {
	var cpf *string
	if in.CPF != "" {
		c := in.CPF
		cpf = &c
	}

	existing, err := guests.FindByEmail(ctx, in.Email)
	if errors.Is(err, repositories.ErrNotFound) && cpf != nil {
		existing, err = guests.FindByCPF(ctx, *cpf)
	}
	switch {
	case err == nil:
		update := models.GuestUpdate{Name: &in.Name, Email: &in.Email}
		if in.Phone != "" {
			update.Phone = &in.Phone
		}
		if cpf != nil {
			update.CPF = cpf
		}
		g, err := guests.Update(ctx, existing.ID, update)
		if err != nil {
			return nil, false, guestWriteError(err)
		}
		return g, false, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, false, apperrors.Dependency("failed to look up guest", err)
	}

	g := &models.Guest{
		ID:    uuid.NewString(),
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		CPF:   cpf,
	}
	if err := guests.Insert(ctx, g); err != nil {
		return nil, false, guestWriteError(err)
	}
	return g, true, nil
}

func guestWriteError(err error) error {
	field, ok := repositories.DuplicateField(err)
	switch {
	case ok && field == "email":
		return apperrors.New(apperrors.KindConflict, apperrors.ErrCodeDuplicateEmail,
			"a guest with this email is already registered", err)
	case ok && field == "cpf":
		return apperrors.New(apperrors.KindConflict, apperrors.ErrCodeDuplicateCPF,
			"a guest with this CPF is already registered", err)
	}
	return storeError(err, "guest", apperrors.ErrCodeGuestNotFound)
}

// ----------------------------------------------------
// Reads
// ----------------------------------------------------

func (s *ReservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	res, err := s.deps.Store.Reservations().Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "reservation", apperrors.ErrCodeReservationNotFound)
	}
	return res, nil
}

// ListFuture returns future reservations ordered by check-in, after giving the
// sweep a chance to promote the ones that are due.
func (s *ReservationService) ListFuture(ctx context.Context) ([]models.Reservation, error) {
	s.deps.syncBeforeRead(ctx)
	list, err := s.deps.Store.Reservations().ListByStatus(ctx, models.ReservationFuture)
	if err != nil {
		return nil, apperrors.Dependency("failed to list future reservations", err)
	}
	if list == nil {
		list = []models.Reservation{}
	}
	return list, nil
}

// PriceBreakdown prices the stay at the room's current rate plus the guest's expenses.
func (s *ReservationService) PriceBreakdown(ctx context.Context, id string) (*models.StayPriceBreakdown, error) {
	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Room == nil {
		room, err := s.deps.Store.Rooms().Get(ctx, res.RoomID)
		if err != nil {
			return nil, storeError(err, "room", apperrors.ErrCodeRoomNotFound)
		}
		res.Room = room
	}
	expenses, err := s.deps.Store.Expenses().ListByReservation(ctx, res.ID)
	if err != nil {
		return nil, apperrors.Dependency("failed to load guest expenses", err)
	}

	nights := res.BilledNights()
	stayPrice := res.Room.Price.
		Mul(decimal.NewFromInt(int64(res.NumGuests))).
		Mul(decimal.NewFromInt(int64(nights)))
	return &models.StayPriceBreakdown{
		ReservationID: res.ID,
		Nights:        nights,
		NumGuests:     res.NumGuests,
		PricePerGuest: res.Room.Price,
		StayPrice:     stayPrice,
		Expenses:      models.SumExpenses(expenses),
		Total:         models.StayTotal(res.Room.Price, res.NumGuests, res.Stay, expenses),
	}, nil
}

// ----------------------------------------------------
// Transitions
// ----------------------------------------------------

func (s *ReservationService) Cancel(ctx context.Context, id string) (*models.Reservation, error) {
	return s.transition(ctx, id, models.ReservationCancelled, nil)
}

// CheckIn activates a future reservation at the front desk. It is refused
// while another guest still occupies the room.
func (s *ReservationService) CheckIn(ctx context.Context, id string) (*models.Reservation, error) {
	return s.transition(ctx, id, models.ReservationActive, func(tx repositories.Store, res *models.Reservation) error {
		return ensureNoActive(ctx, tx, res.RoomID, res.ID)
	})
}

// CheckOut completes the stay, frees the room and archives the stay.
func (s *ReservationService) CheckOut(ctx context.Context, id string) (*models.Reservation, error) {
	res, err := s.transition(ctx, id, models.ReservationCompleted, nil)
	if err != nil {
		return nil, err
	}
	s.archiveStay(ctx, res)
	return res, nil
}

// transition re-reads the reservation under its room lock, runs the optional
// guard, and applies the move.
func (s *ReservationService) transition(ctx context.Context, id string, to models.ReservationStatus,
	guard func(tx repositories.Store, res *models.Reservation) error) (*models.Reservation, error) {

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var res *models.Reservation
	err = s.deps.Store.WithRoomLock(ctx, current.RoomID, func(tx repositories.Store) error {
		r, err := tx.Reservations().Get(ctx, id)
		if err != nil {
			return err
		}
		if guard != nil && r.Status.CanTransitionTo(to) {
			if err := guard(tx, r); err != nil {
				return err
			}
		}
		if err := moveReservation(ctx, tx, r, to); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, storeError(err, "reservation", apperrors.ErrCodeReservationNotFound)
	}

	s.deps.Log.Info("reservation status changed",
		zap.String("reservation_id", res.ID),
		zap.String("room_id", res.RoomID),
		zap.String("status", string(to)))
	s.deps.InvalidateReadModels(ctx)
	return res, nil
}

// archiveStay snapshots a completed stay into the history. The reservation is
// already completed, so failures are only logged.
func (s *ReservationService) archiveStay(ctx context.Context, res *models.Reservation) {
	log := s.deps.Log.With(zap.String("reservation_id", res.ID))

	guest := res.Guest
	if guest == nil {
		g, err := s.deps.Store.Guests().Get(ctx, res.GuestID)
		if err != nil {
			log.Warn("stay history skipped: guest unavailable", zap.Error(err))
			return
		}
		guest = g
	}
	room := res.Room
	if room == nil {
		r, err := s.deps.Store.Rooms().Get(ctx, res.RoomID)
		if err != nil {
			log.Warn("stay history skipped: room unavailable", zap.Error(err))
			return
		}
		room = r
	}
	expenses, err := s.deps.Store.Expenses().ListByReservation(ctx, res.ID)
	if err != nil {
		log.Warn("stay history without expenses", zap.Error(err))
		expenses = nil
	}

	entry := &models.StayHistory{
		ID:            uuid.NewString(),
		ReservationID: res.ID,
		GuestID:       guest.ID,
		GuestName:     guest.Name,
		GuestEmail:    guest.Email,
		GuestPhone:    guest.Phone,
		GuestCPF:      guest.CPF,
		RoomID:        room.ID,
		RoomNumber:    room.Number,
		RoomType:      room.Type,
		Stay:          res.Stay,
		NumGuests:     res.NumGuests,
		TotalPrice:    models.StayTotal(room.Price, res.NumGuests, res.Stay, expenses),
		Expenses:      expenses,
		Status:        res.Status,
	}
	if err := s.deps.Store.StayHistory().Insert(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			log.Debug("stay already archived")
			return
		}
		log.Error("failed to write stay history", zap.Error(err))
		return
	}
	log.Info("stay archived", zap.String("history_id", entry.ID), zap.String("total", entry.TotalPrice.String()))
}
