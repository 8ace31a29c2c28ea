package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hotel-ops/apperrors"
	"hotel-ops/models"
	"hotel-ops/repositories"
)

type CreateRoomInput struct {
	Number    string          `json:"number" validate:"required,max=20"`
	Type      string          `json:"type" validate:"required,max=50"`
	Capacity  int             `json:"capacity" validate:"min=1"`
	Beds      int             `json:"beds" validate:"min=1"`
	Price     decimal.Decimal `json:"price"`
	Amenities []string        `json:"amenities" validate:"omitempty,dive,max=50"`
	Status    string          `json:"status"`
}

type UpdateRoomInput struct {
	Number    *string          `json:"number" validate:"omitempty,min=1,max=20"`
	Type      *string          `json:"type" validate:"omitempty,min=1,max=50"`
	Capacity  *int             `json:"capacity" validate:"omitempty,min=1"`
	Beds      *int             `json:"beds" validate:"omitempty,min=1"`
	Price     *decimal.Decimal `json:"price"`
	Amenities *[]string        `json:"amenities"`
	Status    *string          `json:"status"`
}

type RoomService struct {
	deps Deps
	ttl  time.Duration
}

func NewRoomService(deps Deps, cacheTTL time.Duration) *RoomService {
	return &RoomService{deps: deps.withDefaults(), ttl: cacheTTL}
}

// ----------------------------------------------------
// Reads
// ----------------------------------------------------

// List returns rooms ordered by number with EffectiveStatus filled. The
// status filter matches the effective status.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	s.deps.syncBeforeRead(ctx)

	key := roomsCacheKey(filter)
	var cached []models.Room
	if hit, err := s.deps.Cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	} else if err != nil {
		s.deps.Log.Warn("room cache read failed", zap.Error(err))
	}

	storeFilter := filter
	storeFilter.Status = ""
	rooms, err := s.deps.Store.Rooms().List(ctx, storeFilter)
	if err != nil {
		return nil, apperrors.Dependency("failed to list rooms", err)
	}
	if err := s.attachEffectiveStatus(ctx, rooms); err != nil {
		return nil, err
	}

	out := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if filter.Status == "" || r.EffectiveStatus == filter.Status {
			out = append(out, r)
		}
	}

	if err := s.deps.Cache.Set(ctx, key, out, s.ttl); err != nil {
		s.deps.Log.Warn("room cache write failed", zap.Error(err))
	}
	return out, nil
}

func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.deps.Store.Rooms().Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "room", apperrors.ErrCodeRoomNotFound)
	}
	open, err := s.deps.Store.Reservations().ListByRoom(ctx, id, models.OpenReservationStatuses...)
	if err != nil {
		return nil, apperrors.Dependency("failed to load room reservations", err)
	}
	room.EffectiveStatus = models.DeriveEffectiveStatus(room.Status, open)
	return room, nil
}

func (s *RoomService) attachEffectiveStatus(ctx context.Context, rooms []models.Room) error {
	open, err := s.deps.Store.Reservations().ListByStatus(ctx, models.OpenReservationStatuses...)
	if err != nil {
		return apperrors.Dependency("failed to load open reservations", err)
	}
	byRoom := make(map[string][]models.Reservation, len(open))
	for _, r := range open {
		byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
	}
	for i := range rooms {
		rooms[i].EffectiveStatus = models.DeriveEffectiveStatus(rooms[i].Status, byRoom[rooms[i].ID])
	}
	return nil
}

// Availability answers whether the room can take the candidate stay: the
// room-level rules on its effective status plus the date conflict check.
func (s *RoomService) Availability(ctx context.Context, roomID string, stay models.Stay) (*models.RoomAvailability, error) {
	if err := stay.Validate(); err != nil {
		return nil, apperrors.Validation(apperrors.ErrCodeInvalidDates, err.Error())
	}
	room, err := s.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	future, err := s.deps.Store.Reservations().ListByRoom(ctx, roomID, models.ReservationFuture)
	if err != nil {
		return nil, apperrors.Dependency("failed to load future reservations", err)
	}
	conflict, err := CheckConflict(ctx, s.deps.Store.Reservations(), roomID, stay)
	if err != nil {
		return nil, err
	}

	return &models.RoomAvailability{
		RoomID:          roomID,
		EffectiveStatus: room.EffectiveStatus,
		Reservable:      CanReserveRoom(room.EffectiveStatus, future, roomID, s.deps.Clock.Today()) && !conflict.HasConflict,
		Conflict:        conflict,
	}, nil
}

// ActiveReservation returns the reservation currently holding the room.
func (s *RoomService) ActiveReservation(ctx context.Context, roomID string) (*models.Reservation, error) {
	if _, err := s.deps.Store.Rooms().Get(ctx, roomID); err != nil {
		return nil, storeError(err, "room", apperrors.ErrCodeRoomNotFound)
	}
	active, err := s.deps.Store.Reservations().ListByRoom(ctx, roomID, models.ReservationActive)
	if err != nil {
		return nil, apperrors.Dependency("failed to load room reservations", err)
	}
	if len(active) == 0 {
		return nil, apperrors.NotFound(apperrors.ErrCodeReservationNotFound, "room has no active reservation")
	}
	return &active[0], nil
}

// ----------------------------------------------------
// Writes
// ----------------------------------------------------

func (s *RoomService) Create(ctx context.Context, in CreateRoomInput) (*models.Room, error) {
	in.Number = strings.TrimSpace(in.Number)
	in.Type = strings.TrimSpace(in.Type)
	in.Amenities = normalizeAmenities(in.Amenities)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	status, err := parseStoredStatus(in.Status)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		ID:        uuid.NewString(),
		Number:    in.Number,
		Type:      in.Type,
		Capacity:  in.Capacity,
		Beds:      in.Beds,
		Price:     in.Price,
		Amenities: in.Amenities,
		Status:    status,
	}
	if err := s.deps.Store.Rooms().Insert(ctx, room); err != nil {
		return nil, roomWriteError(err, room.Number)
	}

	s.deps.Log.Info("room created", zap.String("room_id", room.ID), zap.String("number", room.Number))
	s.deps.InvalidateReadModels(ctx)
	room.EffectiveStatus = room.Status
	return room, nil
}

func (s *RoomService) Update(ctx context.Context, id string, in UpdateRoomInput) (*models.Room, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var update models.RoomUpdate
	if in.Number != nil {
		n := strings.TrimSpace(*in.Number)
		if n == "" {
			return nil, apperrors.Validation(apperrors.ErrCodeValidation, "number must not be empty")
		}
		update.Number = &n
	}
	if in.Type != nil {
		t := strings.TrimSpace(*in.Type)
		if t == "" {
			return nil, apperrors.Validation(apperrors.ErrCodeValidation, "type must not be empty")
		}
		update.Type = &t
	}
	update.Capacity = in.Capacity
	update.Beds = in.Beds
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return nil, err
		}
		update.Price = in.Price
	}
	if in.Amenities != nil {
		a := normalizeAmenities(*in.Amenities)
		update.Amenities = &a
	}
	if in.Status != nil {
		st, err := parseStoredStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		update.Status = &st
	}
	if update.Empty() {
		return nil, apperrors.Validation(apperrors.ErrCodeValidation, "no fields to update")
	}

	if update.Capacity != nil {
		if err := s.checkCapacity(ctx, id, *update.Capacity); err != nil {
			return nil, err
		}
	}

	room, err := s.deps.Store.Rooms().Update(ctx, id, update)
	if err != nil {
		number := ""
		if update.Number != nil {
			number = *update.Number
		}
		return nil, roomWriteError(err, number)
	}

	s.deps.Log.Info("room updated", zap.String("room_id", id))
	s.deps.InvalidateReadModels(ctx)
	return s.Get(ctx, room.ID)
}

// checkCapacity refuses shrinking a room below a party already booked into it.
func (s *RoomService) checkCapacity(ctx context.Context, roomID string, capacity int) error {
	open, err := s.deps.Store.Reservations().ListByRoom(ctx, roomID, models.OpenReservationStatuses...)
	if err != nil {
		return apperrors.Dependency("failed to load room reservations", err)
	}
	for _, r := range open {
		if r.NumGuests > capacity {
			return apperrors.Conflict(apperrors.ErrCodeRoomInUse,
				fmt.Sprintf("reservation %s has %d guests, above the new capacity %d", r.ID, r.NumGuests, capacity))
		}
	}
	return nil
}

// Delete refuses while the room is occupied or reserved.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	err := s.deps.Store.WithRoomLock(ctx, id, func(tx repositories.Store) error {
		open, err := tx.Reservations().ListByRoom(ctx, id, models.OpenReservationStatuses...)
		if err != nil {
			return apperrors.Dependency("failed to load room reservations", err)
		}
		if len(open) > 0 {
			return apperrors.Conflict(apperrors.ErrCodeRoomInUse, "room has active or future reservations")
		}
		return tx.Rooms().Delete(ctx, id)
	})
	if errors.Is(err, repositories.ErrReferenced) {
		return apperrors.New(apperrors.KindConflict, apperrors.ErrCodeRoomInUse,
			"room has reservation history and cannot be deleted", err)
	}
	if err != nil {
		return storeError(err, "room", apperrors.ErrCodeRoomNotFound)
	}

	s.deps.Log.Info("room deleted", zap.String("room_id", id))
	s.deps.InvalidateReadModels(ctx)
	return nil
}

// ----------------------------------------------------
// helpers
// ----------------------------------------------------

func roomsCacheKey(f models.RoomFilter) string {
	price := func(d *decimal.Decimal) string {
		if d == nil {
			return ""
		}
		return d.String()
	}
	return fmt.Sprintf("%slist:%s|%s|%s|%s", roomsCachePrefix, f.Type, f.Status, price(f.MinPrice), price(f.MaxPrice))
}

func validatePrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return apperrors.Validation(apperrors.ErrCodeValidation, "price must be greater than zero")
	}
	return nil
}

// parseStoredStatus accepts only statuses a room may persist; empty means available.
func parseStoredStatus(raw string) (models.RoomStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return models.RoomAvailable, nil
	}
	st, err := models.ParseRoomStatus(raw)
	if err != nil {
		return "", apperrors.Validation(apperrors.ErrCodeInvalidState, err.Error())
	}
	if !st.Storable() {
		return "", apperrors.Validation(apperrors.ErrCodeInvalidState,
			fmt.Sprintf("status %q is derived from reservations and cannot be set directly", st))
	}
	return st, nil
}

// normalizeAmenities trims, drops blanks and de-duplicates, keeping order.
func normalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

func roomWriteError(err error, number string) error {
	if field, ok := repositories.DuplicateField(err); ok && field == "number" {
		return apperrors.New(apperrors.KindConflict, apperrors.ErrCodeDuplicateRoom,
			fmt.Sprintf("room number %q already exists", number), err)
	}
	return storeError(err, "room", apperrors.ErrCodeRoomNotFound)
}
