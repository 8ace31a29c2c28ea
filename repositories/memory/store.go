// Package memory is an in-process Store used for tests and DB_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"

	"hotel-ops/models"
	"hotel-ops/repositories"
)

type Store struct {
	mu           sync.RWMutex
	rooms        map[string]models.Room
	guests       map[string]models.Guest
	reservations map[string]models.Reservation
	expenses     []models.Expense
	history      []models.StayHistory
	nextExpense  uint

	locksMu   sync.Mutex
	roomLocks map[string]*sync.Mutex

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		rooms:        map[string]models.Room{},
		guests:       map[string]models.Guest{},
		reservations: map[string]models.Reservation{},
		roomLocks:    map[string]*sync.Mutex{},
		now:          time.Now,
	}
}

func (s *Store) Rooms() repositories.RoomRepository               { return roomRepo{s} }
func (s *Store) Guests() repositories.GuestRepository             { return guestRepo{s} }
func (s *Store) Reservations() repositories.ReservationRepository { return reservationRepo{s} }
func (s *Store) Expenses() repositories.ExpenseRepository         { return expenseRepo{s} }
func (s *Store) StayHistory() repositories.StayHistoryRepository  { return historyRepo{s} }

func (s *Store) roomLock(roomID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.roomLocks[roomID]
	if !ok {
		l = &sync.Mutex{}
		s.roomLocks[roomID] = l
	}
	return l
}

// WithRoomLock serializes fn per room. There is no rollback: fn sees and
// mutates the live store.
func (s *Store) WithRoomLock(ctx context.Context, roomID string, fn func(tx repositories.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	_, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return repositories.ErrNotFound
	}

	l := s.roomLock(roomID)
	l.Lock()
	defer l.Unlock()
	return fn(s)
}

// ----------------------------------------------------
// copies
// ----------------------------------------------------

func copyRoom(r models.Room) models.Room {
	if r.Amenities != nil {
		r.Amenities = append(datatypes.JSONSlice[string]{}, r.Amenities...)
	}
	return r
}

func copyGuest(g models.Guest) models.Guest {
	if g.CPF != nil {
		cpf := *g.CPF
		g.CPF = &cpf
	}
	return g
}

// attach fills Guest and Room; callers hold s.mu.
func (s *Store) attach(r models.Reservation, withRoom bool) models.Reservation {
	r.Guest, r.Room = nil, nil
	if g, ok := s.guests[r.GuestID]; ok {
		gc := copyGuest(g)
		r.Guest = &gc
	}
	if withRoom {
		if room, ok := s.rooms[r.RoomID]; ok {
			rc := copyRoom(room)
			r.Room = &rc
		}
	}
	return r
}

func sortByCheckIn(list []models.Reservation) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CheckIn.Equal(list[j].CheckIn) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].CheckIn.Before(list[j].CheckIn)
	})
}

func hasStatus(st models.ReservationStatus, statuses []models.ReservationStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

func stamp(now time.Time, created *time.Time, updated *time.Time) {
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

// ----------------------------------------------------
// rooms
// ----------------------------------------------------

type roomRepo struct{ s *Store }

func (r roomRepo) Get(ctx context.Context, id string) (*models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	rc := copyRoom(room)
	return &rc, nil
}

func (r roomRepo) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Room, 0, len(r.s.rooms))
	for _, room := range r.s.rooms {
		if filter.Type != "" && room.Type != filter.Type {
			continue
		}
		if filter.Status != "" && room.Status != filter.Status {
			continue
		}
		if filter.MinPrice != nil && room.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && room.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		out = append(out, copyRoom(room))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r roomRepo) numberTaken(number, exceptID string) bool {
	for id, room := range r.s.rooms {
		if id != exceptID && room.Number == number {
			return true
		}
	}
	return false
}

func (r roomRepo) Insert(ctx context.Context, room *models.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rooms[room.ID]; ok {
		return repositories.NewConstraintError("rooms_pkey", nil)
	}
	if r.numberTaken(room.Number, "") {
		return repositories.NewConstraintError("idx_rooms_number", nil)
	}
	stamp(r.s.now(), &room.CreatedAt, &room.UpdatedAt)
	r.s.rooms[room.ID] = copyRoom(*room)
	return nil
}

func (r roomRepo) Update(ctx context.Context, id string, update models.RoomUpdate) (*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if update.Number != nil && r.numberTaken(*update.Number, id) {
		return nil, repositories.NewConstraintError("idx_rooms_number", nil)
	}
	update.Apply(&room)
	stamp(r.s.now(), nil, &room.UpdatedAt)
	r.s.rooms[id] = room
	rc := copyRoom(room)
	return &rc, nil
}

func (r roomRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rooms[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, res := range r.s.reservations {
		if res.RoomID == id {
			return repositories.ErrReferenced
		}
	}
	delete(r.s.rooms, id)
	return nil
}

// ----------------------------------------------------
// guests
// ----------------------------------------------------

type guestRepo struct{ s *Store }

func (r guestRepo) find(match func(models.Guest) bool) (*models.Guest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, g := range r.s.guests {
		if match(g) {
			gc := copyGuest(g)
			return &gc, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r guestRepo) Get(ctx context.Context, id string) (*models.Guest, error) {
	return r.find(func(g models.Guest) bool { return g.ID == id })
}

func (r guestRepo) FindByEmail(ctx context.Context, email string) (*models.Guest, error) {
	return r.find(func(g models.Guest) bool { return strings.EqualFold(g.Email, email) })
}

func (r guestRepo) FindByCPF(ctx context.Context, cpf string) (*models.Guest, error) {
	return r.find(func(g models.Guest) bool { return g.CPF != nil && *g.CPF == cpf })
}

// checkUnique mirrors the guests_email_key and guests_cpf_key indexes.
func (r guestRepo) checkUnique(g models.Guest) error {
	for id, other := range r.s.guests {
		if id == g.ID {
			continue
		}
		if strings.EqualFold(other.Email, g.Email) {
			return repositories.NewConstraintError("guests_email_key", nil)
		}
		if g.CPF != nil && other.CPF != nil && *g.CPF == *other.CPF {
			return repositories.NewConstraintError("guests_cpf_key", nil)
		}
	}
	return nil
}

func (r guestRepo) Insert(ctx context.Context, guest *models.Guest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.guests[guest.ID]; ok {
		return repositories.NewConstraintError("guests_pkey", nil)
	}
	if err := r.checkUnique(*guest); err != nil {
		return err
	}
	stamp(r.s.now(), &guest.CreatedAt, &guest.UpdatedAt)
	r.s.guests[guest.ID] = copyGuest(*guest)
	return nil
}

func (r guestRepo) Update(ctx context.Context, id string, update models.GuestUpdate) (*models.Guest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.guests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	update.Apply(&g)
	if err := r.checkUnique(g); err != nil {
		return nil, err
	}
	stamp(r.s.now(), nil, &g.UpdatedAt)
	r.s.guests[id] = g
	gc := copyGuest(g)
	return &gc, nil
}

func (r guestRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.guests[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, res := range r.s.reservations {
		if res.GuestID == id {
			return repositories.ErrReferenced
		}
	}
	delete(r.s.guests, id)
	return nil
}

// ----------------------------------------------------
// reservations
// ----------------------------------------------------

type reservationRepo struct{ s *Store }

func (r reservationRepo) Get(ctx context.Context, id string) (*models.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := r.s.attach(res, true)
	return &out, nil
}

func (r reservationRepo) ListByRoom(ctx context.Context, roomID string, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Reservation
	for _, res := range r.s.reservations {
		if res.RoomID == roomID && hasStatus(res.Status, statuses) {
			out = append(out, r.s.attach(res, false))
		}
	}
	sortByCheckIn(out)
	return out, nil
}

func (r reservationRepo) ListByStatus(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Reservation
	for _, res := range r.s.reservations {
		if hasStatus(res.Status, statuses) {
			out = append(out, r.s.attach(res, true))
		}
	}
	sortByCheckIn(out)
	return out, nil
}

func (r reservationRepo) ListByGuest(ctx context.Context, guestID string, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Reservation
	for _, res := range r.s.reservations {
		if res.GuestID == guestID && hasStatus(res.Status, statuses) {
			out = append(out, r.s.attach(res, true))
		}
	}
	sortByCheckIn(out)
	return out, nil
}

func (r reservationRepo) Insert(ctx context.Context, reservation *models.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[reservation.ID]; ok {
		return repositories.NewConstraintError("reservations_pkey", nil)
	}
	stamp(r.s.now(), &reservation.CreatedAt, &reservation.UpdatedAt)
	stored := *reservation
	stored.Guest, stored.Room = nil, nil
	r.s.reservations[reservation.ID] = stored
	return nil
}

func (r reservationRepo) UpdateStatus(ctx context.Context, id string, from, to models.ReservationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if res.Status != from {
		return repositories.ErrStaleStatus
	}
	res.Status = to
	stamp(r.s.now(), nil, &res.UpdatedAt)
	r.s.reservations[id] = res
	return nil
}

// ----------------------------------------------------
// expenses and history
// ----------------------------------------------------

type expenseRepo struct{ s *Store }

func (r expenseRepo) Insert(ctx context.Context, expense *models.Expense) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextExpense++
	expense.ID = r.s.nextExpense
	stamp(r.s.now(), &expense.CreatedAt, nil)
	r.s.expenses = append(r.s.expenses, *expense)
	return nil
}

func (r expenseRepo) ListByGuest(ctx context.Context, guestID string) ([]models.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Expense{}
	for _, e := range r.s.expenses {
		if e.GuestID == guestID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r expenseRepo) ListByReservation(ctx context.Context, reservationID string) ([]models.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Expense{}
	for _, e := range r.s.expenses {
		if e.ReservationID == reservationID {
			out = append(out, e)
		}
	}
	return out, nil
}

type historyRepo struct{ s *Store }

func (r historyRepo) Insert(ctx context.Context, entry *models.StayHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, h := range r.s.history {
		if h.ReservationID == entry.ReservationID {
			return repositories.NewConstraintError("idx_guest_history_reservation_id", nil)
		}
	}
	stamp(r.s.now(), &entry.CreatedAt, nil)
	r.s.history = append(r.s.history, *entry)
	return nil
}

func (r historyRepo) List(ctx context.Context) ([]models.StayHistory, error) {
	return r.filter(func(models.StayHistory) bool { return true }), nil
}

func (r historyRepo) ListByGuest(ctx context.Context, guestID string) ([]models.StayHistory, error) {
	return r.filter(func(h models.StayHistory) bool { return h.GuestID == guestID }), nil
}

// filter returns newest first.
func (r historyRepo) filter(keep func(models.StayHistory) bool) []models.StayHistory {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.StayHistory{}
	for i := len(r.s.history) - 1; i >= 0; i-- {
		if keep(r.s.history[i]) {
			out = append(out, r.s.history[i])
		}
	}
	return out
}
