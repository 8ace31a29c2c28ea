package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"hotel-ops/apperrors"
	"hotel-ops/models"
	"hotel-ops/repositories"
)

const DefaultSyncDebounce = time.Minute

// Synchronizer advances future reservations as their dates arrive. It owns
// the run guard and the last-run timestamp; nothing here is process-global.
type Synchronizer struct {
	store    repositories.Store
	clock    Clock
	debounce time.Duration
	log      *zap.Logger

	running  atomic.Bool
	mu       sync.Mutex
	lastRun  time.Time
	onChange []func(context.Context)
}

func NewSynchronizer(store repositories.Store, clock Clock, debounce time.Duration, log *zap.Logger) *Synchronizer {
	if debounce <= 0 {
		debounce = DefaultSyncDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{store: store, clock: clock, debounce: debounce, log: log.Named("sync")}
}

// OnChange registers a hook called after a sweep that moved at least one reservation.
func (s *Synchronizer) OnChange(fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Synchronizer) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// RunIfStale runs a sweep unless one started within the debounce window.
func (s *Synchronizer) RunIfStale(ctx context.Context) (models.SyncReport, error) {
	s.mu.Lock()
	fresh := !s.lastRun.IsZero() && s.clock.Now().Sub(s.lastRun) < s.debounce
	s.mu.Unlock()
	if fresh {
		return models.SyncReport{Skipped: true}, nil
	}
	return s.Run(ctx)
}

// Run sweeps every future reservation. A call made while another sweep is in
// flight returns immediately with Skipped set. Per-reservation failures are
// logged and counted, never returned.
func (s *Synchronizer) Run(ctx context.Context) (models.SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Debug("sweep already in progress, skipping")
		return models.SyncReport{Skipped: true}, nil
	}
	defer s.running.Store(false)

	s.mu.Lock()
	s.lastRun = s.clock.Now()
	s.mu.Unlock()

	var report models.SyncReport
	future, err := s.store.Reservations().ListByStatus(ctx, models.ReservationFuture)
	if err != nil {
		return report, apperrors.Dependency("failed to load future reservations", err)
	}

	today := s.clock.Today()
	for i := range future {
		res := future[i]
		report.Examined++

		target, due := dueStatus(res.Stay, today)
		if !due {
			continue
		}

		err := s.store.WithRoomLock(ctx, res.RoomID, func(tx repositories.Store) error {
			if target == models.ReservationActive {
				if err := ensureNoActive(ctx, tx, res.RoomID, res.ID); err != nil {
					return err
				}
			}
			return moveReservation(ctx, tx, &res, target)
		})
		switch {
		case err == nil:
			if target == models.ReservationCompleted {
				report.Completed++
			} else {
				report.Activated++
			}
			s.log.Info("reservation advanced",
				zap.String("reservation_id", res.ID),
				zap.String("room_id", res.RoomID),
				zap.String("status", string(target)))
		case repositories.IsStale(err):
			s.log.Debug("reservation moved by another writer", zap.String("reservation_id", res.ID))
		default:
			report.Failed++
			s.log.Warn("failed to advance reservation",
				zap.String("reservation_id", res.ID),
				zap.Error(err))
		}
	}

	if report.Activated+report.Completed > 0 {
		s.notify(ctx)
	}
	s.log.Info("sweep finished",
		zap.Int("examined", report.Examined),
		zap.Int("activated", report.Activated),
		zap.Int("completed", report.Completed),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *Synchronizer) notify(ctx context.Context) {
	s.mu.Lock()
	hooks := append([]func(context.Context){}, s.onChange...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

// dueStatus reports the status a future stay should hold today, if it should move.
func dueStatus(stay models.Stay, today models.Date) (models.ReservationStatus, bool) {
	switch {
	case !today.Before(stay.CheckOut):
		return models.ReservationCompleted, true
	case !today.Before(stay.CheckIn):
		return models.ReservationActive, true
	}
	return models.ReservationFuture, false
}
