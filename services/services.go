package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hotel-ops/cache"
	"hotel-ops/repositories"
)

const (
	roomsCachePrefix = "rooms:"
	statsCachePrefix = "stats:"
)

// Deps are the collaborators every service shares.
type Deps struct {
	Store repositories.Store
	Cache cache.Cache
	Sync  *Synchronizer
	Clock Clock
	Log   *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Clock.Now == nil {
		d.Clock = SystemClock(d.Clock.Location)
	}
	if d.Clock.Location == nil {
		d.Clock.Location = time.Local
	}
	return d
}

// InvalidateReadModels drops cached room listings and statistics. Failures
// only cost freshness, so they are logged.
func (d Deps) InvalidateReadModels(ctx context.Context) {
	for _, prefix := range []string{roomsCachePrefix, statsCachePrefix} {
		if err := d.Cache.InvalidatePrefix(ctx, prefix); err != nil {
			d.Log.Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
		}
	}
}

// syncBeforeRead gives reads a fresh view of time-driven status changes.
func (d Deps) syncBeforeRead(ctx context.Context) {
	if d.Sync == nil {
		return
	}
	if _, err := d.Sync.RunIfStale(ctx); err != nil {
		d.Log.Warn("status synchronization failed", zap.Error(err))
	}
}
