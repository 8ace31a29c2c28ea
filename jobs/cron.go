package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"hotel-ops/models"
)

// sweepTimeout bounds one scheduled sweep.
const sweepTimeout = 2 * time.Minute

// Sweeper is the status synchronization the scheduler drives.
type Sweeper interface {
	Run(ctx context.Context) (models.SyncReport, error)
	RunIfStale(ctx context.Context) (models.SyncReport, error)
}

// InitCronJobs registers the periodic sweep on schedule plus a forced sweep
// at midnight, when every check-in and check-out date rolls over, then starts c.
func InitCronJobs(c *cron.Cron, sweeper Sweeper, schedule string, log *zap.Logger) error {
	log = log.Named("cron")

	if _, err := c.AddFunc(schedule, func() {
		runSweep(log, "periodic", sweeper.RunIfStale)
	}); err != nil {
		return err
	}

	if _, err := c.AddFunc("0 0 * * *", func() {
		runSweep(log, "midnight", sweeper.Run)
	}); err != nil {
		return err
	}

	c.Start()
	log.Info("cron jobs initialized", zap.String("schedule", schedule))
	return nil
}

func runSweep(log *zap.Logger, name string, run func(context.Context) (models.SyncReport, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	report, err := run(ctx)
	if err != nil {
		log.Error("sweep failed", zap.String("job", name), zap.Error(err))
		return
	}
	if report.Skipped {
		log.Debug("sweep skipped", zap.String("job", name))
	}
}
