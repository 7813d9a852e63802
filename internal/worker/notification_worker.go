package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fleetflow/console/internal/clock"
	"github.com/fleetflow/console/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// Reaper is the part of the watch service the reaper drives.
type Reaper interface {
	Reap() int
}

// StartSubscriptionReaper closes idle realtime subscriptions every
// interval until ctx is cancelled. The returned channel closes once the
// loop has exited.
func StartSubscriptionReaper(ctx context.Context, reaper Reaper, clk clock.Clock, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if reaper == nil || interval <= 0 {
		close(done)
		return done
	}
	if clk == nil {
		clk = clock.Real()
	}

	ticker := clk.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Debug("subscription reaper stopped")
				return
			case <-ticker.C:
				if n := reaper.Reap(); n > 0 {
					logger.Debug("subscription reaper pass", zap.Int("reaped", n))
				}
			}
		}
	}()
	return done
}
