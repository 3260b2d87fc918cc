package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/ideavaultapp/ideavault-server/internal/logger"
	"github.com/ideavaultapp/ideavault-server/internal/service"
)

// sessionCleanupInterval is how often expired sessions are purged.
const sessionCleanupInterval = 1 * time.Hour

// SessionCleanupJob periodically removes expired sessions from the store.
type SessionCleanupJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	select {
	case <-j.done:
	case <-time.After(shutdownTimeout):
	}
	return nil
}

// ProvideSessionCleanupJob starts the background session cleanup loop.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	job := &SessionCleanupJob{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(job.done)

		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				count, err := sessionService.DeleteExpiredSessions(ctx)
				if err != nil {
					log.Warn("Session cleanup failed", "error", err)
					continue
				}
				if count > 0 {
					log.Info("Expired sessions removed", "count", count)
				}
			}
		}
	}()

	log.Info("Session cleanup job started", "interval", sessionCleanupInterval)

	return job, nil
}
