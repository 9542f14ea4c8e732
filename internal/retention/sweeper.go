package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kestrel-hq/kestrel/internal/config"
	"github.com/kestrel-hq/kestrel/internal/database"
	"github.com/robfig/cron/v3"
)

// lockResource names the distributed lock guarding retention sweeps
const lockResource = "webhook_log_retention"

// Sweeper periodically deletes audit log entries older than the
// configured retention window. A distributed lock ensures only one
// replica sweeps per scheduled run.
type Sweeper struct {
	cfg      *config.Config
	logs     *database.LogRepository
	locks    *database.LockRepository
	schedule cron.Schedule
	podID    string
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSweeper creates a new retention sweeper. The schedule is a
// standard five-field cron expression.
func NewSweeper(cfg *config.Config, logs *database.LogRepository, locks *database.LockRepository) (*Sweeper, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cfg.RetentionSchedule)
	if err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", cfg.RetentionSchedule, err)
	}

	podID, err := os.Hostname()
	if err != nil {
		podID = uuid.New().String()
		slog.Warn("Failed to get hostname, using UUID as pod ID", "pod_id", podID)
	}

	return &Sweeper{
		cfg:      cfg,
		logs:     logs,
		locks:    locks,
		schedule: schedule,
		podID:    podID,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins the sweeper tick loop
func (s *Sweeper) Start(ctx context.Context) {
	if !s.cfg.RetentionEnabled {
		slog.Info("Retention sweeper is disabled by configuration")
		return
	}

	slog.Info("Starting retention sweeper",
		"pod_id", s.podID,
		"schedule", s.cfg.RetentionSchedule,
		"window", s.cfg.RetentionWindow.String(),
	)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop gracefully stops the sweeper and releases its locks
func (s *Sweeper) Stop(ctx context.Context) {
	if !s.cfg.RetentionEnabled {
		return
	}

	close(s.stopChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("Timeout waiting for retention sweep to complete")
	}

	if err := s.locks.ReleaseAll(context.Background(), s.podID); err != nil {
		slog.Error("Failed to release retention locks during shutdown", "error", err)
	}

	slog.Info("Retention sweeper stopped", "pod_id", s.podID)
}

// run is the main sweeper loop
func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	next := s.schedule.Next(time.Now().UTC())
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if now.UTC().After(next) {
				s.sweep(ctx)
				next = s.schedule.Next(now.UTC())
			}
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep performs one retention pass under the distributed lock
func (s *Sweeper) sweep(ctx context.Context) {
	acquired, err := s.locks.Acquire(ctx, lockResource, s.podID, s.cfg.RetentionLockTTL)
	if err != nil {
		slog.Error("Failed to acquire retention lock", "error", err)
		return
	}
	if !acquired {
		slog.Debug("Retention lock held by another pod", "pod_id", s.podID)
		return
	}
	defer func() {
		if err := s.locks.Release(ctx, lockResource, s.podID); err != nil {
			slog.Error("Failed to release retention lock", "error", err)
		}
	}()

	cutoff := time.Now().UTC().Add(-s.cfg.RetentionWindow)

	deleted, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("Retention sweep failed", "error", err)
		return
	}

	slog.Info("Retention sweep completed",
		"pod_id", s.podID,
		"cutoff", cutoff.Format(time.RFC3339),
		"deleted", deleted,
	)
}
