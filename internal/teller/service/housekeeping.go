package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/store"
)

// housekeepingPassTimeout bounds a single cleanup pass.
const housekeepingPassTimeout = time.Minute

// HousekeepingService periodically prunes expired MFA challenges and expired
// password reset tokens.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewHousekeepingService returns a stopped service. A non-positive interval
// falls back to one hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.loop()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop blocks until any in-progress pass has finished. It is safe to call
// more than once.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		s.Logger.Info("housekeeping stopped")
	})
}

func (s *HousekeepingService) loop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		s.pass()

		select {
		case <-ticker.C:
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) pass() {
	ctx, cancel := context.WithTimeout(context.Background(), housekeepingPassTimeout)
	defer cancel()
	s.Cleanup(ctx)
}

// Cleanup runs one pass and returns the number of records pruned.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	now := time.Now()

	sessions, err := s.Store.MFASessions().DeleteExpiredMFASessions(ctx, now)
	if err != nil {
		s.Logger.Error("prune expired mfa sessions", "error", err)
	}

	resets, err := s.Store.Users().ClearExpiredResetTokens(ctx, now)
	if err != nil {
		s.Logger.Error("prune expired reset tokens", "error", err)
	}

	s.Logger.Info("housekeeping pass completed",
		"mfa_sessions_deleted", sessions,
		"reset_tokens_cleared", resets,
	)
	return sessions + resets
}
