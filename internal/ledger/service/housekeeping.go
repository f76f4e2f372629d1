package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
)

// HousekeepingService periodically prunes invites that expired without
// being accepted. Credit expiry needs no sweep; it is evaluated on read.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes expired invites once and reports how many were removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) (int64, error) {
	n, err := s.Store.Invites().DeleteExpiredInvites(ctx, clock(s.Now))
	if err != nil {
		s.Logger.Error("failed to delete expired invites", slog.Any("error", err))
		return 0, err
	}
	s.Logger.Info("housekeeping cleanup completed", slog.Int64("expired_invites", n))
	return n, nil
}
