package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingService periodically flips expired pending invitations to
// expired. Correctness never depends on it running.
type HousekeepingService struct {
	Invitations *InvitationService
	Logger      *slog.Logger
	Interval    time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a sweeper. If interval is 0 or negative,
// defaults to 1 hour.
func NewHousekeepingService(invitations *InvitationService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Invitations: invitations,
		Logger:      logger,
		Interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start runs the sweeper in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one pass and returns how many invitations it expired.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	n, err := s.Invitations.SweepExpired(ctx)
	if err != nil {
		s.Logger.Error("failed to expire pending invitations", "error", err)
		return 0
	}
	s.Logger.Info("housekeeping sweep completed", "expired_invitations", n)
	return n
}
