package db

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultCleanupInterval = 1 * time.Hour
)

// CleanupService periodically removes device rows whose refresh token could
// no longer verify anyway. Rejection-on-use stays the authoritative expiry
// mechanism; this only reclaims dead sessions.
type CleanupService struct {
	devices    *DeviceRepository
	refreshTTL time.Duration
	interval   time.Duration
}

func NewCleanupService(devices *DeviceRepository, refreshTTL time.Duration) *CleanupService {
	return &CleanupService{
		devices:    devices,
		refreshTTL: refreshTTL,
		interval:   DefaultCleanupInterval,
	}
}

func (s *CleanupService) Start(ctx context.Context) {
	slog.Info("starting session cleanup service", "component", "cleanup", "interval", s.interval)

	s.runCleanup()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping session cleanup service", "component", "cleanup")
			return
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

func (s *CleanupService) runCleanup() {
	deleted, err := s.devices.DeleteExpired(time.Now().UTC().Add(-s.refreshTTL))
	if err != nil {
		slog.Error("error deleting expired devices", "component", "cleanup", "error", err)
	} else if deleted > 0 {
		slog.Info("deleted expired devices", "component", "cleanup", "count", deleted)
	}
}
