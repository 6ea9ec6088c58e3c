package service

import (
	"context"
	"time"

	"filehost/internal/logger"
)

// UsageScannerService keeps storageUsed close to what is on disk.
type UsageScannerService struct {
	usage *usageTracker
	log   *logger.Logger
}

func NewUsageScannerService(usage *usageTracker, log *logger.Logger) *UsageScannerService {
	return &UsageScannerService{usage: usage, log: log}
}

// Run scans at the given interval until ctx is canceled. A non-positive interval disables it.
func (s *UsageScannerService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.scanOnce(ctx)
		}
	}
}

func (s *UsageScannerService) scanOnce(ctx context.Context) {
	start := time.Now()
	n, err := s.usage.scan(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warnw("usage_scan_failed", "err", err)
		}
		return
	}
	s.log.Debugw("usage_scan_done", "users", n, "took", time.Since(start))
}
