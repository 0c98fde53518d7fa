package pacer

import (
	"context"
	"time"

	"PaperCrawler/internal/ports"
)

// FixedPacer waits the same delay on every call.
type FixedPacer struct {
	delay time.Duration
}

var _ ports.Pacer = (*FixedPacer)(nil)

// NewFixedPacer builds a pacer; a non-positive delay makes Pause return immediately.
func NewFixedPacer(delay time.Duration) *FixedPacer {
	return &FixedPacer{delay: delay}
}

// Delay reports the configured wait.
func (p *FixedPacer) Delay() time.Duration {
	return p.delay
}

// Pause blocks for the delay or until ctx is done.
func (p *FixedPacer) Pause(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
