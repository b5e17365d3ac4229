package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/yt-fetch-go/internal/domain"
)

// ExtractionLimiter bounds how many extractor processes run at once.
// Requests beyond the limit wait for a free slot.
type ExtractionLimiter struct {
	slots  chan struct{} // nil when unbounded
	logger *zap.Logger
	mu     sync.RWMutex
	stats  domain.ExtractionStats
}

// NewExtractionLimiter creates a limiter; maxConcurrent <= 0 disables the limit
func NewExtractionLimiter(maxConcurrent int, logger *zap.Logger) *ExtractionLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &ExtractionLimiter{logger: logger}
	if maxConcurrent > 0 {
		l.slots = make(chan struct{}, maxConcurrent)
		l.stats.MaxConcurrent = maxConcurrent
	}
	return l
}

// Run waits for a slot and runs fn in it. Cancelling ctx only abandons
// the wait; once fn starts it runs to completion.
func (l *ExtractionLimiter) Run(ctx context.Context, videoID string, fn func() error) error {
	if err := l.acquire(ctx, videoID); err != nil {
		return err
	}
	defer l.release()

	err := fn()

	l.mu.Lock()
	if err != nil {
		l.stats.Failed++
	} else {
		l.stats.Completed++
	}
	l.mu.Unlock()

	return err
}

// Stats returns a snapshot of the queue counters
func (l *ExtractionLimiter) Stats() domain.ExtractionStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

func (l *ExtractionLimiter) acquire(ctx context.Context, videoID string) error {
	if l.slots == nil {
		l.mu.Lock()
		l.stats.Active++
		l.mu.Unlock()
		return nil
	}

	select {
	case l.slots <- struct{}{}:
	default:
		l.mu.Lock()
		l.stats.Waiting++
		l.mu.Unlock()
		l.logger.Debug("Waiting for extraction slot", zap.String("video_id", videoID))

		select {
		case l.slots <- struct{}{}:
			l.mu.Lock()
			l.stats.Waiting--
			l.mu.Unlock()
		case <-ctx.Done():
			l.mu.Lock()
			l.stats.Waiting--
			l.mu.Unlock()
			return ctx.Err()
		}
	}

	l.mu.Lock()
	l.stats.Active++
	l.mu.Unlock()
	return nil
}

func (l *ExtractionLimiter) release() {
	l.mu.Lock()
	l.stats.Active--
	l.mu.Unlock()

	if l.slots != nil {
		<-l.slots
	}
}
