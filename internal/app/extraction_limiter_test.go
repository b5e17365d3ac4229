package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractionLimiter_Unbounded(t *testing.T) {
	l := NewExtractionLimiter(0, nil)

	require.NoError(t, l.Run(context.Background(), "a", func() error { return nil }))
	assert.Error(t, l.Run(context.Background(), "b", func() error { return errors.New("boom") }))

	stats := l.Stats()
	assert.Equal(t, 0, stats.MaxConcurrent)
	assert.Equal(t, int64(0), stats.Active)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestExtractionLimiter_LimitsConcurrency(t *testing.T) {
	l := NewExtractionLimiter(2, nil)

	var (
		mu      sync.Mutex
		running int
		peak    int
		wg      sync.WaitGroup
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Run(context.Background(), "id", func() error {
				mu.Lock()
				running++
				if running > peak {
					peak = running
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, 2)
	stats := l.Stats()
	assert.Equal(t, int64(6), stats.Completed)
	assert.Equal(t, int64(0), stats.Waiting)
	assert.Equal(t, int64(0), stats.Active)
}

func TestExtractionLimiter_CancelWhileWaiting(t *testing.T) {
	l := NewExtractionLimiter(1, nil)

	started := make(chan struct{})
	finish := make(chan struct{})
	go func() {
		_ = l.Run(context.Background(), "busy", func() error {
			close(started)
			<-finish
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ran := false
	err := l.Run(ctx, "waiting", func() error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran)
	assert.Equal(t, int64(0), l.Stats().Waiting)

	close(finish)
}
