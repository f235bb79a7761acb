package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cleanerFunc func(context.Context, time.Duration) (int64, error)

func (f cleanerFunc) DeleteExpiredRenders(ctx context.Context, retention time.Duration) (int64, error) {
	return f(ctx, retention)
}

func TestScheduleRenderCleanup(t *testing.T) {
	t.Run("success - cleanup runs with the configured retention", func(t *testing.T) {
		// arrange
		scheduler, err := NewScheduler()
		require.NoError(t, err)
		defer scheduler.Shutdown()
		retentions := make(chan time.Duration, 1)
		cleaner := cleanerFunc(func(_ context.Context, retention time.Duration) (int64, error) {
			select {
			case retentions <- retention:
			default:
			}
			return 1, nil
		})

		// act
		job, err := ScheduleRenderCleanup(scheduler, cleaner, time.Hour, 48*time.Hour)
		require.NoError(t, err)
		scheduler.Start()
		require.NoError(t, job.RunNow())

		// assert
		select {
		case retention := <-retentions:
			assert.Equal(t, 48*time.Hour, retention)
		case <-time.After(5 * time.Second):
			t.Fatal("cleanup did not run")
		}
		assert.Equal(t, "render-cleanup", job.Name())
	})
}
