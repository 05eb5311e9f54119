package notify

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallchat/portal/pkg/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

// fastPolicy retries almost immediately so tests stay quick
func fastPolicy(maxAttempts int) *RetryPolicy {
	return NewRetryPolicy(RetryConfig{
		MaxAttempts:       maxAttempts,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	})
}

func newTestQueue(t *testing.T, maxAttempts int) *Queue {
	t.Helper()
	metrics := NewMetrics(prometheus.NewRegistry())
	queue := NewQueue(2, 16, fastPolicy(maxAttempts), testLogger(), metrics)
	queue.Start()
	return queue
}

func TestQueueRunsTask(t *testing.T) {
	queue := newTestQueue(t, 3)
	done := make(chan struct{})

	require.NoError(t, queue.Enqueue(Task{
		Name: "test",
		Run: func(ctx context.Context) error {
			close(done)
			return nil
		},
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	queue.Close()
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	queue := newTestQueue(t, 5)
	var attempts atomic.Int32
	done := make(chan struct{})

	require.NoError(t, queue.Enqueue(Task{
		Name: "flaky",
		Run: func(ctx context.Context) error {
			if attempts.Add(1) < 3 {
				return errors.New("transient failure")
			}
			close(done)
			return nil
		},
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never succeeded")
	}
	assert.Equal(t, int32(3), attempts.Load())
	queue.Close()
}

func TestQueueGivesUpAfterMaxAttempts(t *testing.T) {
	queue := newTestQueue(t, 2)
	var attempts atomic.Int32

	require.NoError(t, queue.Enqueue(Task{
		Name: "doomed",
		Run: func(ctx context.Context) error {
			attempts.Add(1)
			return errors.New("permanent failure")
		},
	}))

	queue.Close()
	assert.Equal(t, int32(2), attempts.Load())
}

func TestQueueDrainsOnClose(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	queue := NewQueue(1, 16, fastPolicy(1), testLogger(), metrics)
	queue.Start()

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, queue.Enqueue(Task{
			Name: "drain",
			Run: func(ctx context.Context) error {
				ran.Add(1)
				return nil
			},
		}))
	}

	queue.Close()
	assert.Equal(t, int32(10), ran.Load())
}

func TestQueueRejectsWhenFull(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	queue := NewQueue(1, 1, fastPolicy(1), testLogger(), metrics)
	// Not started: nothing consumes, so the buffer fills.

	require.NoError(t, queue.Enqueue(Task{Name: "first", Run: func(context.Context) error { return nil }}))
	err := queue.Enqueue(Task{Name: "second", Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestQueueRejectsAfterClose(t *testing.T) {
	queue := newTestQueue(t, 1)
	queue.Close()

	err := queue.Enqueue(Task{Name: "late", Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestRetryPolicyBackoff(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{
		MaxAttempts:       4,
		InitialDelay:      time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	})

	assert.Equal(t, time.Second, policy.NextRetryDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextRetryDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextRetryDelay(3))

	t.Run("caps at max delay", func(t *testing.T) {
		assert.Equal(t, 10*time.Second, policy.NextRetryDelay(30))
	})

	t.Run("attempt budget", func(t *testing.T) {
		assert.True(t, policy.ShouldRetry(3))
		assert.False(t, policy.ShouldRetry(4))
	})
}
