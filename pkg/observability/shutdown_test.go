package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownManager(t *testing.T) {
	logger := NewLogger(ErrorLevel, io.Discard)

	t.Run("runs registered functions on signal", func(t *testing.T) {
		manager := NewShutdownManager(logger, &http.Server{}, 5*time.Second)

		ran := make(chan struct{})
		manager.RegisterShutdownFunc(func(ctx context.Context) error {
			close(ran)
			return nil
		})

		result := make(chan error, 1)
		go func() { result <- manager.WaitForShutdown() }()

		// Give WaitForShutdown time to install the signal handler
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

		select {
		case err := <-result:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("shutdown did not complete")
		}

		select {
		case <-ran:
		default:
			t.Fatal("shutdown function did not run")
		}
	})

	t.Run("reports cleanup failures", func(t *testing.T) {
		manager := NewShutdownManager(logger, &http.Server{}, 5*time.Second)
		manager.RegisterShutdownFunc(func(ctx context.Context) error {
			return errors.New("close failed")
		})

		result := make(chan error, 1)
		go func() { result <- manager.WaitForShutdown() }()

		time.Sleep(50 * time.Millisecond)
		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

		select {
		case err := <-result:
			assert.Error(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("shutdown did not complete")
		}
	})
}

func TestRecoverPanic(t *testing.T) {
	logger := NewLogger(ErrorLevel, io.Discard)

	assert.NotPanics(t, func() {
		defer RecoverPanic(logger, "test")
		panic("boom")
	})
}
