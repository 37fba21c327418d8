package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/resilience"
)

func TestRetryWithBackoff_Success(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 3, InitialBackoff: 10 * time.Millisecond}

	callCount := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
		callCount++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, callCount)
}

func TestRetryWithBackoff_RetriesOnFailure(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 3, InitialBackoff: 10 * time.Millisecond}

	callCount := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
		callCount++
		if callCount < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, callCount)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: 10 * time.Millisecond}

	callCount := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
		callCount++
		return errors.New("persistent error")
	})

	require.Error(t, err)
	assert.Equal(t, 3, callCount)
}

func TestRetryWithBackoff_StopsOnPermanent(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 5, InitialBackoff: 10 * time.Millisecond}
	cause := &domain.ErrNotFound{Resource: "user", ID: "u1"}

	callCount := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
		callCount++
		return resilience.Permanent(cause)
	})

	assert.Equal(t, 1, callCount)
	var nf *domain.ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.False(t, resilience.IsPermanent(err), "cause is returned unwrapped")
}

func TestRetryWithBackoff_ZeroBackoffDoesNotPanic(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 2}

	err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
		return errors.New("boom")
	})
	assert.Error(t, err)
}

func TestRetryWithBackoff_RespectsContext(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 5, InitialBackoff: 1 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := resilience.RetryWithBackoff(ctx, cfg, func() error {
		return errors.New("error")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProtect_OpensCircuit(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test", zap.NewNop())
	cfg := resilience.Config{MaxRetries: 0}

	for i := 0; i < 5; i++ {
		_ = resilience.Protect(context.Background(), cb, cfg, "svc", func() error {
			return errors.New("down")
		})
	}

	err := resilience.Protect(context.Background(), cb, cfg, "svc", func() error { return nil })
	var open *domain.ErrCircuitOpen
	require.ErrorAs(t, err, &open)
	assert.Equal(t, "svc", open.Service)
}

func TestProtect_NotFoundDoesNotTrip(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test-nf", zap.NewNop())
	cfg := resilience.Config{MaxRetries: 0}

	for i := 0; i < 10; i++ {
		err := resilience.Protect(context.Background(), cb, cfg, "svc", func() error {
			return resilience.Permanent(&domain.ErrNotFound{Resource: "user", ID: "x"})
		})
		var nf *domain.ErrNotFound
		require.ErrorAs(t, err, &nf)
	}
}

func TestBulkhead_AcquireRelease(t *testing.T) {
	bh := resilience.NewBulkhead(2)

	require.NoError(t, bh.Acquire(context.Background()))
	require.NoError(t, bh.Acquire(context.Background()))

	// third acquire blocks until the context expires
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, bh.Acquire(ctx))

	bh.Release()
	assert.NoError(t, bh.Acquire(context.Background()))
}

func TestBulkhead_Do(t *testing.T) {
	bh := resilience.NewBulkhead(1)

	ran := false
	err := bh.Do(context.Background(), func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	// slot was released
	require.NoError(t, bh.Acquire(context.Background()))
	bh.Release()
}
