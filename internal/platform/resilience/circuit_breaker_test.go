package resilience

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(threshold int, openTimeout time.Duration, halfOpenMax int, now *time.Time) *CircuitBreaker {
	b := NewCircuitBreaker(threshold, openTimeout, halfOpenMax)
	b.now = func() time.Time { return *now }
	return b
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	t.Run("opens after consecutive failures", func(t *testing.T) {
		now := time.Now()
		b := newTestBreaker(2, time.Minute, 1, &now)

		b.RecordFailure()
		if b.State() != CircuitStateClosed {
			t.Fatalf("opened too early: %s", b.State())
		}
		b.RecordFailure()
		if b.State() != CircuitStateOpen {
			t.Fatalf("expected open, got %s", b.State())
		}
		if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("expected ErrCircuitOpen, got %v", err)
		}
	})

	t.Run("success resets the failure run", func(t *testing.T) {
		now := time.Now()
		b := newTestBreaker(2, time.Minute, 1, &now)

		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		if b.State() != CircuitStateClosed {
			t.Fatalf("expected closed, got %s", b.State())
		}
	})

	t.Run("half-open probe closes on success", func(t *testing.T) {
		now := time.Now()
		b := newTestBreaker(1, time.Minute, 1, &now)

		b.RecordFailure()
		now = now.Add(2 * time.Minute)

		if err := b.Allow(); err != nil {
			t.Fatalf("probe rejected: %v", err)
		}
		if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("second probe should be rejected, got %v", err)
		}

		b.RecordSuccess()
		if b.State() != CircuitStateClosed {
			t.Fatalf("expected closed after probe success, got %s", b.State())
		}
	})

	t.Run("half-open probe reopens on failure", func(t *testing.T) {
		now := time.Now()
		b := newTestBreaker(1, time.Minute, 1, &now)

		b.RecordFailure()
		now = now.Add(2 * time.Minute)

		if err := b.Allow(); err != nil {
			t.Fatalf("probe rejected: %v", err)
		}
		b.RecordFailure()
		if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("expected reopened circuit, got %v", err)
		}
	})
}
