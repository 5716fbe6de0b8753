package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_StartsInClosedState(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig())

	assert.Equal(t, CircuitClosed, cb.State("cms"))
	assert.True(t, cb.Allow("cms"))
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailThreshold: 5,
		Cooldown:      30 * time.Second,
		FailWindow:    60 * time.Second,
	})

	for i := 0; i < 5; i++ {
		cb.RecordFailure("cms")
	}

	assert.Equal(t, CircuitOpen, cb.State("cms"))
	assert.False(t, cb.Allow("cms"))
}

func TestCircuitBreaker_CooldownTransitionsToHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailThreshold: 1,
		Cooldown:      1 * time.Millisecond, // very short for testing
		FailWindow:    60 * time.Second,
	})

	cb.RecordFailure("cms")
	assert.Equal(t, CircuitOpen, cb.State("cms"))

	// Wait for cooldown to elapse.
	time.Sleep(5 * time.Millisecond)

	// Allow should transition to half-open and return true.
	assert.True(t, cb.Allow("cms"))
	assert.Equal(t, CircuitHalfOpen, cb.State("cms"))
}

func TestCircuitBreaker_HalfOpenSuccess_ResetsToClosed(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailThreshold: 1,
		Cooldown:      1 * time.Millisecond,
		FailWindow:    60 * time.Second,
	})

	cb.RecordFailure("cms")
	time.Sleep(5 * time.Millisecond)
	cb.Allow("cms") // transitions to half-open

	cb.RecordSuccess("cms")
	assert.Equal(t, CircuitClosed, cb.State("cms"))
	assert.True(t, cb.Allow("cms"))
}

func TestCircuitBreaker_HalfOpenFailure_ReOpens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailThreshold: 1,
		Cooldown:      1 * time.Millisecond,
		FailWindow:    60 * time.Second,
	})

	cb.RecordFailure("cms")
	time.Sleep(5 * time.Millisecond)
	cb.Allow("cms") // transitions to half-open

	cb.RecordFailure("cms")
	assert.Equal(t, CircuitOpen, cb.State("cms"))
	assert.False(t, cb.Allow("cms"))
}

func TestCircuitBreaker_FailWindowResetsCounter(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailThreshold: 3,
		Cooldown:      30 * time.Second,
		FailWindow:    1 * time.Millisecond, // very short for testing
	})

	// Record 2 failures.
	cb.RecordFailure("cms")
	cb.RecordFailure("cms")

	// Wait for fail window to expire.
	time.Sleep(5 * time.Millisecond)

	// Next failure should reset counter to 1 (not accumulate to 3).
	cb.RecordFailure("cms")
	assert.Equal(t, CircuitClosed, cb.State("cms"))
	assert.True(t, cb.Allow("cms"))
}

func TestCircuitBreaker_DefaultConfig(t *testing.T) {
	// Zero-value config should get proper defaults.
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	// Verify defaults by tripping the breaker at exactly 5 failures.
	for i := 0; i < 4; i++ {
		cb.RecordFailure("cms")
	}
	assert.Equal(t, CircuitClosed, cb.State("cms"))

	cb.RecordFailure("cms")
	assert.Equal(t, CircuitOpen, cb.State("cms"))
}

func TestCircuitBreaker_IndependentCircuits(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailThreshold: 1,
		Cooldown:      30 * time.Second,
		FailWindow:    60 * time.Second,
	})

	cb.RecordFailure("generator")
	assert.Equal(t, CircuitOpen, cb.State("generator"))
	assert.Equal(t, CircuitClosed, cb.State("cms"))
	assert.True(t, cb.Allow("cms"))
}
