package testutil

import (
	"context"
	"testing"
	"time"
)

// TestContext creates a context with timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// FixedClock returns a clock function pinned to the given instant, for
// deterministic validation timestamps.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// AssertEventually asserts that a condition is met within a timeout
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, tick time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-timer.C:
			t.Fatal(append([]interface{}{"condition not met within timeout"}, msgAndArgs...)...)
		case <-ticker.C:
			if condition() {
				return
			}
		}
	}
}
