// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

// TestConfig test configuration
type TestConfig struct {
	Timeout time.Duration
	Workers int
}

// TestContext simplified test context
type TestContext struct {
	t       *testing.T
	config  *TestConfig
	cleanup []func()
	mu      sync.RWMutex
}

// NewTestContext creates new test context
func NewTestContext(t *testing.T, config *TestConfig) *TestContext {
	if config == nil {
		config = &TestConfig{
			Timeout: 5 * time.Second,
			Workers: 4,
		}
	}

	tc := &TestContext{
		t:       t,
		config:  config,
		cleanup: make([]func(), 0),
	}
	t.Cleanup(tc.Cleanup)
	return tc
}

// T returns testing.T instance
func (tc *TestContext) T() *testing.T {
	return tc.t
}

// Workers returns the configured worker count
func (tc *TestContext) Workers() int {
	return tc.config.Workers
}

// Context returns context with timeout
func (tc *TestContext) Context() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), tc.config.Timeout)
	tc.AddCleanup(cancel)
	return ctx
}

// AddCleanup adds cleanup function
func (tc *TestContext) AddCleanup(fn func()) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cleanup = append(tc.cleanup, fn)
}

// Cleanup executes cleanup
func (tc *TestContext) Cleanup() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	// Execute cleanup functions in reverse order
	for i := len(tc.cleanup) - 1; i >= 0; i-- {
		tc.cleanup[i]()
	}
	tc.cleanup = nil
}

// RequireNoError asserts no error
func (tc *TestContext) RequireNoError(err error, msgAndArgs ...interface{}) {
	if !assert.NoError(tc.t, err, msgAndArgs...) {
		tc.t.FailNow()
	}
}

// AssertEventually waits for condition to be true
func (tc *TestContext) AssertEventually(condition func() bool, msgAndArgs ...interface{}) {
	assert.Eventually(tc.t, condition, tc.config.Timeout, time.Millisecond, msgAndArgs...)
}

// AssertClosedWithin fails the test if ch is not closed within the configured timeout
func (tc *TestContext) AssertClosedWithin(ch <-chan struct{}, msgAndArgs ...interface{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(tc.config.Timeout):
		return assert.Fail(tc.t, "channel was not closed in time", msgAndArgs...)
	}
}

// TrackGoroutines snapshots the running goroutines and returns a check that
// fails t if a goroutine started afterwards is still alive
func TrackGoroutines(t testing.TB) func() {
	ignore := goleak.IgnoreCurrent()
	return func() {
		t.Helper()
		goleak.VerifyNone(t, ignore)
	}
}
