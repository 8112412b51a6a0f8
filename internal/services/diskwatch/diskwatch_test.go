package diskwatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeBroadcaster struct {
	calls int
}

func (f *fakeBroadcaster) Broadcast(_ context.Context) error {
	f.calls++
	return nil
}

func TestTickRequestsCleanupPastThreshold(t *testing.T) {
	broadcast := &fakeBroadcaster{}
	w := New("/", time.Hour, 0.0001, nil, broadcast)

	w.tick(context.Background())

	assert.True(t, w.CleanupRequested())
	assert.Equal(t, 1, broadcast.calls)
}

func TestTickLeavesFlagClearBelowThreshold(t *testing.T) {
	w := New("/", time.Hour, 0.9999, nil, nil)

	w.tick(context.Background())

	assert.False(t, w.CleanupRequested())
}

func TestClearCleanupRequestedResetsFlag(t *testing.T) {
	w := New("/", time.Hour, 0.0001, nil, nil)

	w.tick(context.Background())
	assert.True(t, w.CleanupRequested())

	w.ClearCleanupRequested()
	assert.False(t, w.CleanupRequested())
}

func TestNewFallsBackToDefaultsOnZeroValues(t *testing.T) {
	w := New("/", 0, 0, nil, nil)

	assert.Equal(t, defaultInterval, w.interval)
	assert.Equal(t, defaultThreshold, w.threshold)
}

func TestTickWithoutBroadcasterDoesNotPanic(t *testing.T) {
	w := New("/", time.Hour, 0.0001, nil, nil)

	assert.NotPanics(t, func() {
		w.tick(context.Background())
	})
}

func TestStopEndsRun(t *testing.T) {
	w := New("/", time.Millisecond, 0.9999, nil, nil)

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	w.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
