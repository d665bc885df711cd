package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeReassessor struct {
	calls atomic.Int32
}

func (f *fakeReassessor) MaybeReassess(ctx context.Context) error {
	f.calls.Add(1)
	return nil
}

func TestNetworkReassessJob_TicksManager(t *testing.T) {
	manager := &fakeReassessor{}

	scheduler := NewJobScheduler()
	scheduler.Add(NewNetworkReassessJob(manager, 10*time.Millisecond, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()
	scheduler.Shutdown()

	// RunOnStart plus at least one tick.
	if got := manager.calls.Load(); got < 2 {
		t.Errorf("expected at least 2 cadence checks, got %d", got)
	}
}
