package job

import (
	"context"
	"time"
)

// reassessor is the scheduler's view of the network state manager. The
// manager itself enforces the assessment cadence; the job only ticks it.
type reassessor interface {
	MaybeReassess(ctx context.Context) error
}

// NewNetworkReassessJob ticks the network state manager so that long-lived
// sessions opportunistically refresh their view of the link. tick is how
// often the cadence check runs, not how often a probe fires.
func NewNetworkReassessJob(manager reassessor, tick, timeout time.Duration) Job {
	return Job{
		Name:       "network_reassess",
		Interval:   tick,
		Timeout:    timeout,
		RunOnStart: true,
		Fn:         manager.MaybeReassess,
	}
}
