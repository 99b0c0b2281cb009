package util

import (
	"context"
	"time"
)

// SleepContext sleeps for 'dur' or until ctx is done, in which case the
// ctx's cause is returned.
func SleepContext(ctx context.Context, dur time.Duration) (err error) {
	timer := time.NewTimer(dur)
	defer func() {
		if err != nil && !timer.Stop() {
			<-timer.C
		}
	}()
	select {
	case <-ctx.Done():
		err = context.Cause(ctx)
		return
	case <-timer.C:
		return
	}
}

// RunEvery calls fn, then sleeps for intervalFn(), until ctx is done.
// intervalFn is asked again each time so that reloaded config applies.
// With 'immediate' false, the first call happens after one interval.
func RunEvery(ctx context.Context, intervalFn func() time.Duration, immediate bool, fn func(context.Context)) {
	if !immediate {
		if SleepContext(ctx, intervalFn()) != nil {
			return
		}
	}
	for {
		fn(ctx)
		if SleepContext(ctx, intervalFn()) != nil {
			return
		}
	}
}
