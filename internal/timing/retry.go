package timing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry loop.
type Policy struct {
	Attempts   int
	Delay      time.Duration
	Multiplier float64
}

// DefaultPolicy is used for metadata polling.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, Multiplier: 2}

var errNotReady = errors.New("not ready")

// backOff builds an exponential schedule without jitter on clock.
func (p Policy) backOff(ctx context.Context, clock Clock) backoff.BackOff {
	attempts := max(p.Attempts, 1)
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.Delay
	exp.RandomizationFactor = 0
	exp.Multiplier = max(p.Multiplier, 1)
	exp.MaxInterval = time.Duration(math.MaxInt64)
	exp.MaxElapsedTime = 0
	exp.Clock = clock
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Retry calls fn until it reports done, returns an error on the final
// attempt, or the context ends. It returns done=false without error when
// attempts run out on a not-yet-ready result.
func Retry(ctx context.Context, clock Clock, p Policy, fn func(ctx context.Context) (bool, error)) (bool, error) {
	op := func() error {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if !done {
			return errNotReady
		}
		return nil
	}
	err := backoff.RetryNotifyWithTimer(op, p.backOff(ctx, clock), nil, &clockTimer{clock: clock})
	switch {
	case err == nil:
		return true, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	case errors.Is(err, errNotReady):
		return false, nil
	default:
		return false, fmt.Errorf("gave up after %d attempts: %w", max(p.Attempts, 1), err)
	}
}

// clockTimer adapts Clock to backoff.Timer.
type clockTimer struct {
	clock Clock
	c     chan time.Time
	timer Timer
}

func (t *clockTimer) Start(d time.Duration) {
	c := make(chan time.Time, 1)
	t.c = c
	if d <= 0 {
		c <- time.Time{}
		return
	}
	t.timer = t.clock.AfterFunc(d, func() { c <- time.Time{} })
}

func (t *clockTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *clockTimer) C() <-chan time.Time {
	return t.c
}
