// Package lock serializes game transitions
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/mcoot/killergame/internal/model"
)

// Locker is a mutual exclusion around one read-validate-write transition
type Locker interface {
	// Lock blocks until the lock is held or the wait times out.
	// The returned func releases the lock and must be called exactly once.
	Lock(ctx context.Context) (unlock func(), err error)
}

// Local is a process-wide lock honouring context cancellation
type Local struct {
	sem     chan struct{}
	timeout time.Duration
}

// NewLocal creates a process-wide lock. A zero timeout waits as long as ctx allows.
func NewLocal(timeout time.Duration) *Local {
	return &Local{sem: make(chan struct{}, 1), timeout: timeout}
}

var _ Locker = (*Local)(nil)

func (l *Local) Lock(ctx context.Context) (func(), error) {
	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, waitFailed(ctx.Err())
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func waitFailed(err error) error {
	return fmt.Errorf("%w: waiting for transition lock: %w", model.ErrBackendUnavailable, err)
}
