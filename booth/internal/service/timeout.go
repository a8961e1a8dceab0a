package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
)

type OpClass int

const (
	OpRead OpClass = iota
	OpWrite
	OpLog
)

func (c OpClass) String() string {
	switch c {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpLog:
		return "log"
	}
	return "unknown"
}

// TimeoutPolicy bounds every storage call by its class timeout. All classes
// share one discipline: a timed out call is treated as failed and retried
// with exponential backoff. Callers make retries safe with deterministic ids.
type TimeoutPolicy struct {
	Read           time.Duration
	Write          time.Duration
	Log            time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultTimeoutPolicy() TimeoutPolicy {
	return TimeoutPolicy{
		Read:           5 * time.Second,
		Write:          10 * time.Second,
		Log:            5 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

func (p TimeoutPolicy) timeout(class OpClass) time.Duration {
	switch class {
	case OpWrite:
		return p.Write
	case OpLog:
		return p.Log
	default:
		return p.Read
	}
}

func (p TimeoutPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialBackoff
	b.MaxInterval = p.MaxBackoff
	b.MaxElapsedTime = 0
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Do runs fn under the class timeout, retrying transient failures. When a
// timeout happened on the way to the final failure the returned error also
// matches errs.ErrTimeout: the operation may have been applied.
func (p TimeoutPolicy) Do(ctx context.Context, class OpClass, fn func(ctx context.Context) error) error {
	var timedOut bool
	op := func() error {
		attemptCtx := ctx
		if d := p.timeout(class); d > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, errs.ErrTimeout) {
			timedOut = true
			return errs.ErrTimeout
		}
		if !Transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	err := backoff.Retry(op, p.backOff(ctx))
	if err == nil {
		return nil
	}
	if timedOut && !errors.Is(err, errs.ErrTimeout) && Transient(err) {
		return fmt.Errorf("%w: %w", errs.ErrTimeout, err)
	}
	if errors.Is(err, errs.ErrTimeout) {
		return errors.Wrapf(err, "%s after %s", class, p.timeout(class))
	}
	return err
}

// Transient reports whether retrying err can help.
func Transient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, errs.ErrValidation),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrBatchTooLarge),
		errors.Is(err, errs.ErrReconcileIncomplete),
		errors.Is(err, errs.ErrUnreadable),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

// Uncertain reports whether a failed write may still have been applied.
func Uncertain(err error) bool {
	return errors.Is(err, errs.ErrTimeout)
}
