package plugin

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

const (
	// DefaultDeleteRetries is the number of retries after the first failed
	// delete attempt.
	DefaultDeleteRetries = 3
	// DefaultDeleteBackoff is the pause between delete attempts.
	DefaultDeleteBackoff = 3 * time.Second
)

// RetryingDeleter removes directory trees, retrying transient failures such
// as files held open by a scanner or an editor.
type RetryingDeleter struct {
	fs      ports.FileSystem
	logger  ports.Logger
	retries int
	backoff time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// DeleterOption configures a RetryingDeleter.
type DeleterOption func(*RetryingDeleter)

// WithRetries sets the number of retries after the first attempt.
func WithRetries(n int) DeleterOption {
	return func(d *RetryingDeleter) {
		if n >= 0 {
			d.retries = n
		}
	}
}

// WithBackoff sets the fixed pause between attempts.
func WithBackoff(backoff time.Duration) DeleterOption {
	return func(d *RetryingDeleter) {
		d.backoff = backoff
	}
}

// WithDeleterLogger sets the logger.
func WithDeleterLogger(l ports.Logger) DeleterOption {
	return func(d *RetryingDeleter) {
		d.logger = l
	}
}

// withSleep replaces the pause between attempts. Tests use it to observe
// backoffs without waiting.
func withSleep(fn func(ctx context.Context, d time.Duration) error) DeleterOption {
	return func(d *RetryingDeleter) {
		d.sleep = fn
	}
}

// NewRetryingDeleter creates a deleter with three retries and a three
// second backoff.
func NewRetryingDeleter(fsys ports.FileSystem, opts ...DeleterOption) *RetryingDeleter {
	d := &RetryingDeleter{
		fs:      fsys,
		logger:  discardLogger{},
		retries: DefaultDeleteRetries,
		backoff: DefaultDeleteBackoff,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delete removes path and everything below it. After the last failed
// attempt it returns a *DeleteRetryExhaustedError.
func (d *RetryingDeleter) Delete(ctx context.Context, path string) error {
	attempts := d.retries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = d.attempt(path)
		if lastErr == nil {
			return nil
		}

		logFrom(ctx, d.logger).Warn(ctx, "delete attempt failed", ports.F("path", path), ports.F("attempt", attempt), ports.Err(lastErr))
		if attempt == attempts {
			break
		}
		if err := d.sleep(ctx, d.backoff); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		logFrom(ctx, d.logger).Info(ctx, "retrying delete", ports.F("path", path), ports.F("retries_left", attempts-attempt))
	}

	return &DeleteRetryExhaustedError{Path: path, Attempts: attempts, Err: lastErr}
}

func (d *RetryingDeleter) attempt(path string) error {
	if err := d.fs.ClearReadOnly(path); err != nil {
		return err
	}
	return d.fs.RemoveAll(path)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
