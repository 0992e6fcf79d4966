package handle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Sentinel errors for upstream lookups that may succeed when repeated.
var (
	ErrTransient = &tgerr.TollgateError{
		Code:     "HANDLE_LOOKUP_TRANSIENT",
		Message:  "handle service temporarily unavailable",
		ExitCode: tgerr.ExitGeneral,
	}

	ErrRateLimited = &tgerr.TollgateError{
		Code:     "HANDLE_LOOKUP_RATE_LIMITED",
		Message:  "handle service rate limited the request",
		ExitCode: tgerr.ExitGeneral,
	}
)

// RetryPolicy configures how often an upstream lookup is attempted.
type RetryPolicy struct {
	Attempts  int           `yaml:"attempts"`   // Total attempts, including the first
	BaseDelay time.Duration `yaml:"base_delay"` // Delay before the first retry
	MaxDelay  time.Duration `yaml:"max_delay"`  // Upper bound for any single delay
}

// DefaultRetryPolicy keeps the worst case short because a user is waiting
// on the result: 3 attempts with delays up to 250ms and 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:  3,
		BaseDelay: 250 * time.Millisecond,
		MaxDelay:  2 * time.Second,
	}
}

// retryAfterError carries a delay requested by the server.
type retryAfterError struct {
	err   error
	after time.Duration
}

func (e *retryAfterError) Error() string { return e.err.Error() }
func (e *retryAfterError) Unwrap() error { return e.err }

// WithRetryAfter attaches a server-requested delay to err.
func WithRetryAfter(err error, after time.Duration) error {
	if err == nil || after <= 0 {
		return err
	}
	return &retryAfterError{err: err, after: after}
}

// RetryWithConfig runs operation until it succeeds, returns a non-retryable
// error, the attempts run out, or ctx is done. Each attempt receives ctx.
func RetryWithConfig[T any](ctx context.Context, p RetryPolicy, operation func(context.Context) (T, error)) (T, error) {
	var result T
	var err error

	attempts := max(p.Attempts, 1)
	for attempt := 0; attempt < attempts; attempt++ {
		result, err = operation(ctx)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt == attempts-1 {
			break
		}

		delay := backoff(attempt, p.BaseDelay, p.MaxDelay)
		var ra *retryAfterError
		if errors.As(err, &ra) && ra.after > delay {
			delay = min(ra.after, max(p.MaxDelay, p.BaseDelay))
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}

	if IsRetryable(err) && attempts > 1 {
		return result, fmt.Errorf("gave up after %d attempts: %w", attempts, err)
	}
	return result, err
}

// backoff doubles base per attempt up to maxDelay, then picks a jittered
// value in [delay/2, delay).
func backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base << attempt
	if delay <= 0 || (maxDelay > 0 && delay > maxDelay) {
		delay = maxDelay
	}
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + rand.N(half) //nolint:gosec // G404: Jitter does not require cryptographic randomness
}

// IsRetryable reports whether a lookup error is worth repeating.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrTransient) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ParseRetryAfter parses a Retry-After header given either as seconds or as
// an HTTP date. Returns 0 if the header is absent, malformed or in the past.
func ParseRetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(header); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
