package toolrunner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedRunner wraps a Runner with a process-local token bucket,
// grounded on features/model/middleware's use of golang.org/x/time/rate —
// simplified to a flat per-call rate rather than that package's adaptive
// AIMD token-per-minute scheme, since ToolRunner dispatch here has no
// provider-reported backoff signal to adapt to.
type RateLimitedRunner struct {
	next    Runner
	limiter *rate.Limiter
}

// NewRateLimitedRunner wraps next with a limiter allowing up to callsPerSecond
// sustained calls and burst concurrent calls.
func NewRateLimitedRunner(next Runner, callsPerSecond float64, burst int) *RateLimitedRunner {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedRunner{next: next, limiter: rate.NewLimiter(rate.Limit(callsPerSecond), burst)}
}

// Call blocks until the limiter admits the call or ctx is done, then
// delegates to the wrapped Runner.
func (r *RateLimitedRunner) Call(ctx context.Context, name string, args map[string]any) (Outcome, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Outcome{}, fmt.Errorf("toolrunner: rate limit wait: %w", err)
	}
	return r.next.Call(ctx, name, args)
}

// TimeoutRunner wraps a Runner with a hard per-call deadline, matching
// spec.md §6's 30s tool invocation timeout enforced by the executor.
type TimeoutRunner struct {
	next    Runner
	timeout time.Duration
}

// NewTimeoutRunner wraps next with timeout as the default deadline applied
// to every call whose context has no earlier deadline already.
func NewTimeoutRunner(next Runner, timeout time.Duration) *TimeoutRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TimeoutRunner{next: next, timeout: timeout}
}

func (r *TimeoutRunner) Call(ctx context.Context, name string, args map[string]any) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		out Outcome
		err error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := r.next.Call(ctx, name, args)
		ch <- result{out, err}
	}()

	select {
	case res := <-ch:
		return res.out, res.err
	case <-ctx.Done():
		return Outcome{OK: false, Error: "tool call timed out"}, nil
	}
}
