package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultTimeout is the wall-clock budget for one parse.
	DefaultTimeout = 5 * time.Second
	// graceJoin is how long the harness waits for a cancelled scan to
	// acknowledge before abandoning it to background cleanup.
	graceJoin = 100 * time.Millisecond
)

// Options bound a single parse invocation.
type Options struct {
	MaxBytes int           // default DefaultMaxBytes
	Timeout  time.Duration // default DefaultTimeout
	Logger   *slog.Logger
}

func (o *Options) fill() {
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// ParseFileWithTimeout runs ParseFile as an independently cancellable
// unit of work so a pathological input cannot block the caller past
// the timeout. The cancellation signal is a fresh context per
// invocation; concurrent parses cannot interfere with each other.
func ParseFileWithTimeout(path string, opts Options) Outcome {
	opts.fill()
	return runWithTimeout(func(ctx context.Context) Outcome {
		return ParseFile(ctx, path, opts.MaxBytes)
	}, opts.Timeout, opts.Logger)
}

// runWithTimeout delivers exactly one Outcome per invocation: the unit
// of work's own result if it lands within timeout, otherwise a
// synthesized timedOut Outcome after signalling cancellation and
// waiting a bounded grace period. A panic inside the unit of work is
// converted to an errored Outcome, never propagated.
func runWithTimeout(run func(context.Context) Outcome, timeout time.Duration, log *slog.Logger) Outcome {
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// buffered so the worker can always deliver and exit, even after
	// the caller has walked away
	ch := make(chan Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- errored(fmt.Sprintf("Error parsing: %v", r))
			}
		}()
		ch <- run(ctx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		return out
	case <-timer.C:
	}

	// deadline expired: signal the scan and detach after a short
	// best-effort join
	cancel()
	select {
	case <-ch:
		log.Debug("parser.timeout.joined", "timeout", timeout)
	case <-time.After(graceJoin):
		log.Warn("parser.timeout.abandoned", "timeout", timeout, "grace", graceJoin)
	}

	return Outcome{
		Tokens: nil,
		Flag:   FlagTimedOut,
		Status: fmt.Sprintf("Parsing timed out after %s. Content may be too large or complex.", timeout),
	}
}
