// Package janitor periodically removes expired verification entries.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shandysiswandi/phoneotp/internal/pkg/clock"
	"github.com/shandysiswandi/phoneotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
)

// DefaultInterval is the sweep period when none is configured.
const DefaultInterval = time.Minute

type sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Stats summarizes the sweeps run so far.
type Stats struct {
	Runs      int64
	Removed   int64
	Failures  int64
	LastRunAt time.Time
}

// Janitor runs Sweep on a cron schedule.
type Janitor struct {
	store    sweeper
	clock    clock.Clocker
	cron     *cron.Cron
	interval time.Duration
	removed  metric.Int64Counter

	runs        atomic.Int64
	removedTot  atomic.Int64
	failures    atomic.Int64
	lastRunUnix atomic.Int64
}

// Option customises the Janitor.
type Option func(*Janitor)

// WithCron injects a preconfigured cron instance.
func WithCron(c *cron.Cron) Option {
	return func(j *Janitor) {
		if c != nil {
			j.cron = c
		}
	}
}

// WithInterval overrides the sweep period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(j *Janitor) {
		if d > 0 {
			j.interval = d
		}
	}
}

// WithClock overrides the clock used for expiry comparisons.
func WithClock(c clock.Clocker) Option {
	return func(j *Janitor) {
		if c != nil {
			j.clock = c
		}
	}
}

// WithInstrument records the removed count on the given meter provider.
func WithInstrument(ins instrument.Instrumentation) Option {
	return func(j *Janitor) {
		if ins == nil {
			return
		}
		c, err := ins.Meter("verification.janitor").Int64Counter("verification.sweep.removed",
			metric.WithDescription("Expired verification entries removed by the janitor"))
		if err != nil {
			slog.Error("failed to create sweep counter", "error", err)
			return
		}
		j.removed = c
	}
}

func New(store sweeper, opts ...Option) *Janitor {
	j := &Janitor{
		store:    store,
		clock:    clock.New(),
		interval: DefaultInterval,
	}

	for _, opt := range opts {
		opt(j)
	}

	if j.cron == nil {
		j.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return j
}

// Start registers the sweep job and launches the scheduler.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), func() {
		if _, err := j.RunOnce(context.Background()); err != nil {
			slog.Warn("verification sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("janitor: schedule sweep: %w", err)
	}

	j.cron.Start()
	slog.Info("verification janitor started", "interval", j.interval.String())
	return nil
}

// Stop halts the scheduler. The returned context is done once a running sweep
// has finished.
func (j *Janitor) Stop() context.Context {
	if j.cron == nil {
		return context.Background()
	}
	return j.cron.Stop()
}

// RunOnce performs a single sweep at the clock's current time.
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	now := j.clock.Now()
	j.runs.Inc()
	j.lastRunUnix.Store(now.UnixNano())

	n, err := j.store.Sweep(ctx, now)
	if n > 0 {
		j.removedTot.Add(int64(n))
		if j.removed != nil {
			j.removed.Add(ctx, int64(n))
		}
		slog.InfoContext(ctx, "cleaned up expired verification entries", "removed", n)
	}
	if err != nil {
		j.failures.Inc()
		return n, fmt.Errorf("janitor: sweep: %w", err)
	}

	return n, nil
}

// Stats returns counters accumulated since New.
func (j *Janitor) Stats() Stats {
	s := Stats{
		Runs:     j.runs.Load(),
		Removed:  j.removedTot.Load(),
		Failures: j.failures.Load(),
	}
	if ns := j.lastRunUnix.Load(); ns != 0 {
		s.LastRunAt = time.Unix(0, ns).UTC()
	}
	return s
}
