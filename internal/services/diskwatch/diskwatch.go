// Package diskwatch implements C7: a periodic free-space sampler that
// signals every worker to purge its build directory when the working
// mount crosses a utilization threshold.
package diskwatch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/ecoci/ecoci/pkg/mlog"
)

const (
	defaultInterval  = 30 * time.Second
	defaultThreshold = 0.80
)

// Broadcaster is the optional cross-process fan-out hook (the redis
// adapter's CleanupBroadcaster); nil means single-process only.
type Broadcaster interface {
	Broadcast(ctx context.Context) error
}

// Watchdog samples disk.Usage(path) on a fixed interval and flips an
// atomic "cleanup requested" flag workers consult between tasks.
type Watchdog struct {
	path      string
	interval  time.Duration
	threshold float64
	logger    mlog.Logger
	broadcast Broadcaster

	requested atomic.Bool
	wake      chan struct{}
	stop      chan struct{}
}

// New builds a watchdog for path with the given interval/threshold; a
// zero interval or threshold falls back to the spec defaults (30s,
// 0.80).
func New(path string, interval time.Duration, threshold float64, logger mlog.Logger, broadcast Broadcaster) *Watchdog {
	if interval <= 0 {
		interval = defaultInterval
	}

	if threshold <= 0 {
		threshold = defaultThreshold
	}

	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return &Watchdog{
		path:      path,
		interval:  interval,
		threshold: threshold,
		logger:    logger,
		broadcast: broadcast,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}, 1),
	}
}

// Run blocks sampling on the configured interval until ctx is
// cancelled or Stop is called, whichever comes first. Stop signals a
// one-slot stop channel, separate from the interval ticker, so a Stop
// issued before Run starts waiting still ends it.
func (w *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.tick(ctx)
		case <-w.wake:
			w.tick(ctx)
		}
	}
}

// Stop wakes the watcher immediately and ends Run.
func (w *Watchdog) Stop() {
	select {
	case w.stop <- struct{}{}:
	default:
	}
}

func (w *Watchdog) tick(ctx context.Context) {
	usage, err := disk.UsageWithContext(ctx, w.path)
	if err != nil {
		w.logger.Errorf("diskwatch: sampling %q failed: %v", w.path, err)
		return
	}

	fraction := usage.UsedPercent / 100.0
	if fraction < w.threshold {
		return
	}

	w.logger.Warnf("diskwatch: %q at %.1f%% used, requesting cleanup", w.path, usage.UsedPercent)
	w.requested.Store(true)

	if w.broadcast != nil {
		if err := w.broadcast.Broadcast(ctx); err != nil {
			w.logger.Errorf("diskwatch: broadcast failed: %v", err)
		}
	}
}

// CleanupRequested reports the current flag state, consulted by
// workers between tasks.
func (w *Watchdog) CleanupRequested() bool {
	return w.requested.Load()
}

// ClearCleanupRequested resets the flag once a worker has purged its
// build directory.
func (w *Watchdog) ClearCleanupRequested() {
	w.requested.Store(false)
}
