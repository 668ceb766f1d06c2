// Package poller periodically pulls the registry into the capacity store.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/narvanalabs/grid-explorer/internal/capacity"
	"github.com/narvanalabs/grid-explorer/pkg/logger"
)

// Refresher is the store entry point the poller drives.
type Refresher interface {
	Refresh(ctx context.Context) (capacity.RefreshResult, error)
}

// Poller owns refresh timing. The store collapses overlapping refreshes, so
// a slow registry never produces interleaved writes.
type Poller struct {
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}

	// failures counts consecutive failed refreshes.
	failures int
}

// New creates a Poller refreshing every interval.
func New(r Refresher, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		refresher: r,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start refreshes once immediately and then on every tick until ctx is done
// or Stop is called. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.done = make(chan struct{})
	stop, done := p.stopChan, p.done
	p.mu.Unlock()

	defer close(done)

	p.logger.Info("starting registry poller", "interval", p.interval)

	p.Tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("registry poller stopped by context")
			p.markStopped()
			return ctx.Err()
		case <-stop:
			p.logger.Info("registry poller stopped")
			return nil
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one refresh and logs its outcome.
func (p *Poller) Tick(ctx context.Context) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRefreshID(ctx, runID)

	result, err := p.refresher.Refresh(ctx)

	p.mu.Lock()
	if err != nil {
		p.failures++
	} else {
		p.failures = 0
	}
	failures := p.failures
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("registry refresh failed",
			"refresh_id", runID,
			"consecutive_failures", failures,
			"error", err,
		)
		return
	}

	p.logger.Debug("registry refresh completed",
		"refresh_id", runID,
		"sequence", result.Sequence,
		"nodes", result.Nodes.Accepted,
		"farms", result.Farms.Accepted,
	)
}

// Failures returns the number of consecutive failed refreshes.
func (p *Poller) Failures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}

func (p *Poller) markStopped() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
}

// Stop stops the poller.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		close(p.stopChan)
		p.running = false
	}
}

// Shutdown stops the poller and waits for the loop to exit or ctx to end.
func (p *Poller) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	wasRunning := p.running
	done := p.done
	p.mu.Unlock()

	p.Stop()
	if !wasRunning {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Name identifies the poller as a shutdown component.
func (p *Poller) Name() string {
	return "registry-poller"
}
