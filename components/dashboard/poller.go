package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/goliatone/go-metrics-board/pkg/log"
)

// Poller fetches a snapshot at start and then on every interval. Each tick is
// an independent request; overlapping ticks may run concurrently and the sink
// decides, by sequence number, which response wins.
type Poller struct {
	fetcher   SnapshotFetcher
	sink      SnapshotSink
	interval  time.Duration
	telemetry Telemetry
	logger    log.Logger
	location  *time.Location

	seq       atomic.Uint64
	mu        sync.Mutex
	scheduler *gocron.Scheduler
	stopped   chan struct{}
}

// PollerOption customizes poller behavior.
type PollerOption func(*Poller)

// WithPollInterval sets the tick interval.
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPollerTelemetry records poll outcomes.
func WithPollerTelemetry(t Telemetry) PollerOption {
	return func(p *Poller) {
		p.telemetry = normalizeTelemetry(t)
	}
}

// WithPollerLogger sets the diagnostic logger.
func WithPollerLogger(l log.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPoller wires a fetcher to a sink.
func NewPoller(fetcher SnapshotFetcher, sink SnapshotSink, opts ...PollerOption) (*Poller, error) {
	if fetcher == nil {
		return nil, ErrMissingFetcher
	}
	if sink == nil {
		return nil, ErrMissingSink
	}
	p := &Poller{
		fetcher:   fetcher,
		sink:      sink,
		interval:  DefaultPollInterval,
		telemetry: noopTelemetry{},
		logger:    log.L,
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start runs the first tick immediately and then one per interval until ctx
// is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scheduler != nil {
		return fmt.Errorf("dashboard: poller already started")
	}

	scheduler := gocron.NewScheduler(p.location)
	_, err := scheduler.Every(p.interval).StartImmediately().Do(func() {
		_ = p.Tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("dashboard: schedule poller: %w", err)
	}
	scheduler.StartAsync()
	stopped := make(chan struct{})
	p.scheduler = scheduler
	p.stopped = stopped

	p.logger.WithField("interval", p.interval.String()).Info("dashboard poller started")

	go func() {
		select {
		case <-ctx.Done():
			p.Stop()
		case <-stopped:
		}
	}()
	return nil
}

// Stop halts the scheduler. In-flight ticks finish on their own.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scheduler == nil {
		return
	}
	p.scheduler.Stop()
	p.scheduler = nil
	close(p.stopped)
	p.stopped = nil
	p.logger.Info("dashboard poller stopped")
}

// Tick performs one fetch and hands the result to the sink. A failed fetch
// is logged once and returned; the sink is not called.
func (p *Poller) Tick(ctx context.Context) error {
	seq := p.seq.Add(1)
	ctx, _ = log.WithCorrelationID(ctx)
	logger := p.logger.WithContext(ctx).WithField("sequence", seq)
	started := time.Now()

	snapshot, err := p.fetcher.Fetch(ctx)
	if err != nil {
		logger.WithError(err).Error("failed to load dashboard data")
		p.telemetry.Record(ctx, EventPollFailure, map[string]any{
			"sequence": seq,
			"error":    err.Error(),
		})
		return err
	}

	applied, err := p.sink.Apply(ctx, seq, snapshot)
	if err != nil {
		logger.WithError(err).Error("failed to load dashboard data")
		p.telemetry.Record(ctx, EventPollFailure, map[string]any{
			"sequence": seq,
			"error":    err.Error(),
		})
		return err
	}
	p.telemetry.Record(ctx, EventPollSuccess, map[string]any{
		"sequence":    seq,
		"applied":     applied,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return nil
}

// Interval returns the configured tick interval.
func (p *Poller) Interval() time.Duration { return p.interval }
