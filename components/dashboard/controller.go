package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-metrics-board/pkg/log"
)

// ControllerOptions wires the controller's collaborators. Surface is required
// unless Renderer is given.
type ControllerOptions struct {
	Surface     Surface
	Renderer    *Renderer
	RefreshHook RefreshHook
	Telemetry   Telemetry
	Logger      log.Logger
	Now         func() time.Time
}

// Controller owns the dashboard session: the previously rendered snapshot,
// the last applied request sequence, and (through its renderer) the two chart
// widgets. Render passes are serialized.
type Controller struct {
	mu        sync.Mutex
	surface   Surface
	renderer  *Renderer
	hook      RefreshHook
	telemetry Telemetry
	logger    log.Logger
	now       func() time.Time
	session   session
}

type session struct {
	previous   *MetricsSnapshot
	lastSeq    uint64
	renderedAt time.Time
}

type noopRefreshHook struct{}

func (noopRefreshHook) SnapshotRendered(context.Context, RenderEvent) error { return nil }

// NewController builds a controller with an empty session.
func NewController(opts ControllerOptions) (*Controller, error) {
	logger := log.OrDefault(opts.Logger)
	renderer := opts.Renderer
	if renderer == nil {
		var err error
		renderer, err = NewRenderer(opts.Surface, WithRendererLogger(logger))
		if err != nil {
			return nil, err
		}
	}
	hook := opts.RefreshHook
	if hook == nil {
		hook = noopRefreshHook{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		surface:   renderer.surface,
		renderer:  renderer,
		hook:      hook,
		telemetry: normalizeTelemetry(opts.Telemetry),
		logger:    logger,
		now:       now,
	}, nil
}

// Apply renders snapshot unless a response with an equal or higher sequence
// number was already applied, in which case it is dropped and Apply reports
// false. An applied snapshot becomes the session's previous snapshot.
func (c *Controller) Apply(ctx context.Context, seq uint64, snapshot MetricsSnapshot) (bool, error) {
	if err := snapshot.Validate(); err != nil {
		return false, fmt.Errorf("dashboard: invalid snapshot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.logger.WithContext(ctx).WithField("sequence", seq)
	if seq <= c.session.lastSeq {
		logger.WithField("applied_sequence", c.session.lastSeq).Debug("dropping stale snapshot")
		c.telemetry.Record(ctx, EventRenderStale, map[string]any{
			"sequence":         seq,
			"applied_sequence": c.session.lastSeq,
		})
		return false, nil
	}

	result := c.renderer.Render(snapshot)

	stored := snapshot.Clone()
	c.session.previous = &stored
	c.session.lastSeq = seq
	c.session.renderedAt = c.now()

	changed := result.Changed()
	logger.WithField("changed", changed).Debug("snapshot rendered")
	c.telemetry.Record(ctx, EventRenderApplied, map[string]any{
		"sequence": seq,
		"changed":  len(changed),
	})

	event := RenderEvent{
		Sequence:   seq,
		RenderedAt: c.session.renderedAt,
		Metrics:    result.Metrics,
		Charts:     result.Charts,
	}
	if err := c.hook.SnapshotRendered(ctx, event); err != nil {
		logger.WithError(err).Warn("refresh hook failed")
	}
	return true, nil
}

// Previous returns a copy of the last applied snapshot.
func (c *Controller) Previous() (MetricsSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.previous == nil {
		return MetricsSnapshot{}, false
	}
	return c.session.previous.Clone(), true
}

// LastSequence returns the sequence number of the last applied snapshot.
func (c *Controller) LastSequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.lastSeq
}

// Renderer exposes the controller's renderer.
func (c *Controller) Renderer() *Renderer { return c.renderer }

// State builds a read-only view of what the surface currently shows.
func (c *Controller) State() DashboardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return buildState(c.surface, c.renderer, c.session)
}
