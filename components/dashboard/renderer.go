package dashboard

import (
	"errors"
	"strconv"
	"time"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-metrics-board/pkg/log"
)

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func())

func defaultAfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Renderer writes a snapshot onto a Surface: four scalar metrics first, then
// the revenue chart, then the plan distribution chart.
type Renderer struct {
	surface   Surface
	revenue   *ChartSlot
	plan      *ChartSlot
	highlight time.Duration
	afterFunc AfterFunc
	logger    log.Logger
}

// RendererOption customizes renderer behavior.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	highlight time.Duration
	afterFunc AfterFunc
	builder   *EChartsBuilder
	cache     RenderCache
	logger    log.Logger
}

// WithHighlightDuration sets how long the updated marker stays on.
func WithHighlightDuration(d time.Duration) RendererOption {
	return func(c *rendererConfig) {
		if d > 0 {
			c.highlight = d
		}
	}
}

// WithAfterFunc replaces the timer used to clear updated markers.
func WithAfterFunc(fn AfterFunc) RendererOption {
	return func(c *rendererConfig) {
		if fn != nil {
			c.afterFunc = fn
		}
	}
}

// WithChartBuilder sets the builder used for both charts.
func WithChartBuilder(builder *EChartsBuilder) RendererOption {
	return func(c *rendererConfig) {
		c.builder = builder
	}
}

// WithRenderCache injects a chart render cache.
func WithRenderCache(cache RenderCache) RendererOption {
	return func(c *rendererConfig) {
		c.cache = cache
	}
}

// WithRendererLogger sets the logger for skipped charts.
func WithRendererLogger(logger log.Logger) RendererOption {
	return func(c *rendererConfig) {
		c.logger = logger
	}
}

// NewRenderer binds a renderer to surface.
func NewRenderer(surface Surface, options ...RendererOption) (*Renderer, error) {
	if surface == nil {
		return nil, ErrMissingSurface
	}
	cfg := rendererConfig{
		highlight: DefaultHighlightDuration,
		afterFunc: defaultAfterFunc,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.builder == nil {
		cfg.builder = NewEChartsBuilder()
	}
	return &Renderer{
		surface:   surface,
		revenue:   NewChartSlot(RevenueChartSpec(), surface, cfg.builder, cfg.cache),
		plan:      NewChartSlot(PlanChartSpec(), surface, cfg.builder, cfg.cache),
		highlight: cfg.highlight,
		afterFunc: cfg.afterFunc,
		logger:    log.OrDefault(cfg.logger),
	}, nil
}

// Render applies snapshot. Missing elements are skipped silently; a missing
// canvas skips its chart with a warning and the pass continues.
func (r *Renderer) Render(snapshot MetricsSnapshot) RenderResult {
	result := RenderResult{
		Metrics: []MetricUpdate{
			r.UpdateMetric(ElementTotalUsers, strconv.FormatInt(snapshot.TotalUsers, 10)),
			r.UpdateMetric(ElementActiveSubs, strconv.FormatInt(snapshot.ActiveSubscriptions, 10)),
			r.UpdateMetric(ElementTotalRevenue, snapshot.RevenueDisplay()),
			r.UpdateMetric(ElementUnpaidInvoices, strconv.FormatInt(snapshot.UnpaidInvoices, 10)),
		},
	}
	if update, ok := r.renderChart(r.revenue, snapshot.RevenueChart); ok {
		result.Charts = append(result.Charts, update)
	}
	if update, ok := r.renderChart(r.plan, snapshot.PlanDistribution); ok {
		result.Charts = append(result.Charts, update)
	}
	return result
}

// UpdateMetric sets the text of element id. When the text differs from what
// was shown, the element gets the updated class for the highlight duration.
// Every change runs its own timer.
func (r *Renderer) UpdateMetric(id, value string) MetricUpdate {
	update := MetricUpdate{ID: id, Key: strcase.ToKebab(id), Text: value}
	el, ok := r.surface.Element(id)
	if !ok {
		return update
	}
	update.Present = true

	old := el.Text()
	el.SetText(value)
	if old != value {
		update.Changed = true
		el.AddClass(UpdatedClass)
		r.afterFunc(r.highlight, func() {
			el.RemoveClass(UpdatedClass)
		})
	}
	return update
}

func (r *Renderer) renderChart(slot *ChartSlot, series ChartSeries) (ChartUpdate, bool) {
	update, err := slot.Update(series)
	if err != nil {
		entry := r.logger.WithField("canvas", slot.spec.CanvasID).WithError(err)
		if errors.Is(err, ErrCanvasNotFound) {
			entry.Warn("chart skipped")
		} else {
			entry.Error("chart update failed")
		}
		return ChartUpdate{}, false
	}
	return update, true
}

// RevenueChart exposes the revenue chart slot.
func (r *Renderer) RevenueChart() *ChartSlot { return r.revenue }

// PlanChart exposes the plan distribution chart slot.
func (r *Renderer) PlanChart() *ChartSlot { return r.plan }

// HighlightDuration returns the configured marker duration.
func (r *Renderer) HighlightDuration() time.Duration { return r.highlight }
