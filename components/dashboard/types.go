package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Element ids the renderer writes scalar metrics into.
const (
	ElementTotalUsers     = "totalUsers"
	ElementActiveSubs     = "activeSubs"
	ElementTotalRevenue   = "totalRevenue"
	ElementUnpaidInvoices = "unpaidInvoices"
)

// Canvas ids the chart widgets bind to.
const (
	CanvasRevenue = "revenueChart"
	CanvasPlan    = "planChart"
)

const (
	// UpdatedClass marks an element whose value just changed.
	UpdatedClass = "updated"
	// CurrencyLabel prefixes the revenue magnitude.
	CurrencyLabel = "KSh "
	// RevenueSeriesName is the legend entry of the revenue line.
	RevenueSeriesName = "Revenue (KSh)"

	DefaultPollInterval      = 60 * time.Second
	DefaultHighlightDuration = 1000 * time.Millisecond
)

var (
	ErrSeriesLengthMismatch = errors.New("dashboard: chart series labels and values differ in length")
	ErrCanvasNotFound       = errors.New("dashboard: canvas not found")
	ErrMissingFetcher       = errors.New("dashboard: snapshot fetcher not configured")
	ErrMissingSink          = errors.New("dashboard: snapshot sink not configured")
	ErrMissingSurface       = errors.New("dashboard: surface not configured")
)

//go:generate mockgen -source=types.go -destination=mocks/dashboard_mock.go -package=mocks SnapshotFetcher,SnapshotSink

// SnapshotFetcher retrieves the current metrics snapshot from the metrics API.
type SnapshotFetcher interface {
	Fetch(ctx context.Context) (MetricsSnapshot, error)
}

// SnapshotSink receives fetched snapshots tagged with their request sequence.
// It reports whether the snapshot was applied or dropped as stale.
type SnapshotSink interface {
	Apply(ctx context.Context, seq uint64, snapshot MetricsSnapshot) (bool, error)
}

// RefreshHook notifies transports (SSE/WebSocket) about completed render passes.
type RefreshHook interface {
	SnapshotRendered(ctx context.Context, event RenderEvent) error
}

// MetricsSnapshot is one full set of dashboard metrics fetched at a point in time.
type MetricsSnapshot struct {
	TotalUsers          int64           `json:"total_users" yaml:"total_users"`
	ActiveSubscriptions int64           `json:"active_subscriptions" yaml:"active_subscriptions"`
	TotalRevenue        decimal.Decimal `json:"total_revenue" yaml:"total_revenue"`
	UnpaidInvoices      int64           `json:"unpaid_invoices" yaml:"unpaid_invoices"`
	RevenueChart        ChartSeries     `json:"revenue_chart" yaml:"revenue_chart"`
	PlanDistribution    ChartSeries     `json:"plan_distribution" yaml:"plan_distribution"`
}

// ChartSeries holds one value per label, in label order.
type ChartSeries struct {
	Labels []string  `json:"labels" yaml:"labels"`
	Values []float64 `json:"values" yaml:"values"`
}

// Validate enforces len(Labels) == len(Values).
func (s ChartSeries) Validate() error {
	if len(s.Labels) != len(s.Values) {
		return fmt.Errorf("%w: %d labels, %d values", ErrSeriesLengthMismatch, len(s.Labels), len(s.Values))
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate widget state.
func (s ChartSeries) Clone() ChartSeries {
	return ChartSeries{
		Labels: append([]string(nil), s.Labels...),
		Values: append([]float64(nil), s.Values...),
	}
}

// Validate checks both chart series.
func (s MetricsSnapshot) Validate() error {
	if err := s.RevenueChart.Validate(); err != nil {
		return fmt.Errorf("revenue_chart: %w", err)
	}
	if err := s.PlanDistribution.Validate(); err != nil {
		return fmt.Errorf("plan_distribution: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the snapshot.
func (s MetricsSnapshot) Clone() MetricsSnapshot {
	out := s
	out.RevenueChart = s.RevenueChart.Clone()
	out.PlanDistribution = s.PlanDistribution.Clone()
	return out
}

// RevenueDisplay is the text shown in the revenue element.
func (s MetricsSnapshot) RevenueDisplay() string {
	return CurrencyLabel + s.TotalRevenue.String()
}

// MetricUpdate describes the outcome of one scalar update.
type MetricUpdate struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	Text    string `json:"text"`
	Changed bool   `json:"changed"`
	Present bool   `json:"present"`
}

// ChartUpdate describes the state of one chart after a render pass.
type ChartUpdate struct {
	Canvas   string    `json:"canvas"`
	Kind     ChartKind `json:"kind"`
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	Colors   []string  `json:"colors,omitempty"`
	Revision uint64    `json:"revision"`
	Created  bool      `json:"created"`
}

// RenderResult summarises a render pass.
type RenderResult struct {
	Metrics []MetricUpdate
	Charts  []ChartUpdate
}

// Changed lists the ids of metrics whose text changed.
func (r RenderResult) Changed() []string {
	var ids []string
	for _, m := range r.Metrics {
		if m.Changed {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// RenderEvent is broadcast after each applied snapshot.
type RenderEvent struct {
	Sequence   uint64         `json:"sequence"`
	RenderedAt time.Time      `json:"rendered_at"`
	Metrics    []MetricUpdate `json:"metrics"`
	Charts     []ChartUpdate  `json:"charts"`
}
