package dashboard

import (
	core "github.com/goliatone/go-metrics-board/components/dashboard"
)

// Controller exposes the underlying components/dashboard.Controller type.
type Controller = core.Controller

// ControllerOptions re-export for convenience.
type ControllerOptions = core.ControllerOptions

// Poller exposes the scheduler-driven fetch loop.
type Poller = core.Poller

// MetricsSnapshot is one fetched set of dashboard metrics.
type MetricsSnapshot = core.MetricsSnapshot

// ChartSeries is a labels/values pair.
type ChartSeries = core.ChartSeries

// NewController proxies to the internal constructor.
func NewController(opts ControllerOptions) (*Controller, error) {
	return core.NewController(opts)
}

// NewPoller proxies to the internal constructor.
func NewPoller(fetcher core.SnapshotFetcher, sink core.SnapshotSink, opts ...core.PollerOption) (*Poller, error) {
	return core.NewPoller(fetcher, sink, opts...)
}

// NewPage builds the in-memory surface with the standard element and canvas ids.
func NewPage() *core.Page {
	return core.NewPage(core.DefaultPageLayout())
}
