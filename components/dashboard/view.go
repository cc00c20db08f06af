package dashboard

import (
	"time"

	"github.com/ettle/strcase"
)

var metricLabels = []struct {
	id    string
	label string
}{
	{ElementTotalUsers, "Total users"},
	{ElementActiveSubs, "Active subscriptions"},
	{ElementTotalRevenue, "Total revenue"},
	{ElementUnpaidInvoices, "Unpaid invoices"},
}

// DashboardState is the JSON/HTML view of a session.
type DashboardState struct {
	HasSnapshot bool             `json:"has_snapshot"`
	Sequence    uint64           `json:"sequence"`
	RenderedAt  *time.Time       `json:"rendered_at,omitempty"`
	Snapshot    *MetricsSnapshot `json:"snapshot,omitempty"`
	Metrics     []MetricView     `json:"metrics"`
	Charts      []ChartView      `json:"charts"`
}

// MetricView is one scalar display.
type MetricView struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	Label   string `json:"label"`
	Text    string `json:"text"`
	Updated bool   `json:"updated"`
	Present bool   `json:"present"`
}

// ChartView is one chart canvas.
type ChartView struct {
	ID          string    `json:"id"`
	Kind        ChartKind `json:"kind"`
	Title       string    `json:"title"`
	Initialized bool      `json:"initialized"`
	Revision    uint64    `json:"revision"`
	Labels      []string  `json:"labels"`
	Values      []float64 `json:"values"`
	HTML        string    `json:"-"`
}

func buildState(surface Surface, renderer *Renderer, s session) DashboardState {
	state := DashboardState{
		HasSnapshot: s.previous != nil,
		Sequence:    s.lastSeq,
	}
	if s.previous != nil {
		snap := s.previous.Clone()
		state.Snapshot = &snap
		renderedAt := s.renderedAt
		state.RenderedAt = &renderedAt
	}
	for _, m := range metricLabels {
		view := MetricView{ID: m.id, Key: strcase.ToKebab(m.id), Label: m.label}
		if el, ok := surface.Element(m.id); ok {
			view.Present = true
			view.Text = el.Text()
			view.Updated = el.HasClass(UpdatedClass)
		}
		state.Metrics = append(state.Metrics, view)
	}
	for _, slot := range []*ChartSlot{renderer.RevenueChart(), renderer.PlanChart()} {
		view := ChartView{ID: slot.spec.CanvasID, Kind: slot.spec.Kind, Title: slot.spec.Title}
		if w := slot.Widget(); w != nil {
			series := w.Series()
			view.Initialized = true
			view.Revision = w.Revision()
			view.Labels = series.Labels
			view.Values = series.Values
		}
		if canvas, ok := surface.Canvas(slot.spec.CanvasID); ok {
			view.HTML = canvas.HTML()
		}
		state.Charts = append(state.Charts, view)
	}
	return state
}
