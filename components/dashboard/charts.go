package dashboard

import (
	"fmt"
	"sync"
)

// ChartKind selects the widget's visual form.
type ChartKind string

const (
	ChartKindLine  ChartKind = "line"
	ChartKindDonut ChartKind = "donut"
)

// ChartSpec binds a chart kind to a canvas.
type ChartSpec struct {
	Kind       ChartKind
	CanvasID   string
	SeriesName string
	Title      string
}

// RevenueChartSpec is the revenue-over-time line chart.
func RevenueChartSpec() ChartSpec {
	return ChartSpec{
		Kind:       ChartKindLine,
		CanvasID:   CanvasRevenue,
		SeriesName: RevenueSeriesName,
		Title:      "Revenue",
	}
}

// PlanChartSpec is the plan distribution donut chart.
func PlanChartSpec() ChartSpec {
	return ChartSpec{
		Kind:       ChartKindDonut,
		CanvasID:   CanvasPlan,
		SeriesName: "Plans",
		Title:      "Plan distribution",
	}
}

// ChartWidget is a stateful chart bound to one canvas. It is created once and
// its data is replaced in place on every later update.
type ChartWidget struct {
	spec         ChartSpec
	canvas       Canvas
	chart        drawableChart
	cache        RenderCache
	theme        string
	series       ChartSeries
	revision     uint64
	replacements int
}

// Replace swaps labels and values without rebuilding the chart.
func (w *ChartWidget) Replace(series ChartSeries) {
	w.series = series.Clone()
	w.chart.Replace(w.series)
	w.replacements++
}

// Redraw renders the chart and draws it onto the canvas. It always draws,
// even when the data did not change.
func (w *ChartWidget) Redraw() (ChartUpdate, error) {
	render := func() (string, error) { return renderChart(w.chart) }
	var (
		html string
		err  error
	)
	key := seriesKey(w.spec, w.theme, w.series)
	if w.cache != nil && key != "" {
		html, err = w.cache.GetOrRender(w.spec.CanvasID, key, render)
	} else {
		html, err = render()
	}
	if err != nil {
		return ChartUpdate{}, fmt.Errorf("dashboard: render %s: %w", w.spec.CanvasID, err)
	}
	w.canvas.Draw(html)
	w.revision++
	return w.update(), nil
}

// Series returns a copy of the data currently plotted.
func (w *ChartWidget) Series() ChartSeries { return w.series.Clone() }

// Replacements counts in-place data replacements.
func (w *ChartWidget) Replacements() int { return w.replacements }

// Revision counts redraws.
func (w *ChartWidget) Revision() uint64 { return w.revision }

// Spec returns the chart binding.
func (w *ChartWidget) Spec() ChartSpec { return w.spec }

func (w *ChartWidget) update() ChartUpdate {
	s := w.series.Clone()
	return ChartUpdate{
		Canvas:   w.spec.CanvasID,
		Kind:     w.spec.Kind,
		Labels:   s.Labels,
		Values:   s.Values,
		Colors:   w.chart.Colors(),
		Revision: w.revision,
	}
}

// ChartSlot lazily creates a widget on the first update and reuses it for
// every later one.
type ChartSlot struct {
	mu            sync.Mutex
	spec          ChartSpec
	surface       Surface
	builder       *EChartsBuilder
	cache         RenderCache
	widget        *ChartWidget
	constructions int
}

// NewChartSlot builds an empty slot for spec.
func NewChartSlot(spec ChartSpec, surface Surface, builder *EChartsBuilder, cache RenderCache) *ChartSlot {
	if builder == nil {
		builder = NewEChartsBuilder()
	}
	return &ChartSlot{
		spec:    spec,
		surface: surface,
		builder: builder,
		cache:   cache,
	}
}

// Update creates the widget on first use, otherwise replaces its data in
// place, then redraws.
func (s *ChartSlot) Update(series ChartSeries) (ChartUpdate, error) {
	if err := series.Validate(); err != nil {
		return ChartUpdate{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.widget != nil {
		s.widget.Replace(series)
		return s.widget.Redraw()
	}

	canvas, ok := s.surface.Canvas(s.spec.CanvasID)
	if !ok {
		return ChartUpdate{}, fmt.Errorf("%w: %s", ErrCanvasNotFound, s.spec.CanvasID)
	}
	data := series.Clone()
	chart, err := s.builder.Build(s.spec, data)
	if err != nil {
		return ChartUpdate{}, err
	}
	s.widget = &ChartWidget{
		spec:   s.spec,
		canvas: canvas,
		chart:  chart,
		cache:  s.cache,
		theme:  s.builder.theme,
		series: data,
	}
	s.constructions++
	update, err := s.widget.Redraw()
	if err != nil {
		return ChartUpdate{}, err
	}
	update.Created = true
	return update, nil
}

// Widget returns the chart widget, or nil before the first update.
func (s *ChartSlot) Widget() *ChartWidget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.widget
}

// Constructions counts widget constructions; it never exceeds one.
func (s *ChartSlot) Constructions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.constructions
}

// Initialized reports whether the widget exists.
func (s *ChartSlot) Initialized() bool {
	return s.Widget() != nil
}
