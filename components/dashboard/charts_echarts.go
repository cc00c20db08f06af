package dashboard

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"

	revenueLineColor = "#0d6efd"
	revenueAreaColor = "rgba(13, 110, 253, 0.2)"
)

var donutRadius = []string{"40%", "70%"}

// drawableChart is a go-echarts chart that supports in-place data replacement.
type drawableChart interface {
	Replace(series ChartSeries)
	Render(w io.Writer) error
	Colors() []string
}

// EChartsBuilder constructs the go-echarts charts backing chart widgets.
type EChartsBuilder struct {
	theme      string
	assetsHost string
	height     string
}

// EChartsOption customizes builder behavior.
type EChartsOption func(*EChartsBuilder)

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsOption {
	return func(b *EChartsBuilder) {
		if theme != "" {
			b.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsOption {
	return func(b *EChartsBuilder) {
		b.assetsHost = host
	}
}

// WithChartHeight overrides the rendered chart height.
func WithChartHeight(height string) EChartsOption {
	return func(b *EChartsBuilder) {
		if height != "" {
			b.height = height
		}
	}
}

// NewEChartsBuilder builds a chart builder.
func NewEChartsBuilder(options ...EChartsOption) *EChartsBuilder {
	b := &EChartsBuilder{
		theme:  types.ThemeWesteros,
		height: defaultChartHeight,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Build constructs the chart described by spec with its first data set.
func (b *EChartsBuilder) Build(spec ChartSpec, series ChartSeries) (drawableChart, error) {
	switch spec.Kind {
	case ChartKindLine:
		return b.newLine(spec, series), nil
	case ChartKindDonut:
		return b.newDonut(spec, series), nil
	default:
		return nil, fmt.Errorf("dashboard: unsupported chart kind: %s", spec.Kind)
	}
}

func (b *EChartsBuilder) newLine(spec ChartSpec, series ChartSeries) *lineDrawable {
	line := charts.NewLine()
	line.SetGlobalOptions(append(b.globalChartOptions(spec),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0}),
	)...)
	line.SetXAxis(series.Labels)
	line.AddSeries(spec.SeriesName, toLineData(series),
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(true),
		}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: revenueAreaColor}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: revenueLineColor}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: revenueLineColor}),
	)
	return &lineDrawable{chart: line}
}

func (b *EChartsBuilder) newDonut(spec ChartSpec, series ChartSeries) *donutDrawable {
	pie := charts.NewPie()
	pie.SetGlobalOptions(append(b.globalChartOptions(spec),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)...)
	colors := PaletteColors(len(series.Values))
	pie.AddSeries(spec.SeriesName, toPieData(series, colors),
		charts.WithPieChartOpts(opts.PieChart{Radius: donutRadius}),
	)
	return &donutDrawable{chart: pie, colors: colors}
}

func (b *EChartsBuilder) globalChartOptions(spec ChartSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		ChartID: spec.CanvasID,
		Theme:   b.theme,
		Width:   "100%",
		Height:  b.height,
	}
	if b.assetsHost != "" {
		initOpts.AssetsHost = b.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	}
}

type lineDrawable struct {
	chart *charts.Line
}

// Replace updates both the pending x-axis data and the already validated
// axis list; go-echarts only copies the former on the first render.
func (d *lineDrawable) Replace(series ChartSeries) {
	d.chart.SetXAxis(series.Labels)
	if len(d.chart.XAxisList) > 0 {
		d.chart.XAxisList[0].Data = series.Labels
	}
	if len(d.chart.MultiSeries) > 0 {
		d.chart.MultiSeries[0].Data = toLineData(series)
	}
}

func (d *lineDrawable) Render(w io.Writer) error { return d.chart.Render(w) }

func (d *lineDrawable) Colors() []string { return []string{revenueLineColor} }

type donutDrawable struct {
	chart  *charts.Pie
	colors []string
}

func (d *donutDrawable) Replace(series ChartSeries) {
	d.colors = PaletteColors(len(series.Values))
	if len(d.chart.MultiSeries) > 0 {
		d.chart.MultiSeries[0].Data = toPieData(series, d.colors)
	}
}

func (d *donutDrawable) Render(w io.Writer) error { return d.chart.Render(w) }

func (d *donutDrawable) Colors() []string { return append([]string(nil), d.colors...) }

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toLineData(series ChartSeries) []opts.LineData {
	data := make([]opts.LineData, len(series.Values))
	for i, value := range series.Values {
		data[i] = opts.LineData{
			Name:  labelAt(series.Labels, i),
			Value: value,
		}
	}
	return data
}

func toPieData(series ChartSeries, colors []string) []opts.PieData {
	data := make([]opts.PieData, len(series.Values))
	for i, value := range series.Values {
		name := labelAt(series.Labels, i)
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:      name,
			Value:     value,
			ItemStyle: &opts.ItemStyle{Color: colors[i]},
		}
	}
	return data
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}
