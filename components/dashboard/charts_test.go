package dashboard

import (
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartSlotBuildsOnceAndReplacesInPlace(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	slot := NewChartSlot(RevenueChartSpec(), page, nil, nil)

	first, err := slot.Update(ChartSeries{Labels: []string{"Jan"}, Values: []float64{1}})
	require.NoError(t, err)
	assert.True(t, first.Created)
	widget := slot.Widget()
	require.NotNil(t, widget)

	for i := 0; i < 4; i++ {
		update, err := slot.Update(ChartSeries{
			Labels: []string{"Jan", "Feb", "Mar"},
			Values: []float64{1, 2, float64(i)},
		})
		require.NoError(t, err)
		assert.False(t, update.Created)
	}

	assert.Same(t, widget, slot.Widget())
	assert.Equal(t, 1, slot.Constructions())
	assert.Equal(t, 4, widget.Replacements())
	assert.Equal(t, uint64(5), widget.Revision())
	assert.Equal(t, 5, page.Draws(CanvasRevenue))

	line := widget.chart.(*lineDrawable).chart
	data, ok := line.MultiSeries[0].Data.([]opts.LineData)
	require.True(t, ok)
	assert.Len(t, data, 3)
	assert.Equal(t, []string{"Jan", "Feb", "Mar"}, widget.Series().Labels)
}

func TestChartSlotRejectsMismatchedSeries(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	slot := NewChartSlot(PlanChartSpec(), page, nil, nil)

	_, err := slot.Update(ChartSeries{Labels: []string{"Basic", "Pro"}, Values: []float64{1}})

	assert.ErrorIs(t, err, ErrSeriesLengthMismatch)
	assert.False(t, slot.Initialized())
	assert.Zero(t, page.Draws(CanvasPlan))
}

func TestChartSlotMissingCanvas(t *testing.T) {
	page := NewPage(PageLayout{})
	slot := NewChartSlot(RevenueChartSpec(), page, nil, nil)

	_, err := slot.Update(ChartSeries{Labels: []string{"Jan"}, Values: []float64{1}})

	assert.ErrorIs(t, err, ErrCanvasNotFound)
	assert.Zero(t, slot.Constructions())
}

func TestLineChartRender(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	slot := NewChartSlot(RevenueChartSpec(), page, NewEChartsBuilder(WithChartHeight("300px")), nil)

	update, err := slot.Update(ChartSeries{Labels: []string{"Jan", "Feb"}, Values: []float64{10000, 15000}})
	require.NoError(t, err)

	canvas, ok := page.Canvas(CanvasRevenue)
	require.True(t, ok)
	html := canvas.HTML()
	assert.Contains(t, html, CanvasRevenue)
	assert.Contains(t, html, RevenueSeriesName)
	assert.Contains(t, html, "300px")
	assert.Equal(t, ChartKindLine, update.Kind)
	assert.Equal(t, []string{revenueLineColor}, update.Colors)
}

func TestDonutColorsFollowSliceCount(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	slot := NewChartSlot(PlanChartSpec(), page, nil, nil)

	update, err := slot.Update(ChartSeries{Labels: []string{"Basic", "Pro"}, Values: []float64{60, 27}})
	require.NoError(t, err)
	assert.Equal(t, PaletteColors(2), update.Colors)
	assert.Equal(t, ChartKindDonut, update.Kind)

	labels := []string{"a", "b", "c", "d", "e", "f", "g"}
	values := []float64{1, 2, 3, 4, 5, 6, 7}
	update, err = slot.Update(ChartSeries{Labels: labels, Values: values})
	require.NoError(t, err)
	assert.Equal(t, PaletteColors(7), update.Colors)
	assert.Equal(t, 1, slot.Constructions())
}

func TestChartSlotUsesRenderCache(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	cache := &countingCache{entries: map[string]string{}}
	slot := NewChartSlot(PlanChartSpec(), page, nil, cache)
	series := ChartSeries{Labels: []string{"Basic"}, Values: []float64{1}}

	_, err := slot.Update(series)
	require.NoError(t, err)
	_, err = slot.Update(series)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.renders)
	assert.Equal(t, 2, page.Draws(CanvasPlan))
}

type countingCache struct {
	entries map[string]string
	renders int
}

func (c *countingCache) GetOrRender(_, key string, render func() (string, error)) (string, error) {
	if html, ok := c.entries[key]; ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.renders++
	c.entries[key] = html
	return html, nil
}

func TestLineChartRedrawUsesNewLabels(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	slot := NewChartSlot(RevenueChartSpec(), page, nil, nil)

	_, err := slot.Update(ChartSeries{Labels: []string{"Jan", "Feb"}, Values: []float64{1000, 2000}})
	require.NoError(t, err)
	_, err = slot.Update(ChartSeries{Labels: []string{"Mar"}, Values: []float64{7}})
	require.NoError(t, err)

	canvas, ok := page.Canvas(CanvasRevenue)
	require.True(t, ok)
	html := canvas.HTML()
	assert.Contains(t, html, `["Mar"]`)
	assert.NotContains(t, html, `"Jan"`)
	assert.NotContains(t, html, `"Feb"`)
}
