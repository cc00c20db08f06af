package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-metrics-board/pkg/log"
)

func newTestRenderer(t *testing.T, page *Page, timers *fakeTimers) *Renderer {
	t.Helper()
	r, err := NewRenderer(page,
		WithAfterFunc(timers.AfterFunc),
		WithRendererLogger(log.Discard()),
	)
	require.NoError(t, err)
	return r
}

func text(t *testing.T, page *Page, id string) string {
	t.Helper()
	el, ok := page.Element(id)
	require.True(t, ok, "missing element %s", id)
	return el.Text()
}

func hasUpdated(t *testing.T, page *Page, id string) bool {
	t.Helper()
	el, ok := page.Element(id)
	require.True(t, ok, "missing element %s", id)
	return el.HasClass(UpdatedClass)
}

func TestRenderFirstSnapshot(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	timers := &fakeTimers{}
	r := newTestRenderer(t, page, timers)

	result := r.Render(sampleSnapshot())

	assert.Equal(t, "120", text(t, page, ElementTotalUsers))
	assert.Equal(t, "87", text(t, page, ElementActiveSubs))
	assert.Equal(t, "KSh 50000", text(t, page, ElementTotalRevenue))
	assert.Equal(t, "6", text(t, page, ElementUnpaidInvoices))
	for _, id := range page.ElementIDs() {
		assert.True(t, hasUpdated(t, page, id), "expected %s to be marked", id)
	}
	assert.Equal(t, 4, timers.Len())
	assert.ElementsMatch(t, []string{ElementTotalUsers, ElementActiveSubs, ElementTotalRevenue, ElementUnpaidInvoices}, result.Changed())

	require.Len(t, result.Charts, 2)
	assert.Equal(t, CanvasRevenue, result.Charts[0].Canvas)
	assert.True(t, result.Charts[0].Created)
	assert.Equal(t, CanvasPlan, result.Charts[1].Canvas)
	assert.Equal(t, 1, page.Draws(CanvasRevenue))
	assert.Equal(t, 1, page.Draws(CanvasPlan))
}

func TestRenderMetricOrderAndKeys(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	r := newTestRenderer(t, page, &fakeTimers{})

	result := r.Render(sampleSnapshot())

	require.Len(t, result.Metrics, 4)
	assert.Equal(t, ElementTotalUsers, result.Metrics[0].ID)
	assert.Equal(t, "total-users", result.Metrics[0].Key)
	assert.Equal(t, ElementActiveSubs, result.Metrics[1].ID)
	assert.Equal(t, ElementTotalRevenue, result.Metrics[2].ID)
	assert.Equal(t, ElementUnpaidInvoices, result.Metrics[3].ID)
}

func TestHighlightRemovedAfterDuration(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	timers := &fakeTimers{}
	r, err := NewRenderer(page, WithAfterFunc(timers.AfterFunc), WithHighlightDuration(250*time.Millisecond))
	require.NoError(t, err)

	r.Render(sampleSnapshot())
	require.True(t, hasUpdated(t, page, ElementTotalUsers))
	for _, s := range timers.pending {
		assert.Equal(t, 250*time.Millisecond, s.after)
	}

	timers.FireAll()

	for _, id := range page.ElementIDs() {
		assert.False(t, hasUpdated(t, page, id))
	}
	assert.Equal(t, "120", text(t, page, ElementTotalUsers))
}

func TestUnchangedSnapshotStillRedrawsCharts(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	timers := &fakeTimers{}
	r := newTestRenderer(t, page, timers)

	r.Render(sampleSnapshot())
	timers.FireAll()

	result := r.Render(sampleSnapshot())

	assert.Empty(t, result.Changed())
	assert.Zero(t, timers.Len())
	for _, id := range page.ElementIDs() {
		assert.False(t, hasUpdated(t, page, id))
	}
	assert.Equal(t, 2, page.Draws(CanvasRevenue))
	assert.Equal(t, 2, page.Draws(CanvasPlan))
	assert.Equal(t, 1, r.RevenueChart().Constructions())
	assert.Equal(t, 1, r.PlanChart().Constructions())
}

func TestOnlyChangedMetricIsMarked(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	timers := &fakeTimers{}
	r := newTestRenderer(t, page, timers)

	r.Render(sampleSnapshot())
	timers.FireAll()

	next := sampleSnapshot()
	next.TotalRevenue = decimal.RequireFromString("50000.75")
	result := r.Render(next)

	assert.Equal(t, []string{ElementTotalRevenue}, result.Changed())
	assert.Equal(t, "KSh 50000.75", text(t, page, ElementTotalRevenue))
	assert.True(t, hasUpdated(t, page, ElementTotalRevenue))
	assert.False(t, hasUpdated(t, page, ElementTotalUsers))
	assert.Equal(t, 1, timers.Len())
}

func TestEveryChangeRunsItsOwnTimer(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	timers := &fakeTimers{}
	r := newTestRenderer(t, page, timers)

	r.UpdateMetric(ElementTotalUsers, "1")
	r.UpdateMetric(ElementTotalUsers, "2")

	assert.Equal(t, 2, timers.Len())
	timers.FireAll()
	assert.False(t, hasUpdated(t, page, ElementTotalUsers))
	assert.Equal(t, "2", text(t, page, ElementTotalUsers))
}

func TestUpdateMetricMissingElementIsNoop(t *testing.T) {
	page := NewPage(PageLayout{Elements: []string{ElementActiveSubs}, Canvases: []string{CanvasRevenue, CanvasPlan}})
	timers := &fakeTimers{}
	r := newTestRenderer(t, page, timers)

	update := r.UpdateMetric(ElementTotalUsers, "120")

	assert.False(t, update.Present)
	assert.False(t, update.Changed)
	assert.Zero(t, timers.Len())

	result := r.Render(sampleSnapshot())
	assert.Equal(t, "87", text(t, page, ElementActiveSubs))
	assert.Equal(t, []string{ElementActiveSubs}, result.Changed())
}

func TestMissingCanvasSkipsOnlyThatChart(t *testing.T) {
	base, hook := test.NewNullLogger()
	page := NewPage(PageLayout{Elements: DefaultPageLayout().Elements, Canvases: []string{CanvasPlan}})
	r, err := NewRenderer(page, WithAfterFunc((&fakeTimers{}).AfterFunc), WithRendererLogger(log.New(base)))
	require.NoError(t, err)

	result := r.Render(sampleSnapshot())

	assert.Equal(t, "120", text(t, page, ElementTotalUsers))
	require.Len(t, result.Charts, 1)
	assert.Equal(t, CanvasPlan, result.Charts[0].Canvas)
	assert.False(t, r.RevenueChart().Initialized())
	assert.True(t, r.PlanChart().Initialized())

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, CanvasRevenue, hook.LastEntry().Data["canvas"])
}

func TestNewRendererRequiresSurface(t *testing.T) {
	_, err := NewRenderer(nil)
	assert.ErrorIs(t, err, ErrMissingSurface)
}

func TestUnchangedChartsComeFromRenderCache(t *testing.T) {
	page := NewPage(DefaultPageLayout())
	cache := NewChartCache()
	r, err := NewRenderer(page, WithAfterFunc((&fakeTimers{}).AfterFunc), WithRenderCache(cache))
	require.NoError(t, err)

	r.Render(sampleSnapshot())
	r.Render(sampleSnapshot())

	assert.Equal(t, 2, cache.Hits())
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 2, page.Draws(CanvasRevenue))
}
