package dashboard

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageDataDefaults(t *testing.T) {
	data := pageData(DashboardState{}, PageOptions{BasePath: "/admin"})

	assert.Equal(t, "Dashboard", data["title"])
	assert.Equal(t, LiveSSE, data["live"])
	assert.Equal(t, "/admin/dashboard/events", data["live_path"])
	assert.Equal(t, DefaultHighlightDuration.Milliseconds(), data["highlight_ms"])
	assert.NotContains(t, data, "rendered_at")
}

func TestPageDataWebSocket(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	data := pageData(DashboardState{RenderedAt: &at}, PageOptions{
		BasePath:          "/ops",
		LiveTransport:     LiveWebSocket,
		HighlightDuration: 250 * time.Millisecond,
	})

	assert.Equal(t, LiveWebSocket, data["live"])
	assert.Equal(t, "/ops/dashboard/ws", data["live_path"])
	assert.Equal(t, int64(250), data["highlight_ms"])
	assert.Equal(t, "2026-02-03T04:05:06Z", data["rendered_at"])
}

func TestRenderDashboardPage(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	c, _ := newTestController(t, ControllerOptions{})
	_, err = c.Apply(context.Background(), 1, sampleSnapshot())
	require.NoError(t, err)

	var buf bytes.Buffer
	html, err := RenderDashboardPage(renderer, c.State(), PageOptions{Title: "Admin", BasePath: "/admin"}, &buf)
	require.NoError(t, err)

	assert.NotContains(t, html, `data-pending="true"`)
	for _, want := range []string{
		"<title>Admin</title>",
		`id="totalUsers"`,
		`id="totalRevenue"`,
		"KSh 50000",
		`id="revenueChart"`,
		`id="planChart"`,
		"/admin/dashboard/events",
	} {
		assert.Contains(t, html, want)
	}
}

func TestRenderDashboardPageWithoutSnapshot(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)
	c, _ := newTestController(t, ControllerOptions{})

	html, err := RenderDashboardPage(renderer, c.State(), PageOptions{LiveTransport: LiveWebSocket})
	require.NoError(t, err)

	assert.Contains(t, html, `<div id="revenueChart" data-pending="true"></div>`)
	assert.Contains(t, html, `<div id="planChart" data-pending="true"></div>`)
	assert.Contains(t, html, "window.location.reload()")
	assert.Contains(t, html, "new WebSocket")
	assert.NotContains(t, html, "new EventSource")
}

func TestTemplateRendererIgnoresWorkingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	html, err := RenderDashboardPage(renderer, DashboardState{}, PageOptions{Title: "Elsewhere"})
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Elsewhere</title>")
}

func TestRenderDashboardPageRequiresRenderer(t *testing.T) {
	_, err := RenderDashboardPage(nil, DashboardState{}, PageOptions{})
	assert.Error(t, err)
}
