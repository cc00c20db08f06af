package dashboard

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"time"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// DashboardTemplate is the page template name.
const DashboardTemplate = "dashboard"

// TemplateRenderer describes the template renderer contract needed to render the page.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// NewTemplateRenderer creates a go-template renderer backed by the embedded templates.
func NewTemplateRenderer() (TemplateRenderer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("dashboard: templates: %w", err)
	}
	return template.NewRenderer(
		template.WithFS(sub),
		template.WithExtension(".html"),
	)
}

// Live transports the page can subscribe with.
const (
	LiveSSE       = "sse"
	LiveWebSocket = "ws"
)

// PageOptions carries page level settings that are not part of the session.
type PageOptions struct {
	Title             string
	BasePath          string
	HighlightDuration time.Duration
	AssetsHost        string
	// LiveTransport is LiveSSE (default) or LiveWebSocket.
	LiveTransport string
	// LivePath overrides the default BasePath + "/dashboard/events" or "/dashboard/ws".
	LivePath string
}

// RenderDashboardPage renders the dashboard page for state into out.
func RenderDashboardPage(renderer TemplateRenderer, state DashboardState, opts PageOptions, out ...io.Writer) (string, error) {
	if renderer == nil {
		return "", fmt.Errorf("dashboard: template renderer not configured")
	}
	html, err := renderer.Render(DashboardTemplate, pageData(state, opts), out...)
	if err != nil {
		return "", fmt.Errorf("dashboard: render page: %w", err)
	}
	return html, nil
}

func pageData(state DashboardState, opts PageOptions) map[string]any {
	title := opts.Title
	if title == "" {
		title = "Dashboard"
	}
	highlight := opts.HighlightDuration
	if highlight <= 0 {
		highlight = DefaultHighlightDuration
	}

	metrics := make([]map[string]any, 0, len(state.Metrics))
	for _, m := range state.Metrics {
		metrics = append(metrics, map[string]any{
			"id":      m.ID,
			"key":     m.Key,
			"label":   m.Label,
			"text":    m.Text,
			"updated": m.Updated,
		})
	}
	charts := make([]map[string]any, 0, len(state.Charts))
	for _, c := range state.Charts {
		charts = append(charts, map[string]any{
			"id":          c.ID,
			"kind":        string(c.Kind),
			"title":       c.Title,
			"initialized": c.Initialized,
			"html":        c.HTML,
		})
	}

	transport := opts.LiveTransport
	if transport != LiveWebSocket {
		transport = LiveSSE
	}
	livePath := opts.LivePath
	if livePath == "" {
		livePath = opts.BasePath + "/dashboard/events"
		if transport == LiveWebSocket {
			livePath = opts.BasePath + "/dashboard/ws"
		}
	}

	data := map[string]any{
		"title":        title,
		"base_path":    opts.BasePath,
		"live":         transport,
		"live_path":    livePath,
		"highlight_ms": highlight.Milliseconds(),
		"has_snapshot": state.HasSnapshot,
		"sequence":     state.Sequence,
		"metrics":      metrics,
		"charts":       charts,
		"assets_host":  opts.AssetsHost,
	}
	if state.RenderedAt != nil {
		data["rendered_at"] = state.RenderedAt.UTC().Format(time.RFC3339)
	}
	return data
}
