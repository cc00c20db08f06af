package httpapi

import (
	"bytes"
	"net/http"
	"time"

	gocommand "github.com/goliatone/go-command"
	jsoniter "github.com/json-iterator/go"

	"github.com/goliatone/go-metrics-board/components/dashboard"
	"github.com/goliatone/go-metrics-board/components/dashboard/commands"
	"github.com/goliatone/go-metrics-board/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StateProvider exposes the session view the handlers render.
type StateProvider interface {
	State() dashboard.DashboardState
}

// LiveStream pushes render events to connected browsers.
type LiveStream interface {
	ServeSSE(w http.ResponseWriter, r *http.Request)
	ServeWebSocket(w http.ResponseWriter, r *http.Request)
}

// Handlers exposes HTTP endpoints backed by the dashboard controller and
// shared commands.
type Handlers struct {
	Dashboard StateProvider
	Templates dashboard.TemplateRenderer
	Page      dashboard.PageOptions
	Refresh   gocommand.Commander[commands.RefreshSnapshotInput]
	Live      LiveStream
	Logger    log.Logger
}

func (h *Handlers) logger() log.Logger {
	return log.OrDefault(h.Logger)
}

// HandleDashboard renders the HTML page.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := dashboard.RenderDashboardPage(h.Templates, h.Dashboard.State(), h.Page, &buf); err != nil {
		h.logger().WithContext(r.Context()).WithError(err).Error("render dashboard page")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleState returns the session view as JSON.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Dashboard.State())
}

// HandleRefresh polls the metrics API immediately.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshSnapshotInput
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	if payload.Reason == "" {
		payload.Reason = "http"
	}
	if err := h.Refresh.Execute(r.Context(), payload); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, h.Dashboard.State())
}

// HandleEvents streams render events over SSE.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	h.Live.ServeSSE(w, r)
}

// HandleWebSocket streams render events over a WebSocket.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.Live.ServeWebSocket(w, r)
}

// HandleHealth reports liveness and the age of the last applied snapshot.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	state := h.Dashboard.State()
	body := map[string]any{
		"status":       "ok",
		"has_snapshot": state.HasSnapshot,
		"sequence":     state.Sequence,
	}
	if state.RenderedAt != nil {
		body["snapshot_age"] = time.Since(*state.RenderedAt).Round(time.Second).String()
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
