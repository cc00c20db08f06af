package gorouter

import (
	"bytes"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"
	jsoniter "github.com/json-iterator/go"

	"github.com/goliatone/go-metrics-board/components/dashboard"
	"github.com/goliatone/go-metrics-board/components/dashboard/commands"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StateProvider exposes the session view the routes render.
type StateProvider interface {
	State() dashboard.DashboardState
}

// Subscriber hands out render event subscriptions.
type Subscriber interface {
	Subscribe() (<-chan dashboard.RenderEvent, func())
}

// Config wires go-router with the dashboard controller, commands, and hooks.
type Config[T any] struct {
	Router    router.Router[T]
	Dashboard StateProvider
	Templates dashboard.TemplateRenderer
	Page      dashboard.PageOptions
	Refresh   gocommand.Commander[commands.RefreshSnapshotInput]
	Broadcast Subscriber
	BasePath  string
	Routes    RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	State     string
	Refresh   string
	WebSocket string
	Health    string
}

// Register mounts dashboard routes (HTML, JSON, refresh, WebSocket) on a go-router router.
// Live updates go over WebSocket here; SSE is served by the net/http adapter.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Dashboard == nil {
		return errors.New("gorouter: dashboard is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}

	cfg.Router.Get(routes.Health, router.WrapHandler(healthHandler(cfg.Dashboard)))

	group := cfg.Router.Group(base)

	if cfg.Templates != nil {
		page := cfg.Page
		page.BasePath = base
		if cfg.Broadcast != nil {
			page.LiveTransport = dashboard.LiveWebSocket
			page.LivePath = base + routes.WebSocket
		}
		group.Get(routes.HTML, router.WrapHandler(pageHandler(cfg.Dashboard, cfg.Templates, page)))
	}

	group.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, cfg.Dashboard.State())
	}))

	if cfg.Refresh != nil {
		group.Post(routes.Refresh, router.WrapHandler(refreshHandler(cfg.Dashboard, cfg.Refresh)))
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func pageHandler(state StateProvider, templates dashboard.TemplateRenderer, page dashboard.PageOptions) func(router.Context) error {
	return func(ctx router.Context) error {
		var buf bytes.Buffer
		if _, err := dashboard.RenderDashboardPage(templates, state.State(), page, &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}
}

func refreshHandler(state StateProvider, refresh gocommand.Commander[commands.RefreshSnapshotInput]) func(router.Context) error {
	return func(ctx router.Context) error {
		var payload commands.RefreshSnapshotInput
		if body := ctx.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
		}
		if payload.Reason == "" {
			payload.Reason = "http"
		}
		if err := refresh.Execute(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusBadGateway, err)
		}
		return ctx.JSON(http.StatusAccepted, state.State())
	}
}

func healthHandler(state StateProvider) func(router.Context) error {
	return func(ctx router.Context) error {
		s := state.State()
		return ctx.JSON(http.StatusOK, map[string]any{
			"status":       "ok",
			"has_snapshot": s.HasSnapshot,
			"sequence":     s.Sequence,
		})
	}
}

func registerWebSocket[T any](r router.Router[T], hook Subscriber, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		return streamEvents(ws, hook)
	})
}

func streamEvents(ws router.WebSocketContext, hook Subscriber) error {
	events, cancel := hook.Subscribe()
	defer cancel()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				return err
			}
		case <-ws.Context().Done():
			return ws.Close()
		}
	}
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.State == "" {
		routes.State = "/dashboard/state"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/refresh"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	if routes.Health == "" {
		routes.Health = "/healthz"
	}
	return routes
}
