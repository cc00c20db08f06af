package httpapi

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/goliatone/go-metrics-board/components/dashboard"
)

// Route binds a handler to a method and path.
type Route struct {
	Path        string
	Method      string
	Handler     http.Handler
	Middlewares []func(http.Handler) http.Handler
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	State     string
	Refresh   string
	Events    string
	WebSocket string
	Health    string
	Assets    string
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
	if routes.Events == "" {
		routes.Events = "/dashboard/events"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	if routes.Health == "" {
		routes.Health = "/healthz"
	}
	if routes.Assets == "" {
		routes.Assets = dashboard.DefaultEChartsAssetsPath
	}
	return routes
}

// Routes lists the dashboard routes mounted under basePath. The health route
// is mounted at the root.
func (h *Handlers) Routes(basePath string, routes RouteConfig) []Route {
	routes = defaultRouteConfig(routes)
	base := strings.TrimSuffix(basePath, "/")

	list := []Route{
		{Method: http.MethodGet, Path: routes.Health, Handler: http.HandlerFunc(h.HandleHealth)},
		{Method: http.MethodGet, Path: base + routes.HTML, Handler: http.HandlerFunc(h.HandleDashboard)},
		{Method: http.MethodGet, Path: base + routes.State, Handler: http.HandlerFunc(h.HandleState)},
	}
	if h.Refresh != nil {
		list = append(list, Route{Method: http.MethodPost, Path: base + routes.Refresh, Handler: http.HandlerFunc(h.HandleRefresh)})
	}
	if h.Live != nil {
		list = append(list,
			Route{Method: http.MethodGet, Path: base + routes.Events, Handler: http.HandlerFunc(h.HandleEvents)},
			Route{Method: http.MethodGet, Path: base + routes.WebSocket, Handler: http.HandlerFunc(h.HandleWebSocket)},
		)
	}
	return list
}

// Router is an httprouter-backed http.Handler.
type Router struct {
	router *httprouter.Router
}

// NewRouter builds a router with routes registered.
func NewRouter(routes ...Route) *Router {
	r := &Router{router: httprouter.New()}
	r.AddRoutes(routes...)
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// AddRoutes registers routes, wrapping each with its own middlewares.
func (r *Router) AddRoutes(routes ...Route) {
	for _, route := range routes {
		handler := route.Handler
		for i := len(route.Middlewares) - 1; i >= 0; i-- {
			handler = route.Middlewares[i](handler)
		}
		r.router.Handler(route.Method, route.Path, handler)
	}
}

// Mount serves handler for every path below prefix.
func (r *Router) Mount(prefix string, handler http.Handler) {
	prefix = strings.TrimSuffix(prefix, "/")
	r.router.Handler(http.MethodGet, prefix+"/*filepath", handler)
}
