package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-metrics-board/components/dashboard"
	"github.com/goliatone/go-metrics-board/components/dashboard/commands"
	"github.com/goliatone/go-metrics-board/components/dashboard/gorouter"
	"github.com/goliatone/go-metrics-board/components/dashboard/httpapi"
	"github.com/goliatone/go-metrics-board/internal/config"
	"github.com/goliatone/go-metrics-board/pkg/log"
)

const shutdownTimeout = 15 * time.Second

// Recorder records dashboard events.
type Recorder interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// App is a fully wired dashboard: surface, controller, poller, transports.
type App struct {
	Config      *config.Config
	Logger      log.Logger
	Page        *dashboard.Page
	Controller  *dashboard.Controller
	Broadcast   *dashboard.BroadcastHook
	Poller      *dashboard.Poller
	Refresh     *commands.RefreshSnapshotCommand
	Templates   dashboard.TemplateRenderer
	PageOptions dashboard.PageOptions
}

// New wires every component around fetcher.
func New(cfg *config.Config, fetcher dashboard.SnapshotFetcher, logger log.Logger, telemetry Recorder) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	logger = log.OrDefault(logger)

	var rec dashboard.Telemetry
	if telemetry != nil {
		rec = dashboard.TelemetryFunc(telemetry.Record)
	}

	page := dashboard.NewPage(dashboard.DefaultPageLayout())
	assetsHost := dashboard.ResolveEChartsAssetsHost(cfg.Dashboard.EChartsAssetsHost, cfg.Dashboard.EChartsAssetsDir)
	builder := dashboard.NewEChartsBuilder(
		dashboard.WithChartTheme(cfg.Dashboard.ChartTheme),
		dashboard.WithChartAssetsHost(assetsHost),
	)
	renderer, err := dashboard.NewRenderer(page,
		dashboard.WithHighlightDuration(cfg.Dashboard.HighlightDuration),
		dashboard.WithChartBuilder(builder),
		dashboard.WithRenderCache(dashboard.NewChartCache()),
		dashboard.WithRendererLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	broadcast := dashboard.NewBroadcastHook(logger)
	controller, err := dashboard.NewController(dashboard.ControllerOptions{
		Renderer:    renderer,
		RefreshHook: broadcast,
		Telemetry:   rec,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	poller, err := dashboard.NewPoller(fetcher, controller,
		dashboard.WithPollInterval(cfg.Dashboard.PollInterval),
		dashboard.WithPollerLogger(logger),
		dashboard.WithPollerTelemetry(rec),
	)
	if err != nil {
		return nil, err
	}

	templates, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Page:       page,
		Controller: controller,
		Broadcast:  broadcast,
		Poller:     poller,
		Refresh:    commands.NewRefreshSnapshotCommand(poller, rec),
		Templates:  templates,
		PageOptions: dashboard.PageOptions{
			Title:             "Dashboard",
			BasePath:          cfg.Dashboard.BasePath,
			HighlightDuration: cfg.Dashboard.HighlightDuration,
			AssetsHost:        assetsHost,
		},
	}, nil
}

// Handlers builds the net/http handlers.
func (a *App) Handlers() *httpapi.Handlers {
	return &httpapi.Handlers{
		Dashboard: a.Controller,
		Templates: a.Templates,
		Page:      a.PageOptions,
		Refresh:   a.Refresh,
		Live:      a.Broadcast,
		Logger:    a.Logger,
	}
}

// HTTPServer builds the net/http server.
func (a *App) HTTPServer() (*httpapi.Server, error) {
	var assets http.Handler
	if dir := a.Config.Dashboard.EChartsAssetsDir; dir != "" {
		assets = dashboard.EChartsAssetsHandler(dashboard.DefaultEChartsAssetsPath, dir)
	}
	return httpapi.NewServer(httpapi.ServerConfig{
		Addr:       a.Config.Addr(),
		BasePath:   a.Config.Dashboard.BasePath,
		Handlers:   a.Handlers(),
		Assets:     assets,
		Logger:     a.Logger,
		OnShutdown: []func(){a.Broadcast.Close},
	})
}

// Serve starts the poller and the configured HTTP transport and blocks until
// ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Poller.Start(ctx); err != nil {
		return err
	}
	defer a.Poller.Stop()

	a.Logger.WithFields(log.Fields{
		"router":    a.Config.Server.Router,
		"base_path": a.Config.Dashboard.BasePath,
		"interval":  a.Config.Dashboard.PollInterval.String(),
	}).Info("dashboard loaded")

	if a.Config.Server.Router == config.RouterFiber {
		return a.serveFiber(ctx)
	}
	srv, err := a.HTTPServer()
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func (a *App) serveFiber(ctx context.Context) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:    server.Router(),
		Dashboard: a.Controller,
		Templates: a.Templates,
		Page:      a.PageOptions,
		Refresh:   a.Refresh,
		Broadcast: a.Broadcast,
		BasePath:  a.Config.Dashboard.BasePath,
	}); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.WithField("address", a.Config.Addr()).Info("dashboard server starting")
		errCh <- server.Serve(a.Config.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.Broadcast.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
