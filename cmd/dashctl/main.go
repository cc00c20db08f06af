package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-metrics-board/components/dashboard"
	"github.com/goliatone/go-metrics-board/internal/app"
	"github.com/goliatone/go-metrics-board/internal/config"
	"github.com/goliatone/go-metrics-board/pkg/log"
	"github.com/goliatone/go-metrics-board/pkg/metricsapi"
	"github.com/goliatone/go-metrics-board/pkg/telemetry"
)

var version = "dev"

type cli struct {
	EnvFile []string `name:"env-file" type:"path" help:"Dotenv files to load before reading the environment (defaults to .env)."`

	Serve  serveCmd  `cmd:"" help:"Poll the metrics API and serve the live dashboard."`
	Fetch  fetchCmd  `cmd:"" help:"Fetch one snapshot and print it."`
	Render renderCmd `cmd:"" help:"Fetch one snapshot, render the dashboard page, and write it to a file."`
}

type serveCmd struct {
	Router string        `help:"HTTP router to use (http or fiber); overrides ROUTER."`
	Demo   bool          `help:"Serve rotating demo snapshots instead of calling the metrics API."`
	Every  time.Duration `name:"interval" help:"Poll interval; overrides POLL_INTERVAL."`
}

type fetchCmd struct {
	Format string `default:"json" enum:"json,yaml" help:"Output format (json or yaml)."`
}

type renderCmd struct {
	Out string `required:"" type:"path" help:"File the rendered HTML page is written to."`
}

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root cli
	ctx := kong.Parse(&root,
		kong.Name("dashctl"),
		kong.Description("Live metrics dashboard for /api/dashboard_data."),
		kong.UsageOnError(),
		kong.BindTo(runCtx, (*context.Context)(nil)),
		kong.Bind(&root),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func loadConfig(root *cli) (*config.Config, error) {
	cfg, err := config.Load(root.EnvFile...)
	if err != nil {
		return nil, err
	}
	if err := log.Setup(cfg.App.LogLevel, cfg.App.LogFormat); err != nil {
		return nil, fmt.Errorf("dashctl: configure logging: %w", err)
	}
	return cfg, nil
}

func newClient(cfg *config.Config) (*metricsapi.HTTPClient, error) {
	return metricsapi.NewHTTPClient(metricsapi.HTTPConfig{
		BaseURL: cfg.Metrics.BaseURL,
		Path:    cfg.Metrics.Path,
		Timeout: cfg.Metrics.RequestTimeout,
	})
}

func (cmd *serveCmd) Run(ctx context.Context, root *cli) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cmd.Router != "" {
		cfg.Server.Router = cmd.Router
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if cmd.Every > 0 {
		cfg.Dashboard.PollInterval = cmd.Every
	}
	logger := log.L

	var fetcher dashboard.SnapshotFetcher
	if cmd.Demo {
		fetcher = metricsapi.NewStaticClient(metricsapi.DemoSnapshots()...)
	} else {
		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		logger.WithField("url", client.URL()).Info("polling metrics api")
		fetcher = client
	}

	recorders := telemetry.Multi{telemetry.NewLogger(logger)}
	if endpoint := cfg.Telemetry.OTLPEndpoint; endpoint != "" {
		provider, err := telemetry.Setup(ctx, endpoint, version)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Close(closeCtx); err != nil {
				logger.WithError(err).Warn("flush telemetry")
			}
		}()
		otelRec, err := telemetry.NewOTel(provider.Meter())
		if err != nil {
			return err
		}
		recorders = append(recorders, otelRec)
	}

	a, err := app.New(cfg, fetcher, logger, recorders)
	if err != nil {
		return err
	}
	return a.Serve(ctx)
}

func (cmd *fetchCmd) Run(ctx context.Context, root *cli) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	snapshot, err := client.Fetch(ctx)
	if err != nil {
		return err
	}
	return writeSnapshot(os.Stdout, snapshot, cmd.Format)
}

func writeSnapshot(w io.Writer, snapshot dashboard.MetricsSnapshot, format string) error {
	switch strings.ToLower(format) {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlSnapshot(snapshot)); err != nil {
			return fmt.Errorf("dashctl: encode yaml: %w", err)
		}
		return enc.Close()
	default:
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return fmt.Errorf("dashctl: encode json: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
}

// yamlSnapshot renders the revenue as its exact decimal text; yaml.v3 does
// not know decimal.Decimal.
func yamlSnapshot(s dashboard.MetricsSnapshot) map[string]any {
	return map[string]any{
		"total_users":          s.TotalUsers,
		"active_subscriptions": s.ActiveSubscriptions,
		"total_revenue":        s.TotalRevenue.String(),
		"unpaid_invoices":      s.UnpaidInvoices,
		"revenue_chart":        s.RevenueChart,
		"plan_distribution":    s.PlanDistribution,
	}
}

func (cmd *renderCmd) Run(ctx context.Context, root *cli) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, client, log.L, nil)
	if err != nil {
		return err
	}
	if err := a.Poller.Tick(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := dashboard.RenderDashboardPage(a.Templates, a.Controller.State(), a.PageOptions, &buf); err != nil {
		return err
	}
	out, err := filepath.Abs(cmd.Out)
	if err != nil {
		return fmt.Errorf("dashctl: resolve output path: %w", err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("dashctl: write page: %w", err)
	}
	log.L.WithField("path", out).Info("dashboard page written")
	return nil
}
