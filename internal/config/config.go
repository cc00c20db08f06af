package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App       App       `mapstructure:",squash"`
	Server    Server    `mapstructure:",squash"`
	Metrics   Metrics   `mapstructure:",squash"`
	Dashboard Dashboard `mapstructure:",squash"`
	Telemetry Telemetry `mapstructure:",squash"`
}

type App struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type Server struct {
	Host   string `mapstructure:"host"`
	Port   string `mapstructure:"port"`
	Router string `mapstructure:"router"`
}

// Metrics points at the upstream service exposing /api/dashboard_data.
type Metrics struct {
	BaseURL        string        `mapstructure:"metrics_base_url"`
	Path           string        `mapstructure:"metrics_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type Dashboard struct {
	BasePath          string        `mapstructure:"base_path"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	HighlightDuration time.Duration `mapstructure:"highlight_duration"`
	ChartTheme        string        `mapstructure:"chart_theme"`
	EChartsAssetsHost string        `mapstructure:"echarts_assets_host"`
	EChartsAssetsDir  string        `mapstructure:"echarts_assets_dir"`
}

type Telemetry struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

const (
	RouterHTTP  = "http"
	RouterFiber = "fiber"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("HOST", "localhost")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ROUTER", RouterHTTP)

	v.SetDefault("METRICS_BASE_URL", "http://localhost:5000")
	v.SetDefault("METRICS_PATH", "/api/dashboard_data")
	v.SetDefault("REQUEST_TIMEOUT", "10s")

	v.SetDefault("BASE_PATH", "/admin")
	v.SetDefault("POLL_INTERVAL", "60s")
	v.SetDefault("HIGHLIGHT_DURATION", "1s")
	v.SetDefault("CHART_THEME", "")
	v.SetDefault("ECHARTS_ASSETS_HOST", "")
	v.SetDefault("ECHARTS_ASSETS_DIR", "")

	v.SetDefault("OTLP_ENDPOINT", "")
}

// Load reads configuration from the environment, after loading any of the
// given dotenv files that exist (".env" when none are given).
func Load(envFiles ...string) (*Config, error) {
	loadEnvFiles(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{}
	err := v.Unmarshal(cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the dashboard cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Metrics.BaseURL) == "" {
		return errors.New("config: METRICS_BASE_URL is required")
	}
	if c.Dashboard.PollInterval <= 0 {
		return fmt.Errorf("config: POLL_INTERVAL must be positive, got %s", c.Dashboard.PollInterval)
	}
	if c.Dashboard.HighlightDuration <= 0 {
		return fmt.Errorf("config: HIGHLIGHT_DURATION must be positive, got %s", c.Dashboard.HighlightDuration)
	}
	switch c.Server.Router {
	case RouterHTTP, RouterFiber:
	default:
		return fmt.Errorf("config: unknown ROUTER %q", c.Server.Router)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func loadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			logrus.WithError(err).WithField("file", file).Warn("could not load env file")
		}
	}
}
