package metricsapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	dashboard "github.com/goliatone/go-metrics-board/components/dashboard"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultPath is the dashboard data endpoint relative to the base URL.
	DefaultPath = "/api/dashboard_data"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("metricsapi: unexpected status")

// HTTPConfig configures the metrics API client.
type HTTPConfig struct {
	BaseURL    string
	Path       string
	HTTPClient *http.Client
	Timeout    time.Duration
	Validator  dashboard.SnapshotValidator
}

// HTTPClient fetches snapshots from the metrics endpoint.
type HTTPClient struct {
	url       string
	client    *http.Client
	validator dashboard.SnapshotValidator
}

var _ dashboard.SnapshotFetcher = (*HTTPClient)(nil)

// NewHTTPClient builds a client for cfg.BaseURL + cfg.Path.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("metricsapi: base url is required")
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	validator := cfg.Validator
	if validator == nil {
		validator = dashboard.NewJSONSchemaValidator()
	}
	return &HTTPClient{
		url:       strings.TrimSuffix(cfg.BaseURL, "/") + path,
		client:    httpClient,
		validator: validator,
	}, nil
}

// URL returns the endpoint the client polls.
func (c *HTTPClient) URL() string { return c.url }

// Fetch issues one GET and decodes the snapshot. Transport errors, non-2xx
// statuses, schema violations, and mismatched chart series are all errors.
func (c *HTTPClient) Fetch(ctx context.Context) (dashboard.MetricsSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return dashboard.MetricsSnapshot{}, errors.Wrap(err, "metricsapi: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return dashboard.MetricsSnapshot{}, errors.Wrap(err, "metricsapi: http request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return dashboard.MetricsSnapshot{}, errors.Wrapf(ErrUnexpectedStatus, "%d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return dashboard.MetricsSnapshot{}, errors.Wrap(err, "metricsapi: read response")
	}
	return Decode(body, c.validator)
}

// Decode validates and decodes a dashboard data payload.
func Decode(body []byte, validator dashboard.SnapshotValidator) (dashboard.MetricsSnapshot, error) {
	if validator != nil {
		if err := validator.ValidatePayload(body); err != nil {
			return dashboard.MetricsSnapshot{}, errors.Wrap(err, "metricsapi: invalid payload")
		}
	}
	var snapshot dashboard.MetricsSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return dashboard.MetricsSnapshot{}, errors.Wrap(err, "metricsapi: decode response")
	}
	if err := snapshot.Validate(); err != nil {
		return dashboard.MetricsSnapshot{}, errors.Wrap(err, "metricsapi: invalid snapshot")
	}
	return snapshot, nil
}
