package metricsapi

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	dashboard "github.com/goliatone/go-metrics-board/components/dashboard"
)

// StaticClient serves snapshots from memory, cycling through them on each
// Fetch. It backs demos and tests.
type StaticClient struct {
	mu        sync.Mutex
	snapshots []dashboard.MetricsSnapshot
	errs      []error
	next      int
	calls     int
}

var _ dashboard.SnapshotFetcher = (*StaticClient)(nil)

// NewStaticClient builds a client from fixtures.
func NewStaticClient(snapshots ...dashboard.MetricsSnapshot) *StaticClient {
	return &StaticClient{snapshots: snapshots}
}

// FailNext queues errors returned by the next Fetch calls, in order.
func (c *StaticClient) FailNext(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, errs...)
}

// Fetch returns a queued error if any, otherwise the next snapshot.
func (c *StaticClient) Fetch(ctx context.Context) (dashboard.MetricsSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return dashboard.MetricsSnapshot{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		return dashboard.MetricsSnapshot{}, err
	}
	if len(c.snapshots) == 0 {
		return dashboard.MetricsSnapshot{}, nil
	}
	snap := c.snapshots[c.next%len(c.snapshots)]
	c.next++
	return snap.Clone(), nil
}

// Calls counts Fetch invocations.
func (c *StaticClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// DemoSnapshots returns two snapshots that differ in every field, handy for
// exercising the highlight and chart replacement paths.
func DemoSnapshots() []dashboard.MetricsSnapshot {
	return []dashboard.MetricsSnapshot{
		{
			TotalUsers:          120,
			ActiveSubscriptions: 87,
			TotalRevenue:        decimal.NewFromInt(50000),
			UnpaidInvoices:      6,
			RevenueChart: dashboard.ChartSeries{
				Labels: []string{"Jan", "Feb", "Mar"},
				Values: []float64{10000, 15000, 25000},
			},
			PlanDistribution: dashboard.ChartSeries{
				Labels: []string{"Basic", "Pro"},
				Values: []float64{60, 27},
			},
		},
		{
			TotalUsers:          124,
			ActiveSubscriptions: 90,
			TotalRevenue:        decimal.RequireFromString("53250.50"),
			UnpaidInvoices:      4,
			RevenueChart: dashboard.ChartSeries{
				Labels: []string{"Jan", "Feb", "Mar", "Apr"},
				Values: []float64{10000, 15000, 25000, 3250.5},
			},
			PlanDistribution: dashboard.ChartSeries{
				Labels: []string{"Basic", "Pro", "Enterprise"},
				Values: []float64{58, 28, 4},
			},
		},
	}
}
