package dashboard

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type fakeTimers struct {
	mu      sync.Mutex
	pending []scheduled
}

type scheduled struct {
	after time.Duration
	fn    func()
}

func (f *fakeTimers) AfterFunc(d time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, scheduled{after: d, fn: fn})
}

func (f *fakeTimers) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// FireAll runs every pending timer.
func (f *fakeTimers) FireAll() {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()
	for _, s := range pending {
		s.fn()
	}
}

func sampleSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TotalUsers:          120,
		ActiveSubscriptions: 87,
		TotalRevenue:        decimal.NewFromInt(50000),
		UnpaidInvoices:      6,
		RevenueChart: ChartSeries{
			Labels: []string{"Jan", "Feb", "Mar"},
			Values: []float64{10000, 15000, 25000},
		},
		PlanDistribution: ChartSeries{
			Labels: []string{"Basic", "Pro"},
			Values: []float64{60, 27},
		},
	}
}
