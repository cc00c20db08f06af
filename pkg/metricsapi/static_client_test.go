package metricsapi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticClientCycles(t *testing.T) {
	demo := DemoSnapshots()
	client := NewStaticClient(demo...)

	first, err := client.Fetch(context.Background())
	require.NoError(t, err)
	second, err := client.Fetch(context.Background())
	require.NoError(t, err)
	third, err := client.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, demo[0].TotalUsers, first.TotalUsers)
	assert.Equal(t, demo[1].TotalUsers, second.TotalUsers)
	assert.Equal(t, demo[0].TotalUsers, third.TotalUsers)
	assert.Equal(t, 3, client.Calls())
}

func TestStaticClientFailNext(t *testing.T) {
	client := NewStaticClient(DemoSnapshots()...)
	boom := errors.New("connection refused")
	client.FailNext(boom)

	_, err := client.Fetch(context.Background())
	assert.ErrorIs(t, err, boom)

	snap, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(120), snap.TotalUsers)
}

func TestStaticClientReturnsCopies(t *testing.T) {
	client := NewStaticClient(DemoSnapshots()...)
	snap, err := client.Fetch(context.Background())
	require.NoError(t, err)
	snap.RevenueChart.Values[0] = -1

	client.next = 0
	again, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(10000), again.RevenueChart.Values[0])
}

func TestDemoSnapshotsAreValid(t *testing.T) {
	for _, snap := range DemoSnapshots() {
		assert.NoError(t, snap.Validate())
	}
}
