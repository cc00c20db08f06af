package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-metrics-board/pkg/metricsapi"
)

func TestWriteSnapshotJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, metricsapi.DemoSnapshots()[0], "json"))

	out := buf.String()
	assert.Contains(t, out, `"total_users": 120`)
	assert.Contains(t, out, `"total_revenue": "50000"`)
	assert.Contains(t, out, `"labels": [`)
}

func TestWriteSnapshotYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, metricsapi.DemoSnapshots()[1], "yaml"))

	out := buf.String()
	assert.Contains(t, out, "total_users: 124")
	assert.Contains(t, out, `total_revenue: "53250.5"`)
	assert.Contains(t, out, "plan_distribution:")
	assert.Contains(t, out, "- Enterprise")
}
