package commands

import (
	"context"
	"errors"
	"time"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-metrics-board/components/dashboard"
)

// RefreshSnapshotInput requests an immediate poll outside the schedule.
type RefreshSnapshotInput struct {
	Reason string `json:"reason,omitempty"`
}

type ticker interface {
	Tick(ctx context.Context) error
}

// RefreshSnapshotCommand runs one poll tick on demand. The tick takes its own
// sequence number, so a slower scheduled response cannot overwrite it.
type RefreshSnapshotCommand struct {
	poller    ticker
	telemetry dashboard.Telemetry
}

var _ gocommand.Commander[RefreshSnapshotInput] = (*RefreshSnapshotCommand)(nil)

// NewRefreshSnapshotCommand creates the command.
func NewRefreshSnapshotCommand(poller ticker, telemetry dashboard.Telemetry) *RefreshSnapshotCommand {
	if telemetry == nil {
		telemetry = dashboard.TelemetryFunc(func(context.Context, string, map[string]any) {})
	}
	return &RefreshSnapshotCommand{poller: poller, telemetry: telemetry}
}

// Execute runs the tick and records its outcome.
func (c *RefreshSnapshotCommand) Execute(ctx context.Context, msg RefreshSnapshotInput) error {
	if c.poller == nil {
		return errors.New("refresh command requires poller")
	}
	started := time.Now()
	err := c.poller.Tick(ctx)
	c.telemetry.Record(ctx, dashboard.EventSnapshotRefresh, map[string]any{
		"reason":      msg.Reason,
		"ok":          err == nil,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return err
}
