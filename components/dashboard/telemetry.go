package dashboard

import "context"

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// TelemetryFunc adapts a function to Telemetry.
type TelemetryFunc func(ctx context.Context, event string, payload map[string]any)

func (f TelemetryFunc) Record(ctx context.Context, event string, payload map[string]any) {
	f(ctx, event, payload)
}

const (
	EventPollSuccess   = "dashboard.poll.success"
	EventPollFailure   = "dashboard.poll.failure"
	EventRenderApplied = "dashboard.render.applied"
	EventRenderStale   = "dashboard.render.stale"

	EventSnapshotRefresh = "dashboard.snapshot.refresh"
)

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
