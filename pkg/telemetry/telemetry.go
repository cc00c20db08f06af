package telemetry

import (
	"context"

	"github.com/goliatone/go-metrics-board/pkg/log"
)

// Recorder matches the Telemetry interfaces of the dashboard and command packages.
type Recorder interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Logger records events as debug log entries.
type Logger struct {
	logger log.Logger
}

// NewLogger builds a logging recorder.
func NewLogger(logger log.Logger) *Logger {
	return &Logger{logger: log.OrDefault(logger)}
}

func (l *Logger) Record(ctx context.Context, event string, payload map[string]any) {
	l.logger.WithContext(ctx).WithFields(log.Fields(payload)).WithField("event", event).Debug("telemetry")
}

// Multi fans each event out to every recorder.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, event string, payload map[string]any) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, event, payload)
		}
	}
}
