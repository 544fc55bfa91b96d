package audit

import (
	"context"
	"log/slog"
)

// LogSink writes events as structured log lines. It is always wired so that
// security events survive even when no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, events []SecurityEvent) error {
	for _, e := range events {
		level := slog.LevelInfo
		switch e.Severity {
		case SeverityWarning:
			level = slog.LevelWarn
		case SeverityCritical:
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "security event",
			"action", e.Action,
			"subject", e.Subject,
			"reason", e.Reason,
			"ip", e.IP,
			"device", e.Device,
			"request_id", e.RequestID,
			"severity", string(e.Severity),
			"timestamp", e.Timestamp,
		)
	}
	return nil
}
