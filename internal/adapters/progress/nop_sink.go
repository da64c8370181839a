package progress

import (
	"context"
	"log/slog"

	"github.com/gnosisguild/mech-go/internal/usecase"
)

// NopSink is a no-op implementation of ProgressSink
type NopSink struct{}

// NewNopSink creates a new no-op progress sink
func NewNopSink() usecase.ProgressSink {
	return &NopSink{}
}

// OnProgress does nothing with progress events
func (n *NopSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {}

// Info does nothing with info messages
func (n *NopSink) Info(message string) {}

// Error does nothing with error messages
func (n *NopSink) Error(message string) {}

// LogSink forwards progress to a structured logger, used with --json and
// in non-interactive runs where a spinner would garble output
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink writing to log
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

// OnProgress logs the stage transition
func (s *LogSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	s.log.Info(event.Message, "stage", event.Stage)
}

// Info logs message at info level
func (s *LogSink) Info(message string) {
	s.log.Info(message)
}

// Error logs message at error level
func (s *LogSink) Error(message string) {
	s.log.Error(message)
}

// Ensure sinks implement ProgressSink
var (
	_ usecase.ProgressSink = (*NopSink)(nil)
	_ usecase.ProgressSink = (*LogSink)(nil)
)
