package ledger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogRecorder writes entries to a zerolog logger. It is the default backend
// when nothing else is configured.
type LogRecorder struct {
	logger zerolog.Logger
}

// NewLogRecorder creates a LogRecorder.
func NewLogRecorder(logger zerolog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// Record logs e at info level.
func (r *LogRecorder) Record(_ context.Context, e Entry) error {
	r.logger.Info().
		Str("name", e.Name).
		Str("action", e.Action).
		Str("timestamp", e.ISOTimestamp()).
		Msg("Clock ledger entry")
	return nil
}
