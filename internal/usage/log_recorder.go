package usage

import (
	"context"

	"go.uber.org/zap"
)

// LogRecorder writes usage events to the structured log. Used when no
// broker is configured so activity is still visible.
type LogRecorder struct {
	logger *zap.Logger
}

// ------------------------------------------------------------------------------------------------------
func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// ------------------------------------------------------------------------------------------------------
func (r *LogRecorder) Record(_ context.Context, ev Event) error {
	r.logger.Info("Usage event",
		zap.String("type", ev.Type),
		zap.String("conversation_id", ev.ConversationID),
		zap.String("target_id", ev.TargetID),
		zap.String("detail", ev.Detail),
	)
	return nil
}

// ------------------------------------------------------------------------------------------------------
func (r *LogRecorder) Close() error {
	return nil
}
