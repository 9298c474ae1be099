package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/skylink-gateway/internal/events"
	"github.com/spec-kit/skylink-gateway/internal/observability"
)

// StartSessionObserver subscribes logging and metrics to the session
// lifecycle events. It is the only consumer wired at bootstrap; the transport
// layer consumes navigation targets through return values instead.
func StartSessionObserver(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}

	observe := func(_ context.Context, event events.Event) error {
		metrics.RecordSessionEvent(string(event.Type))
		logger.Info("session event",
			zap.String("type", string(event.Type)),
			zap.String("session_id", event.SessionID),
			zap.Time("at", event.Timestamp))
		return nil
	}

	dispatcher.Subscribe(events.EventSessionStarted, observe)
	dispatcher.Subscribe(events.EventSessionEnded, observe)
	dispatcher.Subscribe(events.EventCredentialExpired, observe)
}
