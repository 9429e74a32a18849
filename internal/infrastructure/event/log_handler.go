package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/dishware/backend/internal/domain/shared"
)

// LogHandler writes every published domain event to the structured log. It
// gives operators a flat activity trail without a dedicated audit sink.
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a LogHandler
func NewLogHandler(logger *zap.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// Handle logs the event
func (h *LogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("Domain event",
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("outlet_id", event.OutletID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice: the handler receives every event
func (h *LogHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*LogHandler)(nil)
