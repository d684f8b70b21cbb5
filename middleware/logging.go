package middleware

import (
	"context"

	"go.uber.org/zap"

	"github.com/dshills/pulse/event"
)

// Logging logs every emission passing through the pipeline: the event
// before dispatch at debug level, dispatch completion at debug level,
// and pipeline failures at error level.
type Logging struct {
	log *zap.Logger
}

// NewLogging creates a logging middleware.
func NewLogging(log *zap.Logger) *Logging {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logging{log: log}
}

// Name identifies the middleware.
func (m *Logging) Name() string {
	return "logging"
}

// Before logs the event about to be dispatched. It never transforms
// or rejects.
func (m *Logging) Before(_ context.Context, ev event.Event) (event.Event, error) {
	m.log.Debug("emitting event",
		zap.String("event", string(ev.Name)),
		zap.String("id", ev.ID),
		zap.String("source", ev.Meta.Source),
		zap.String("correlation_id", ev.Meta.CorrelationID),
	)
	return ev, nil
}

// After logs dispatch completion.
func (m *Logging) After(_ context.Context, ev event.Event) error {
	m.log.Debug("event dispatched",
		zap.String("event", string(ev.Name)),
		zap.String("id", ev.ID),
	)
	return nil
}

// OnError logs pipeline and after-hook failures.
func (m *Logging) OnError(err error, ev event.Event) {
	m.log.Error("emission failed",
		zap.String("event", string(ev.Name)),
		zap.String("id", ev.ID),
		zap.Error(err),
	)
}
