package alert

import (
	"context"

	"github.com/paraxiom/fleet-monitor/pkg/types"
	"go.uber.org/zap"
)

// Log couples a durable sink with zero or more delivery notifiers. Recording
// is the contract; delivery is best effort and isolated, so a dead webhook or
// broker can never lose the durable record or fail the pass.
type Log struct {
	sink      Sink
	notifiers []Notifier
	logger    *zap.Logger
}

func NewLog(sink Sink, notifiers []Notifier, logger *zap.Logger) *Log {
	return &Log{
		sink:      sink,
		notifiers: notifiers,
		logger:    logger,
	}
}

func (l *Log) Record(ctx context.Context, event types.AlertEvent) error {
	if err := l.sink.Record(ctx, event); err != nil {
		return err
	}

	logger := l.logger.Sugar()
	for _, notifier := range l.notifiers {
		if err := notifier.Notify(ctx, event); err != nil {
			logger.Warnw("alert delivery failed", "level", event.Level, "error", err)
		}
	}
	return nil
}

func (l *Log) Close() error {
	return l.sink.Close()
}
