package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/splitledger/internal/domain"
)

// LogBroker пишет события в лог. Используется, когда брокер сообщений не настроен.
type LogBroker struct {
	l *logrus.Entry
}

func NewLogBroker(l *logrus.Logger) *LogBroker {
	return &LogBroker{
		l: l.WithFields(logrus.Fields{
			"component": "events",
			"module":    "log_broker",
		}),
	}
}

func (b *LogBroker) Publish(_ context.Context, event domain.LedgerEvent) error {
	b.l.WithFields(logrus.Fields{
		"event_id":    event.ID,
		"event_type":  event.Type,
		"group_id":    event.GroupID,
		"entity_id":   event.EntityID,
		"occurred_at": event.OccurredAt,
	}).Info("ledger event")
	return nil
}

func (b *LogBroker) Close() error {
	return nil
}
