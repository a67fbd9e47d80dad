package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"readmodel/internal/app/projection"
	"readmodel/internal/domain"
	"readmodel/internal/domain/event"
	kafka_infra "readmodel/internal/infrastructure/kafka"
	"readmodel/internal/metrics"
)

// The handlers below are terminal: every event is logged and the offset
// committed regardless of outcome. A failed projection is corrected by
// replaying the log, not by per-event retry (the stream is the source of
// truth). That is why each handler returns nil on its own errors.

func AccountCreatedMessageHandler(service projection.ProjectionService, m *metrics.ProjectionMetrics, logger *zap.Logger) kafka_infra.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		start := time.Now()
		m.IncReceived(event.TypeAccountCreated)
		defer m.ObserveHandleDuration(event.TypeAccountCreated, start)

		env, err := event.DecodeEnvelope(msg.Value)
		if err != nil {
			logDecodeFailure(logger, m, event.TypeAccountCreated, msg, err)
			return nil
		}
		evt, err := env.AccountCreated()
		if err != nil {
			logDecodeFailure(logger, m, event.TypeAccountCreated, msg, err)
			return nil
		}

		if err := service.ApplyAccountCreated(ctx, evt); err != nil {
			logProjectionFailure(logger, env, msg, err)
		}
		return nil
	}
}

func MoneyDepositedMessageHandler(service projection.ProjectionService, m *metrics.ProjectionMetrics, logger *zap.Logger) kafka_infra.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		start := time.Now()
		m.IncReceived(event.TypeMoneyDeposited)
		defer m.ObserveHandleDuration(event.TypeMoneyDeposited, start)

		env, err := event.DecodeEnvelope(msg.Value)
		if err != nil {
			logDecodeFailure(logger, m, event.TypeMoneyDeposited, msg, err)
			return nil
		}
		evt, err := env.MoneyDeposited()
		if err != nil {
			logDecodeFailure(logger, m, event.TypeMoneyDeposited, msg, err)
			return nil
		}

		if err := service.ApplyMoneyDeposited(ctx, evt); err != nil {
			logProjectionFailure(logger, env, msg, err)
		}
		return nil
	}
}

func MoneyWithdrawnMessageHandler(service projection.ProjectionService, m *metrics.ProjectionMetrics, logger *zap.Logger) kafka_infra.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		start := time.Now()
		m.IncReceived(event.TypeMoneyWithdrawn)
		defer m.ObserveHandleDuration(event.TypeMoneyWithdrawn, start)

		env, err := event.DecodeEnvelope(msg.Value)
		if err != nil {
			logDecodeFailure(logger, m, event.TypeMoneyWithdrawn, msg, err)
			return nil
		}
		evt, err := env.MoneyWithdrawn()
		if err != nil {
			logDecodeFailure(logger, m, event.TypeMoneyWithdrawn, msg, err)
			return nil
		}

		if err := service.ApplyMoneyWithdrawn(ctx, evt); err != nil {
			logProjectionFailure(logger, env, msg, err)
		}
		return nil
	}
}

func logDecodeFailure(logger *zap.Logger, m *metrics.ProjectionMetrics, eventType string, msg kafka.Message, err error) {
	m.IncProcessed(eventType, metrics.ResultInvalid)
	logger.Error("Failed to decode event, dropping message",
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.ByteString("payload", msg.Value),
		zap.Error(err),
	)
}

func logProjectionFailure(logger *zap.Logger, env event.Envelope, msg kafka.Message, err error) {
	if errors.Is(err, domain.ErrAccountNotFound) {
		// Ordering anomaly: the ledger event outran AccountCreated. The
		// payload is kept in the log so the event can be replayed manually.
		logger.Warn("Processing anomaly, no account row for event",
			zap.String("event_id", env.EventID),
			zap.String("aggregate_id", env.AggregateID),
			zap.String("event_type", env.EventType),
			zap.ByteString("payload", msg.Value),
			zap.Error(err),
		)
		return
	}
	logger.Error("Failed to project event",
		zap.String("event_id", env.EventID),
		zap.String("aggregate_id", env.AggregateID),
		zap.String("event_type", env.EventType),
		zap.ByteString("payload", msg.Value),
		zap.Error(err),
	)
}
