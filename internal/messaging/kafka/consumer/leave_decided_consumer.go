package consumer

import (
	"context"
	"encoding/json"

	"leavedesk/internal/events"
	"leavedesk/internal/report"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveDecided feeds terminal leave transitions into the usage
// report read model. Messages are committed only after the decision has
// been applied; the report service itself deduplicates redeliveries.
func ConsumeLeaveDecided(
	ctx context.Context,
	reader *kafkago.Reader,
	reportService report.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_decided")
	log.Info("leave decided consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave decided consumer stopped")
				return
			}
			log.Error("fetch leave decided message failed", zap.Error(err))
			continue
		}

		var event events.LeaveDecided
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave decided event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := reportService.ApplyDecision(ctx, event); err != nil {
			log.Error("apply leave decision failed",
				zap.String("request_id", event.RequestID),
				zap.String("user_id", event.UserID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave decided message failed", zap.Error(err))
			continue
		}

		log.Info("leave decision consumed",
			zap.String("request_id", event.RequestID),
			zap.String("status", event.Status),
		)
	}
}
