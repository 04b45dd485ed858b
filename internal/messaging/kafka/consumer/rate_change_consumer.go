package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/rateconfig"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeTaxRateChanged drops the cached rate for a changed category and
// re-resolves it, so API instances see new definitions without waiting out
// the cache TTL.
func ConsumeTaxRateChanged(
	ctx context.Context,
	reader *kafkago.Reader,
	rateService rateconfig.Service,
	cache *rateconfig.Cache,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.tax_rate_changed")
	log.Info("tax rate change consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("tax rate change consumer stopped")
				return
			}
			log.Error("fetch tax rate change message failed", zap.Error(err))
			continue
		}

		var event events.TaxRateChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode tax rate change event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		category := rateconfig.Category(event.Category)
		today := time.Now().UTC()

		if err := cache.Invalidate(ctx, category, today); err != nil {
			log.Error("invalidate rate cache failed",
				zap.String("category", event.Category),
				zap.Error(err),
			)
			continue
		}

		if _, err := rateService.GetActiveRate(ctx, category, today); err != nil {
			log.Warn("rewarm rate cache failed",
				zap.String("category", event.Category),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit tax rate change message failed", zap.Error(err))
			continue
		}

		log.Info("rate cache refreshed from tax_rate_changed event",
			zap.String("category", event.Category),
			zap.String("rate_id", event.RateID),
		)
	}
}
