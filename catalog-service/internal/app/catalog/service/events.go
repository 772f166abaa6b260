package service

import (
	"context"
	"encoding/json"
	"time"

	"ecommerce/catalog-service/internal/app/catalog/entity"
	"ecommerce/catalog-service/internal/app/catalog/util"
	"ecommerce/pkg/logger"

	"github.com/google/uuid"
)

// publishEvent is best-effort: the change is already committed, so a
// broker failure is logged and swallowed.
func publishEvent(ctx context.Context, publisher util.MessagePublisher, event entity.CatalogEvent) {
	if publisher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", string(event.EventType)).Msg("Failed to marshal catalog event")
		return
	}

	if err := publisher.PublishMessage(ctx, event.ProductID.String(), data); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", string(event.EventType)).
			Str("product_id", event.ProductID.String()).
			Msg("Failed to publish catalog event")
	}
}

func productEvent(eventType entity.EventType, p *entity.Product, at time.Time) entity.CatalogEvent {
	return entity.CatalogEvent{
		EventType:  eventType,
		ProductID:  p.ID,
		SellerID:   &p.SellerID,
		CategoryID: &p.CategoryID,
		Price:      &p.Price,
		Timestamp:  at,
	}
}

func ratingEvent(productID uuid.UUID, rating float64, at time.Time) entity.CatalogEvent {
	return entity.CatalogEvent{
		EventType: entity.EventProductRatingUpdated,
		ProductID: productID,
		Rating:    &rating,
		Timestamp: at,
	}
}
