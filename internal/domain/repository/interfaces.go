package repository

import (
	"context"

	"StockCast/internal/domain/models"
)

// ForecastPublisher emits one event per forecast day. Publishing is best
// effort; callers log failures and still answer the request.
type ForecastPublisher interface {
	PublishForecast(ctx context.Context, events []models.ForecastEvent) error
	Close() error
}

// Metrics is the forecast pipeline's view of the metrics backend.
type Metrics interface {
	RecordForecast(horizon string, seconds float64)
	RecordError(kind string)
	RecordModelCall(outcome string)
	RecordCache(result string)
}
