package models

import (
	"time"

	"github.com/google/uuid"
)

// ForecastEvent is emitted downstream after a forecast succeeds.
type ForecastEvent struct {
	ID              string    `json:"id"`
	TradingCode     string    `json:"tradingCode"`
	Horizon         string    `json:"horizon"`
	PredictedPrices []float64 `json:"predicted_prices"`
	Dates           []string  `json:"dates"`
	FinalPrice      float64   `json:"final_price"`
	DataPointsUsed  int       `json:"data_points_used"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// NewForecastEvents flattens a forecast into one event per horizon label.
func NewForecastEvents(f *Forecast, now time.Time) []ForecastEvent {
	out := make([]ForecastEvent, 0, len(f.Predictions))
	for label, r := range f.Predictions {
		out = append(out, ForecastEvent{
			ID:              uuid.New().String(),
			TradingCode:     f.TradingCode,
			Horizon:         label,
			PredictedPrices: r.PredictedPrices,
			Dates:           r.Dates,
			FinalPrice:      r.FinalPrice,
			DataPointsUsed:  f.DataPointsUsed,
			GeneratedAt:     now,
		})
	}
	return out
}
