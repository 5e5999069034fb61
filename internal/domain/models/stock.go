package models

import "time"

// HistoricalRecord is one trading day for one symbol.
// Date carries no time-of-day meaning.
type HistoricalRecord struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	TradingCode string    `json:"tradingCode"`
	Ltp         float64   `json:"ltp"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Openp       float64   `json:"openp"`
	Closep      float64   `json:"closep"`
	Ycp         float64   `json:"ycp"`
	Trade       int64     `json:"trade"`
	Value       float64   `json:"value"`
	Volume      int64     `json:"volume"`
}

// HorizonResult is the formatted forecast for one requested horizon.
type HorizonResult struct {
	PredictedPrices []float64 `json:"predicted_prices"`
	Dates           []string  `json:"dates"`
	FinalPrice      float64   `json:"final_price"`
}

// Forecast is the full answer to a prediction request.
type Forecast struct {
	Success         bool                     `json:"success"`
	TradingCode     string                   `json:"tradingCode"`
	Predictions     map[string]HorizonResult `json:"predictions"`
	DataPointsUsed  int                      `json:"data_points_used"`
	PredictionDates []string                 `json:"prediction_dates"`
}
