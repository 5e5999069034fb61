package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/features"
)

const dateLayout = "2006-01-02"

// Forecaster derives every supported horizon from the 3-day primitive.
type Forecaster struct {
	predictor *Predictor
}

func NewForecaster(predictor *Predictor) *Forecaster {
	return &Forecaster{predictor: predictor}
}

// Forecast runs the handler for h over a date-sorted window.
func (f *Forecaster) Forecast(ctx context.Context, window []models.HistoricalRecord, symbol string, h Horizon) (models.HorizonResult, error) {
	if len(window) == 0 {
		return models.HorizonResult{}, fmt.Errorf("%w. Need at least %d days, got 0", ErrHistoryTooShort, MinHistory)
	}

	var (
		prices []float64
		err    error
	)
	switch h {
	case OneDay:
		prices, err = f.oneDay(ctx, window, symbol)
	case ThreeDays:
		prices, err = f.threeDays(ctx, window, symbol)
	case SevenDays:
		prices, err = f.sevenDays(ctx, window, symbol)
	default:
		return models.HorizonResult{}, fmt.Errorf("%w: %d", ErrUnsupportedHorizon, int(h))
	}
	if err != nil {
		return models.HorizonResult{}, err
	}
	return FormatResult(window[len(window)-1].Date, prices), nil
}

func (f *Forecaster) oneDay(ctx context.Context, window []models.HistoricalRecord, symbol string) ([]float64, error) {
	base, err := f.predictor.PredictBase(ctx, window, symbol)
	if err != nil {
		return nil, err
	}
	return base[:1], nil
}

func (f *Forecaster) threeDays(ctx context.Context, window []models.HistoricalRecord, symbol string) ([]float64, error) {
	return f.predictor.PredictBase(ctx, window, symbol)
}

// sevenDays feeds the first forecast back as synthetic history to get days 4-6.
// Day 7 repeats day 6; the model is not asked for it.
func (f *Forecaster) sevenDays(ctx context.Context, window []models.HistoricalRecord, symbol string) ([]float64, error) {
	base, err := f.predictor.PredictBase(ctx, window, symbol)
	if err != nil {
		return nil, err
	}
	next, err := f.predictor.PredictBase(ctx, SyntheticHistory(window, base), symbol)
	if err != nil {
		return nil, fmt.Errorf("chained step: %w", err)
	}

	out := make([]float64, 0, 7)
	out = append(out, base...)
	out = append(out, next...)
	return append(out, next[len(next)-1]), nil
}

// SyntheticHistory drops the oldest real records and appends one pseudo-record
// per predicted price so the result is again SequenceLength long. Pseudo-records
// copy the last real record and replace only the date and closing price.
func SyntheticHistory(window []models.HistoricalRecord, predicted []float64) []models.HistoricalRecord {
	keep := features.SequenceLength - len(predicted)
	if keep > len(window) {
		keep = len(window)
	}
	if keep < 0 {
		keep = 0
	}

	out := make([]models.HistoricalRecord, 0, keep+len(predicted))
	out = append(out, window[len(window)-keep:]...)

	last := window[len(window)-1]
	for i, p := range predicted {
		r := last
		r.Date = last.Date.AddDate(0, 0, i+1)
		r.Closep = p
		out = append(out, r)
	}
	return out
}

// FormatResult dates prices on consecutive days after last and rounds them for display.
func FormatResult(last time.Time, prices []float64) models.HorizonResult {
	res := models.HorizonResult{
		PredictedPrices: make([]float64, len(prices)),
		Dates:           make([]string, len(prices)),
	}
	for i, p := range prices {
		res.PredictedPrices[i] = round2(p)
		res.Dates[i] = last.AddDate(0, 0, i+1).Format(dateLayout)
	}
	if len(prices) > 0 {
		res.FinalPrice = res.PredictedPrices[len(prices)-1]
	}
	return res
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
