package forecast

import (
	"context"
	"fmt"
	"math"

	"StockCast/internal/domain/models"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/services/features"
)

// BaseHorizon is the native output length of the model.
const BaseHorizon = 3

// Predictor wraps the single model primitive and returns real, non-negative prices.
type Predictor struct {
	encoder *features.Encoder
	decoder *features.Decoder
	model   domsvc.SequenceModel
}

func NewPredictor(encoder *features.Encoder, decoder *features.Decoder, model domsvc.SequenceModel) *Predictor {
	return &Predictor{encoder: encoder, decoder: decoder, model: model}
}

// PredictBase returns BaseHorizon prices following the last record of window.
func (p *Predictor) PredictBase(ctx context.Context, window []models.HistoricalRecord, symbol string) ([]float64, error) {
	seq, entityID, err := p.encoder.Encode(window, symbol)
	if err != nil {
		return nil, fmt.Errorf("encode window: %w", err)
	}

	scaled, err := p.model.Infer(ctx, seq, entityID)
	if err != nil {
		return nil, fmt.Errorf("%w: model inference: %w", ErrPrediction, err)
	}
	if len(scaled) != BaseHorizon {
		return nil, fmt.Errorf("%w: model returned %d steps, want %d", ErrPrediction, len(scaled), BaseHorizon)
	}

	prices := make([]float64, BaseHorizon)
	for i, v := range scaled {
		out, err := p.decoder.Decode([]float64{v})
		if err != nil {
			return nil, fmt.Errorf("%w: decode step %d: %w", ErrPrediction, i+1, err)
		}
		if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
			return nil, fmt.Errorf("%w: step %d decoded to %v", ErrPrediction, i+1, out[0])
		}
		prices[i] = math.Max(0, out[0])
	}
	return prices, nil
}
