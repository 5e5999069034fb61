package forecast

import (
	"context"
	"fmt"

	"StockCast/internal/domain/models"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/services/features"
)

// Runtime holds the capabilities loaded once at startup. Nothing mutates it
// after NewRuntime returns, so requests share it without locking.
type Runtime struct {
	model    domsvc.SequenceModel
	scaler   features.Scaler
	entities *features.SymbolMap
}

func NewRuntime(model domsvc.SequenceModel, scaler features.Scaler, entities *features.SymbolMap) (*Runtime, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model is required", ErrConfiguration)
	}
	if scaler == nil {
		return nil, fmt.Errorf("%w: scaler is required", ErrConfiguration)
	}
	if entities == nil || entities.Len() == 0 {
		return nil, fmt.Errorf("%w: entity map is required", ErrConfiguration)
	}
	if n := scaler.NumFeatures(); n != features.NumChannels {
		return nil, fmt.Errorf("%w: scaler fitted on %d channels, want %d", ErrConfiguration, n, features.NumChannels)
	}
	return &Runtime{model: model, scaler: scaler, entities: entities}, nil
}

func (rt *Runtime) Entities() *features.SymbolMap { return rt.entities }

// Service is the prediction entrypoint used by the transport layers.
type Service struct {
	rt         *Runtime
	forecaster *Forecaster
}

func NewService(rt *Runtime) *Service {
	// Symbols are validated before encoding, so the encoder stays strict.
	enc := features.NewEncoder(rt.scaler, rt.entities)
	dec := features.NewDecoder(rt.scaler, features.NumChannels)
	return &Service{
		rt:         rt,
		forecaster: NewForecaster(NewPredictor(enc, dec, rt.model)),
	}
}

// Predict validates the request and forecasts nhead days after the last record.
func (s *Service) Predict(ctx context.Context, history []models.HistoricalRecord, tradingCode string, nhead int) (*models.Forecast, error) {
	window, h, err := Validate(history, tradingCode, nhead, s.rt.entities)
	if err != nil {
		return nil, err
	}

	res, err := s.forecaster.Forecast(ctx, window, tradingCode, h)
	if err != nil {
		return nil, err
	}

	return &models.Forecast{
		Success:         true,
		TradingCode:     tradingCode,
		Predictions:     map[string]models.HorizonResult{h.Label(): res},
		DataPointsUsed:  len(window),
		PredictionDates: []string{res.Dates[len(res.Dates)-1]},
	}, nil
}

// KnownSymbols returns up to n symbols the model has an entity id for.
func (s *Service) KnownSymbols(n int) []string {
	return s.rt.entities.Sample(n)
}

// SymbolCount is the number of symbols the model knows.
func (s *Service) SymbolCount() int {
	return s.rt.entities.Len()
}
