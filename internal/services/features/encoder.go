package features

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"StockCast/internal/domain/models"
)

const (
	// SequenceLength is the number of time steps the model consumes.
	SequenceLength = 60
	// NumChannels is the width of a FeatureVector.
	NumChannels = 5
	// TargetChannel holds the closing price, the value the model forecasts.
	TargetChannel = 0
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrConfiguration    = errors.New("encoder configuration")
	ErrUnknownEntity    = errors.New("unknown entity")
)

// EntityResolver maps a symbol to its embedding index.
type EntityResolver interface {
	Lookup(symbol string) (int, bool)
}

// FeatureVector returns the record's channels in the order the scaler was fitted with:
// close, open, high, low, volume.
func FeatureVector(r models.HistoricalRecord) [NumChannels]float64 {
	return [NumChannels]float64{r.Closep, r.Openp, r.High, r.Low, float64(r.Volume)}
}

// EncoderOption configures Encoder.
type EncoderOption func(*Encoder)

// WithFallbackEntity makes unresolved symbols encode as id instead of failing.
func WithFallbackEntity(id int) EncoderOption {
	return func(e *Encoder) {
		e.fallback = &id
	}
}

// Encoder turns a date-ordered window into a scaled model input.
type Encoder struct {
	scaler   Scaler
	entities EntityResolver
	fallback *int
}

func NewEncoder(scaler Scaler, entities EntityResolver, opts ...EncoderOption) *Encoder {
	e := &Encoder{scaler: scaler, entities: entities}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode scales every record, keeps the most recent SequenceLength rows and
// resolves the entity id. The window must already be sorted ascending by date.
func (e *Encoder) Encode(window []models.HistoricalRecord, symbol string) (*mat.Dense, int, error) {
	if len(window) < SequenceLength {
		return nil, 0, fmt.Errorf("%w: need at least %d data points, got %d", ErrInsufficientData, SequenceLength, len(window))
	}
	if e.entities == nil || symbol == "" {
		return nil, 0, fmt.Errorf("%w: trading code and entity mapping are both required", ErrConfiguration)
	}
	if e.scaler == nil {
		return nil, 0, fmt.Errorf("%w: scaler is required", ErrConfiguration)
	}

	raw := mat.NewDense(len(window), NumChannels, nil)
	for i, r := range window {
		fv := FeatureVector(r)
		raw.SetRow(i, fv[:])
	}
	scaled, err := e.scaler.Transform(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("scale features: %w", err)
	}

	start := len(window) - SequenceLength
	seq := mat.DenseCopyOf(scaled.Slice(start, len(window), 0, NumChannels))

	id, ok := e.entities.Lookup(symbol)
	if !ok {
		if e.fallback == nil {
			return nil, 0, fmt.Errorf("%w: %s", ErrUnknownEntity, symbol)
		}
		id = *e.fallback
	}
	return seq, id, nil
}
