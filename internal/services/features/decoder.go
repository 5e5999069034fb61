package features

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Decoder inverts the scaler for the target channel only. The scaler was fitted
// jointly, so each value is placed in a zero row of full width before inverting.
type Decoder struct {
	scaler   Scaler
	channels int
}

func NewDecoder(scaler Scaler, channels int) *Decoder {
	return &Decoder{scaler: scaler, channels: channels}
}

// Decode returns the de-scaled target for each scaled value.
func (d *Decoder) Decode(scaled []float64) ([]float64, error) {
	if len(scaled) == 0 {
		return nil, nil
	}
	dummy := mat.NewDense(len(scaled), d.channels, nil)
	for i, v := range scaled {
		dummy.Set(i, TargetChannel, v)
	}
	inv, err := d.scaler.InverseTransform(dummy)
	if err != nil {
		return nil, fmt.Errorf("inverse transform: %w", err)
	}
	return mat.Col(nil, TargetChannel, inv), nil
}
