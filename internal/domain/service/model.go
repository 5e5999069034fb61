package service

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// SequenceModel is the trained 3-day-horizon forecaster. It receives one
// scaled time x channel window and an entity id and returns one scaled value
// per native output step.
type SequenceModel interface {
	Infer(ctx context.Context, sequence mat.Matrix, entityID int) ([]float64, error)
}
