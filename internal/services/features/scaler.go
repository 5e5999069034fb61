package features

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Scaler is a normalization fitted offline over all feature channels.
type Scaler interface {
	Transform(m mat.Matrix) (*mat.Dense, error)
	InverseTransform(m mat.Matrix) (*mat.Dense, error)
	NumFeatures() int
}

// Scaler artifact kinds, matching the sklearn estimators they were exported from.
const (
	ScalerMinMax   = "minmax"
	ScalerStandard = "standard"
)

// ScalerArtifact is the on-disk form of a fitted scaler.
// minmax uses Min and Scale (x*scale + min); standard uses Mean and Scale ((x-mean)/scale).
type ScalerArtifact struct {
	Kind  string    `json:"kind"`
	Min   []float64 `json:"min,omitempty"`
	Mean  []float64 `json:"mean,omitempty"`
	Scale []float64 `json:"scale"`
}

// AffineScaler applies y = x*a + b per channel.
type AffineScaler struct {
	a []float64
	b []float64
}

// NewAffineScaler builds a scaler from per-channel multipliers and offsets.
func NewAffineScaler(a, b []float64) (*AffineScaler, error) {
	if len(a) == 0 || len(a) != len(b) {
		return nil, fmt.Errorf("scaler: %d multipliers vs %d offsets", len(a), len(b))
	}
	for j, v := range a {
		if v == 0 {
			return nil, fmt.Errorf("scaler: channel %d has zero scale", j)
		}
	}
	return &AffineScaler{a: append([]float64(nil), a...), b: append([]float64(nil), b...)}, nil
}

// NewScalerFromArtifact converts an exported artifact into an AffineScaler.
func NewScalerFromArtifact(art ScalerArtifact) (*AffineScaler, error) {
	switch art.Kind {
	case ScalerMinMax:
		if len(art.Min) != len(art.Scale) {
			return nil, fmt.Errorf("scaler: min has %d channels, scale has %d", len(art.Min), len(art.Scale))
		}
		return NewAffineScaler(art.Scale, art.Min)
	case ScalerStandard:
		if len(art.Mean) != len(art.Scale) {
			return nil, fmt.Errorf("scaler: mean has %d channels, scale has %d", len(art.Mean), len(art.Scale))
		}
		a := make([]float64, len(art.Scale))
		b := make([]float64, len(art.Scale))
		for j, s := range art.Scale {
			if s == 0 {
				return nil, fmt.Errorf("scaler: channel %d has zero scale", j)
			}
			a[j] = 1 / s
			b[j] = -art.Mean[j] / s
		}
		return NewAffineScaler(a, b)
	default:
		return nil, fmt.Errorf("scaler: unknown kind %q", art.Kind)
	}
}

// LoadScaler reads a scaler artifact JSON file.
func LoadScaler(path string) (*AffineScaler, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	var art ScalerArtifact
	if err := json.Unmarshal(b, &art); err != nil {
		return nil, fmt.Errorf("parse scaler: %w", err)
	}
	return NewScalerFromArtifact(art)
}

func (s *AffineScaler) NumFeatures() int { return len(s.a) }

func (s *AffineScaler) Transform(m mat.Matrix) (*mat.Dense, error) {
	if err := s.checkWidth(m); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Apply(func(_, j int, v float64) float64 { return v*s.a[j] + s.b[j] }, m)
	return &out, nil
}

func (s *AffineScaler) InverseTransform(m mat.Matrix) (*mat.Dense, error) {
	if err := s.checkWidth(m); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Apply(func(_, j int, v float64) float64 { return (v - s.b[j]) / s.a[j] }, m)
	return &out, nil
}

func (s *AffineScaler) checkWidth(m mat.Matrix) error {
	r, c := m.Dims()
	if r == 0 {
		return fmt.Errorf("scaler: empty matrix")
	}
	if c != len(s.a) {
		return fmt.Errorf("scaler: fitted on %d channels, got %d", len(s.a), c)
	}
	return nil
}
