package features

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"StockCast/internal/domain/models"
)

func identityScaler(t *testing.T) *AffineScaler {
	t.Helper()
	s, err := NewAffineScaler([]float64{1, 1, 1, 1, 1}, []float64{0, 0, 0, 0, 0})
	require.NoError(t, err)
	return s
}

func makeWindow(n int) []models.HistoricalRecord {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.HistoricalRecord, n)
	for i := range out {
		p := float64(100 + i)
		out[i] = models.HistoricalRecord{
			Date:        start.AddDate(0, 0, i),
			TradingCode: "ABC",
			Closep:      p,
			Openp:       p - 1,
			High:        p + 2,
			Low:         p - 2,
			Volume:      int64(1000 + i),
		}
	}
	return out
}

func TestEncodeKeepsMostRecentSequence(t *testing.T) {
	entities := NewSymbolMap(map[string]int{"ABC": 7})
	enc := NewEncoder(identityScaler(t), entities)

	for _, n := range []int{60, 61, 90, 250} {
		window := makeWindow(n)
		seq, id, err := enc.Encode(window, "ABC")
		require.NoError(t, err)

		r, c := seq.Dims()
		assert.Equal(t, SequenceLength, r, "n=%d", n)
		assert.Equal(t, NumChannels, c)
		assert.Equal(t, 7, id)
		assert.Equal(t, window[n-SequenceLength].Closep, seq.At(0, 0))
		assert.Equal(t, window[n-1].Closep, seq.At(SequenceLength-1, 0))
		assert.Equal(t, float64(window[n-1].Volume), seq.At(SequenceLength-1, 4))
	}
}

func TestEncodeChannelOrder(t *testing.T) {
	r := models.HistoricalRecord{Closep: 1, Openp: 2, High: 3, Low: 4, Volume: 5}
	assert.Equal(t, [NumChannels]float64{1, 2, 3, 4, 5}, FeatureVector(r))
}

func TestEncodeInsufficientData(t *testing.T) {
	enc := NewEncoder(identityScaler(t), NewSymbolMap(map[string]int{"ABC": 1}))
	_, _, err := enc.Encode(makeWindow(59), "ABC")
	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Contains(t, err.Error(), "need at least 60 data points, got 59")
}

func TestEncodeRequiresMappingAndSymbol(t *testing.T) {
	_, _, err := NewEncoder(identityScaler(t), nil).Encode(makeWindow(60), "ABC")
	require.ErrorIs(t, err, ErrConfiguration)

	_, _, err = NewEncoder(identityScaler(t), NewSymbolMap(map[string]int{"ABC": 1})).Encode(makeWindow(60), "")
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestEncodeUnknownEntity(t *testing.T) {
	entities := NewSymbolMap(map[string]int{"ABC": 3})

	_, _, err := NewEncoder(identityScaler(t), entities).Encode(makeWindow(60), "XYZ")
	require.ErrorIs(t, err, ErrUnknownEntity)

	_, id, err := NewEncoder(identityScaler(t), entities, WithFallbackEntity(0)).Encode(makeWindow(60), "XYZ")
	require.NoError(t, err)
	assert.Equal(t, 0, id)
}

func TestEncodeDoesNotMutateWindow(t *testing.T) {
	s, err := NewAffineScaler([]float64{2, 2, 2, 2, 2}, []float64{1, 1, 1, 1, 1})
	require.NoError(t, err)
	window := makeWindow(60)
	before := window[10]

	_, _, err = NewEncoder(s, NewSymbolMap(map[string]int{"ABC": 1})).Encode(window, "ABC")
	require.NoError(t, err)
	assert.Equal(t, before, window[10])
}

func TestDecodeRoundTrip(t *testing.T) {
	s, err := NewScalerFromArtifact(ScalerArtifact{
		Kind:  ScalerStandard,
		Mean:  []float64{0, 0, 0, 0, 0},
		Scale: []float64{1, 1, 1, 1, 1},
	})
	require.NoError(t, err)
	dec := NewDecoder(s, NumChannels)

	xs := []float64{-3.5, 0, 12.25, 1e6}
	m := mat.NewDense(len(xs), NumChannels, nil)
	for i, x := range xs {
		m.Set(i, TargetChannel, x)
	}
	scaled, err := s.Transform(m)
	require.NoError(t, err)

	got, err := dec.Decode(mat.Col(nil, TargetChannel, scaled))
	require.NoError(t, err)
	assert.InDeltaSlice(t, xs, got, 1e-9)
}

func TestDecodeMinMaxTarget(t *testing.T) {
	// close fitted on [100, 200]: scale = 1/100, min = -1
	s, err := NewScalerFromArtifact(ScalerArtifact{
		Kind:  ScalerMinMax,
		Min:   []float64{-1, 0, 0, 0, 0},
		Scale: []float64{0.01, 1, 1, 1, 1},
	})
	require.NoError(t, err)

	got, err := NewDecoder(s, NumChannels).Decode([]float64{0, 0.5, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{100, 150, 200}, got, 1e-9)
}

func TestScalerRejectsWrongWidth(t *testing.T) {
	s := identityScaler(t)
	_, err := s.Transform(mat.NewDense(2, 3, nil))
	require.Error(t, err)
}

func TestNewScalerFromArtifactErrors(t *testing.T) {
	cases := []ScalerArtifact{
		{Kind: "robust", Scale: []float64{1}},
		{Kind: ScalerMinMax, Min: []float64{0}, Scale: []float64{1, 1}},
		{Kind: ScalerStandard, Mean: []float64{0}, Scale: []float64{0}},
		{Kind: ScalerMinMax},
	}
	for _, c := range cases {
		_, err := NewScalerFromArtifact(c)
		assert.Error(t, err, "%+v", c)
	}
}

func TestLoadArtifacts(t *testing.T) {
	dir := t.TempDir()
	scalerPath := filepath.Join(dir, "scaler.json")
	mapPath := filepath.Join(dir, "scrip_to_id.json")
	require.NoError(t, os.WriteFile(scalerPath, []byte(`{"kind":"minmax","min":[0,0,0,0,0],"scale":[1,1,1,1,1]}`), 0o644))
	require.NoError(t, os.WriteFile(mapPath, []byte(`{"GP":2,"ABC":1,"BRAC":3}`), 0o644))

	s, err := LoadScaler(scalerPath)
	require.NoError(t, err)
	assert.Equal(t, NumChannels, s.NumFeatures())

	m, err := LoadSymbolMap(mapPath)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	assert.True(t, m.Contains("GP"))
	assert.False(t, m.Contains("gp"))
	assert.Equal(t, []string{"ABC", "BRAC"}, m.Sample(2))
	assert.Equal(t, []string{"ABC", "BRAC", "GP"}, m.Sample(10))

	_, err = LoadSymbolMap(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
