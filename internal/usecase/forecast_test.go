package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/services/forecast"
	"StockCast/pkg/cache"
)

type fakePredictor struct {
	calls int
	err   error
}

func (f *fakePredictor) Predict(_ context.Context, history []models.HistoricalRecord, code string, nhead int) (*models.Forecast, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	label := fmt.Sprintf("%d_day", nhead)
	return &models.Forecast{
		Success:     true,
		TradingCode: code,
		Predictions: map[string]models.HorizonResult{
			label: {PredictedPrices: []float64{1.5}, Dates: []string{"2024-01-11"}, FinalPrice: 1.5},
		},
		DataPointsUsed:  len(history),
		PredictionDates: []string{"2024-01-10"},
	}, nil
}

func (f *fakePredictor) KnownSymbols(n int) []string {
	all := []string{"ACI", "GP", "RENATA"}
	if n < len(all) {
		return all[:n]
	}
	return all
}

func (f *fakePredictor) SymbolCount() int { return 3 }

type fakePublisher struct {
	mu     sync.Mutex
	events []models.ForecastEvent
	err    error
}

func (p *fakePublisher) PublishForecast(_ context.Context, evs []models.ForecastEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evs...)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeStore struct {
	rows []models.HistoricalRecord
	err  error
	n    int
}

func (s *fakeStore) GetLatestHistory(_ context.Context, _ string, n int) ([]models.HistoricalRecord, error) {
	s.n = n
	return s.rows, s.err
}

func (s *fakeStore) Health(context.Context) error { return nil }

type fakeMetrics struct {
	mu        sync.Mutex
	forecasts map[string]int
	errs      map[string]int
	cache     map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{forecasts: map[string]int{}, errs: map[string]int{}, cache: map[string]int{}}
}

func (m *fakeMetrics) RecordForecast(h string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecasts[h]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *fakeMetrics) RecordModelCall(string) {}

func (m *fakeMetrics) RecordCache(r string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[r]++
}

func history(n int) []models.HistoricalRecord {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.HistoricalRecord, n)
	for i := range out {
		out[i] = models.HistoricalRecord{Date: start.AddDate(0, 0, i), TradingCode: "GP", Closep: float64(10 + i)}
	}
	return out
}

func TestPredict_CachesResult(t *testing.T) {
	p := &fakePredictor{}
	m := newFakeMetrics()
	c := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	defer c.Close()

	u := NewForecastUseCase(p, WithCache(c, time.Minute), WithMetrics(m))
	h := history(60)

	first, err := u.Predict(context.Background(), h, "GP", 1)
	require.NoError(t, err)
	second, err := u.Predict(context.Background(), h, "GP", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, m.cache["miss"])
	assert.Equal(t, 1, m.cache["hit"])
	assert.Equal(t, 1, m.forecasts["1_day"])

	// a different horizon is a different entry
	_, err = u.Predict(context.Background(), h, "GP", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestPredict_PublishesEvents(t *testing.T) {
	pub := &fakePublisher{}
	u := NewForecastUseCase(&fakePredictor{}, WithPublisher(pub))

	f, err := u.Predict(context.Background(), history(60), "GP", 3)
	require.NoError(t, err)
	assert.True(t, f.Success)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "GP", pub.events[0].TradingCode)
	assert.Equal(t, "3_day", pub.events[0].Horizon)
	assert.Equal(t, 60, pub.events[0].DataPointsUsed)
}

func TestPredict_PublishFailureIsNotFatal(t *testing.T) {
	m := newFakeMetrics()
	pub := &fakePublisher{err: errors.New("broker down")}
	u := NewForecastUseCase(&fakePredictor{}, WithPublisher(pub), WithMetrics(m))

	f, err := u.Predict(context.Background(), history(60), "GP", 3)
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, 1, m.errs["publish"])
}

func TestPredict_ErrorRecordsKind(t *testing.T) {
	m := newFakeMetrics()
	pub := &fakePublisher{}
	p := &fakePredictor{err: fmt.Errorf("%w: only 10", forecast.ErrHistoryTooShort)}
	u := NewForecastUseCase(p, WithMetrics(m), WithPublisher(pub))

	_, err := u.Predict(context.Background(), history(10), "GP", 3)
	require.ErrorIs(t, err, forecast.ErrHistoryTooShort)
	assert.Equal(t, 1, m.errs[forecast.ErrorKind(err)])
	assert.Empty(t, pub.events)
	assert.Empty(t, m.forecasts)
}

func TestPredictStored(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		u := NewForecastUseCase(&fakePredictor{})
		_, err := u.PredictStored(context.Background(), "GP", 3)
		assert.ErrorIs(t, err, ErrStoreDisabled)
	})

	t.Run("too few rows", func(t *testing.T) {
		p := &fakePredictor{}
		u := NewForecastUseCase(p, WithHistoryStore(&fakeStore{rows: history(59)}, 120))
		_, err := u.PredictStored(context.Background(), "GP", 3)
		assert.ErrorIs(t, err, domrepo.ErrNoHistory)
		assert.Zero(t, p.calls)
	})

	t.Run("store error", func(t *testing.T) {
		m := newFakeMetrics()
		u := NewForecastUseCase(&fakePredictor{},
			WithHistoryStore(&fakeStore{err: errors.New("conn refused")}, 120),
			WithMetrics(m))
		_, err := u.PredictStored(context.Background(), "GP", 3)
		assert.ErrorContains(t, err, "conn refused")
		assert.Equal(t, 1, m.errs["store"])
	})

	t.Run("ok", func(t *testing.T) {
		s := &fakeStore{rows: history(90)}
		u := NewForecastUseCase(&fakePredictor{}, WithHistoryStore(s, 90))
		f, err := u.PredictStored(context.Background(), "GP", 7)
		require.NoError(t, err)
		assert.Equal(t, 90, s.n)
		assert.Equal(t, 90, f.DataPointsUsed)
		assert.Contains(t, f.Predictions, "7_day")
	})
}

func TestSymbols(t *testing.T) {
	u := NewForecastUseCase(&fakePredictor{})
	syms, total := u.Symbols(2)
	assert.Equal(t, []string{"ACI", "GP"}, syms)
	assert.Equal(t, 3, total)
}
