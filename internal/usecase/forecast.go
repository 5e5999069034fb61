package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/services/forecast"
	"StockCast/pkg/cache"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
)

// ErrStoreDisabled is returned by PredictStored when no history store is wired.
var ErrStoreDisabled = errors.New("history store not configured")

const publishTimeout = 2 * time.Second

// Predictor is the forecasting core as seen by the use case.
type Predictor interface {
	Predict(ctx context.Context, history []models.HistoricalRecord, tradingCode string, nhead int) (*models.Forecast, error)
	KnownSymbols(n int) []string
	SymbolCount() int
}

// ForecastUseCase adds stored history, result caching and event fan-out
// around the forecasting core. Cache and publish failures are logged only.
type ForecastUseCase struct {
	svc      Predictor
	store    domrepo.HistoryStore
	cache    cache.Service
	pub      domrepo.ForecastPublisher
	metrics  domrepo.Metrics
	l        *applogger.Logger
	ttl      time.Duration
	lookback int
	now      func() time.Time
}

type Option func(*ForecastUseCase)

// WithHistoryStore enables PredictStored, reading lookback rows per request.
func WithHistoryStore(s domrepo.HistoryStore, lookback int) Option {
	return func(u *ForecastUseCase) {
		u.store = s
		u.lookback = lookback
	}
}

func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(u *ForecastUseCase) {
		u.cache = c
		u.ttl = ttl
	}
}

func WithPublisher(p domrepo.ForecastPublisher) Option {
	return func(u *ForecastUseCase) { u.pub = p }
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(u *ForecastUseCase) { u.metrics = m }
}

func WithLogger(l *applogger.Logger) Option {
	return func(u *ForecastUseCase) { u.l = l }
}

func NewForecastUseCase(svc Predictor, opts ...Option) *ForecastUseCase {
	u := &ForecastUseCase{
		svc:      svc,
		metrics:  metrics.Noop{},
		l:        applogger.Nop(),
		lookback: 120,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Predict forecasts from caller-supplied history.
func (u *ForecastUseCase) Predict(ctx context.Context, history []models.HistoricalRecord, tradingCode string, nhead int) (*models.Forecast, error) {
	start := u.now()
	key, keyErr := forecastKey(tradingCode, nhead, history)

	if u.cache != nil && keyErr == nil {
		var cached models.Forecast
		switch err := u.cache.Get(ctx, key, &cached); {
		case err == nil:
			u.metrics.RecordCache("hit")
			u.l.Debug("forecast served",
				applogger.String("symbol", tradingCode),
				applogger.Int("nhead", nhead),
				applogger.Bool("cached", true),
			)
			return &cached, nil
		case errors.Is(err, cache.ErrCacheMiss):
			u.metrics.RecordCache("miss")
		default:
			u.metrics.RecordCache("error")
			u.l.Warn("forecast cache get error", applogger.String("key", key), applogger.Error(err))
		}
	}

	f, err := u.svc.Predict(ctx, history, tradingCode, nhead)
	if err != nil {
		kind := forecast.ErrorKind(err)
		u.metrics.RecordError(kind)
		fields := []applogger.Field{
			applogger.String("symbol", tradingCode),
			applogger.Int("nhead", nhead),
			applogger.Int("history", len(history)),
			applogger.String("kind", kind),
			applogger.Error(err),
		}
		if forecast.IsClientError(err) {
			u.l.Warn("forecast rejected", fields...)
		} else {
			u.l.Error("forecast failed", fields...)
		}
		return nil, err
	}

	if u.cache != nil && keyErr == nil {
		if err := u.cache.Set(ctx, key, f, u.ttl); err != nil {
			u.l.Warn("forecast cache set error", applogger.String("key", key), applogger.Error(err))
		}
	}
	u.publish(ctx, f)

	took := u.now().Sub(start)
	u.metrics.RecordForecast(fmt.Sprintf("%d_day", nhead), took.Seconds())
	u.l.Info("forecast served",
		applogger.String("symbol", tradingCode),
		applogger.Int("nhead", nhead),
		applogger.Int("data_points", f.DataPointsUsed),
		applogger.Bool("cached", false),
		applogger.Duration("duration_ms", took),
	)
	return f, nil
}

// PredictStored forecasts from the most recent stored history for tradingCode.
// Fewer than forecast.MinHistory stored rows is reported as ErrNoHistory.
func (u *ForecastUseCase) PredictStored(ctx context.Context, tradingCode string, nhead int) (*models.Forecast, error) {
	if u.store == nil {
		return nil, ErrStoreDisabled
	}
	history, err := u.store.GetLatestHistory(ctx, tradingCode, u.lookback)
	if err != nil {
		if !errors.Is(err, domrepo.ErrNoHistory) {
			u.metrics.RecordError("store")
			u.l.Error("history store error", applogger.String("symbol", tradingCode), applogger.Error(err))
		}
		return nil, err
	}
	if len(history) < forecast.MinHistory {
		return nil, fmt.Errorf("%w: %d rows stored for %s, need %d", domrepo.ErrNoHistory, len(history), tradingCode, forecast.MinHistory)
	}
	return u.Predict(ctx, history, tradingCode, nhead)
}

// Symbols lists up to limit known symbols and the total count.
func (u *ForecastUseCase) Symbols(limit int) ([]string, int) {
	return u.svc.KnownSymbols(limit), u.svc.SymbolCount()
}

func (u *ForecastUseCase) publish(ctx context.Context, f *models.Forecast) {
	if u.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	events := models.NewForecastEvents(f, u.now().UTC())
	if err := u.pub.PublishForecast(ctx, events); err != nil {
		u.metrics.RecordError("publish")
		u.l.Warn("forecast publish error", applogger.String("symbol", f.TradingCode), applogger.Error(err))
	}
}

// forecastKey identifies a request by symbol, horizon and the exact history sent.
func forecastKey(tradingCode string, nhead int, history []models.HistoricalRecord) (string, error) {
	b, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return cache.Key("forecast", tradingCode, nhead, cache.Digest(b)), nil
}
