package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/service/ratelimit"
	"StockCast/internal/services/features"
	"StockCast/internal/services/forecast"
	"StockCast/internal/services/inference"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the registry every collector in the process uses.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) domrepo.Metrics {
	return metrics.New(reg)
}

// ProvideModel creates the breaker-guarded HTTP client for the sequence model.
func ProvideModel(cfg *config.Config, m domrepo.Metrics, l *applogger.Logger) (*inference.HTTPModel, error) {
	model, err := inference.NewHTTPModel(inference.Config{
		URL:     cfg.Model.URL,
		Name:    cfg.Model.Name,
		Timeout: cfg.Model.Timeout,
		Breaker: inference.BreakerConfig{
			MaxRequests:      cfg.Model.Breaker.MaxRequests,
			Interval:         cfg.Model.Breaker.Interval,
			OpenTimeout:      cfg.Model.Breaker.OpenTimeout,
			FailureThreshold: cfg.Model.Breaker.FailureThreshold,
		},
	}, inference.WithMetrics(m), inference.WithLogger(l))
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}
	return model, nil
}

// ProvideRuntime loads the scaler and entity map artifacts.
func ProvideRuntime(cfg *config.Config, model *inference.HTTPModel, l *applogger.Logger) (*forecast.Runtime, error) {
	scaler, err := features.LoadScaler(cfg.Artifacts.ScalerPath)
	if err != nil {
		return nil, err
	}
	entities, err := features.LoadSymbolMap(cfg.Artifacts.EntityMapPath)
	if err != nil {
		return nil, err
	}
	rt, err := forecast.NewRuntime(model, scaler, entities)
	if err != nil {
		return nil, err
	}
	l.Info("artifacts loaded",
		applogger.String("scaler", cfg.Artifacts.ScalerPath),
		applogger.Int("symbols", entities.Len()),
		applogger.String("model", model.Endpoint()),
	)
	return rt, nil
}

func ProvideForecastService(rt *forecast.Runtime) *forecast.Service {
	return forecast.NewService(rt)
}

// ProvideCache creates the in-process cache, layered over Redis when enabled.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		mc := cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxSize),
			cache.WithMemoryDefaultTTL(cfg.Forecast.CacheTTL),
		)
		return mc, func() { _ = mc.Close() }, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.Memory.MaxSize))
	l.Info("redis cache enabled", applogger.String("addr", cfg.Cache.Redis.Addr))
	return lc, func() {
		if err := lc.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if cfg.ClickHouse.InitSchema {
		stmts, err := internalrepo.HistorySchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)
		if err == nil {
			err = client.InitSchema(ctx, stmts)
		}
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}

	l.Info("clickhouse connected",
		applogger.String("host", cfg.ClickHouse.Host),
		applogger.String("database", cfg.ClickHouse.Database),
	)
	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}, nil
}

// ProvideHistoryStore returns nil when ClickHouse is disabled, which leaves
// stored-history forecasts switched off.
func ProvideHistoryStore(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (domrepo.HistoryStore, error) {
	if ch == nil {
		return nil, nil
	}
	s, err := internalrepo.NewCHHistoryStore(ch, cfg.ClickHouse.Database, cfg.ClickHouse.Table, l)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ProvidePublisher creates the Kafka forecast publisher, or a no-op when disabled.
func ProvidePublisher(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (domrepo.ForecastPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	pub := internalrepo.NewKafkaForecastPublisher(producer, cfg.Kafka.Topic)
	l.Info("kafka publisher enabled",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("topic", cfg.Kafka.Topic),
	)
	return pub, func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}, nil
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Forecast.RateLimit.Capacity, cfg.Forecast.RateLimit.RefillPerSec)
}

// ProvideForecastUseCase assembles the use case from the optional pieces.
func ProvideForecastUseCase(
	cfg *config.Config,
	svc *forecast.Service,
	store domrepo.HistoryStore,
	c cache.Service,
	pub domrepo.ForecastPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.ForecastUseCase {
	opts := []usecase.Option{
		usecase.WithCache(c, cfg.Forecast.CacheTTL),
		usecase.WithPublisher(pub),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
	}
	if store != nil {
		opts = append(opts, usecase.WithHistoryStore(store, cfg.Forecast.HistoryLookback))
	}
	return usecase.NewForecastUseCase(svc, opts...)
}

func ProvideForecastHandler(l *applogger.Logger, uc *usecase.ForecastUseCase, lim *ratelimit.Limiter) xhttp.Handler {
	return api.NewForecastEchoHandler(l, uc, lim)
}

// ProvideHTTPServer creates the Echo server with health checks for every
// enabled dependency.
func ProvideHTTPServer(
	cfg *config.Config,
	h xhttp.Handler,
	reg *prometheus.Registry,
	model *inference.HTTPModel,
	store domrepo.HistoryStore,
	c cache.Service,
	l *applogger.Logger,
) (*xhttp.Server, error) {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithLogger(l),
		xhttp.WithMetrics(metricsPath, reg, reg),
		xhttp.WithHealthCheck("model", model.Health),
	}
	if store != nil {
		opts = append(opts, xhttp.WithHealthCheck("clickhouse", store.Health))
	}
	if p, ok := c.(cache.Pinger); ok {
		opts = append(opts, xhttp.WithHealthCheck("redis", p.Ping))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, srv *xhttp.Server, l *applogger.Logger) *server.App {
	return server.New(srv, l, cfg.Server.ShutdownTimeout)
}
