package inference

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	domrepo "StockCast/internal/domain/repository"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"

	"github.com/sony/gobreaker"
	"gonum.org/v1/gonum/mat"
)

// ErrBadResponse means the model answered but the payload was unusable.
var ErrBadResponse = errors.New("malformed model response")

// BreakerConfig mirrors gobreaker.Settings for the model endpoint.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
	FailureThreshold uint32
}

// Config locates a served model.
type Config struct {
	URL     string
	Name    string
	Timeout time.Duration
	Breaker BreakerConfig
}

type predictRequest struct {
	Instances []instance `json:"instances"`
}

type instance struct {
	Sequence [][]float64 `json:"sequence"`
	EntityID int         `json:"entity_id"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

// HTTPModel calls a served 3-step model over HTTP through a circuit breaker.
// It implements service.SequenceModel. Calls are never retried.
type HTTPModel struct {
	endpoint string
	client   *xhttp.Client
	cb       *gobreaker.CircuitBreaker
	metrics  domrepo.Metrics
	log      *applogger.Logger
}

type Option func(*HTTPModel)

func WithMetrics(m domrepo.Metrics) Option {
	return func(h *HTTPModel) { h.metrics = m }
}

func WithLogger(l *applogger.Logger) Option {
	return func(h *HTTPModel) { h.log = l }
}

// WithClient replaces the HTTP client, e.g. to point at a test server transport.
func WithClient(c *xhttp.Client) Option {
	return func(h *HTTPModel) { h.client = c }
}

func NewHTTPModel(cfg Config, opts ...Option) (*HTTPModel, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("model url is required")
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("model name is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("model url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	m := &HTTPModel{
		endpoint: base.String() + "/v1/models/" + url.PathEscape(cfg.Name) + ":predict",
		client:   xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		metrics:  metrics.Noop{},
		log:      applogger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	threshold := cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	m.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "model:" + cfg.Name,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// a caller giving up says nothing about the model's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.log.Warn("model breaker state changed",
				applogger.String("breaker", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()),
			)
		},
	})
	return m, nil
}

// Endpoint is the predict URL this client posts to.
func (m *HTTPModel) Endpoint() string { return m.endpoint }

// State reports the breaker state for health checks.
func (m *HTTPModel) State() gobreaker.State { return m.cb.State() }

// Health fails while the breaker is open.
func (m *HTTPModel) Health(context.Context) error {
	if m.cb.State() == gobreaker.StateOpen {
		return gobreaker.ErrOpenState
	}
	return nil
}

// Infer posts one instance and returns its scaled predictions.
func (m *HTTPModel) Infer(ctx context.Context, sequence mat.Matrix, entityID int) ([]float64, error) {
	req := predictRequest{Instances: []instance{{
		Sequence: rows(sequence),
		EntityID: entityID,
	}}}

	start := time.Now()
	res, err := m.cb.Execute(func() (interface{}, error) {
		var resp predictResponse
		if err := m.client.PostJSON(ctx, m.endpoint, req, &resp); err != nil {
			return nil, err
		}
		if len(resp.Predictions) != 1 {
			return nil, fmt.Errorf("%w: %d predictions for 1 instance", ErrBadResponse, len(resp.Predictions))
		}
		return resp.Predictions[0], nil
	})
	if err != nil {
		m.metrics.RecordModelCall(outcome(err))
		m.log.Debug("model call failed",
			applogger.String("endpoint", m.endpoint),
			applogger.Duration("duration_ms", time.Since(start)),
			applogger.Error(err),
		)
		return nil, err
	}

	m.metrics.RecordModelCall("ok")
	return res.([]float64), nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	default:
		return "error"
	}
}

func rows(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
