package api

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	models "StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/services/forecast"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"
)

// ForecastUseCase is the part of usecase.ForecastUseCase the handler needs.
type ForecastUseCase interface {
	Predict(ctx context.Context, history []models.HistoricalRecord, tradingCode string, nhead int) (*models.Forecast, error)
	PredictStored(ctx context.Context, tradingCode string, nhead int) (*models.Forecast, error)
	Symbols(limit int) ([]string, int)
}

// RateLimiter admits or rejects a request for key.
type RateLimiter interface {
	Allow(key string) bool
}

type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
	Total   int      `json:"total"`
}

// ForecastEchoHandler serves the forecast endpoints.
type ForecastEchoHandler struct {
	logger  *xlogger.Logger
	uc      ForecastUseCase
	limiter RateLimiter
}

// NewForecastEchoHandler builds the handler. limiter may be nil to disable rate limiting.
func NewForecastEchoHandler(logger *xlogger.Logger, uc ForecastUseCase, limiter RateLimiter) *ForecastEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ForecastEchoHandler{logger: logger, uc: uc, limiter: limiter}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/predict", h.Predict, h.rateLimit)
	g.GET("/predict/:tradingCode", h.PredictStored, h.rateLimit)
	g.GET("/symbols", h.Symbols)
}

func (h *ForecastEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded, retry later"))
		}
		return next(c)
	}
}

func (h *ForecastEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	history, err := models.ParseHistory(req.History)
	if err != nil {
		field := "history"
		var de *models.DateError
		if errors.As(err, &de) {
			field = de.Field()
		}
		return xhttp.BadRequestResponse(c, []*xhttp.AppError{
			xhttp.BadRequestCodeError("ERR_INVALID_DATE", field, err.Error()),
		})
	}

	res, err := h.uc.Predict(c.Request().Context(), history, req.TradingCode, req.Horizon())
	if err != nil {
		return h.errorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) PredictStored(c echo.Context) error {
	req := &models.StoredPredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	nhead, ok := req.Horizon()
	if !ok {
		return xhttp.BadRequestResponse(c, []*xhttp.AppError{
			xhttp.BadRequestCodeError("ERR_UNSUPPORTED_HORIZON", "nhead", "nhead must be an integer").
				WithParam("supported", forecast.SupportedHorizons),
		})
	}

	res, err := h.uc.PredictStored(c.Request().Context(), req.TradingCode, nhead)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Symbols(c echo.Context) error {
	req := &models.SymbolsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	syms, total := h.uc.Symbols(req.Limit)
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.SuccessResponse(c, SymbolsResponse{Symbols: syms, Total: total})
}

func (h *ForecastEchoHandler) errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domrepo.ErrNoHistory):
		return xhttp.NotFoundResponse(c, []*xhttp.AppError{xhttp.NotFoundError(err.Error())})
	case errors.Is(err, usecase.ErrStoreDisabled):
		return xhttp.NotFoundResponse(c, []*xhttp.AppError{
			xhttp.NotFoundError("stored history is not available on this server"),
		})
	}

	var code string
	switch forecast.ErrorKind(err) {
	case "history_too_short":
		code = "ERR_HISTORY_TOO_SHORT"
	case "unknown_symbol":
		code = "ERR_UNKNOWN_SYMBOL"
	case "unsupported_horizon":
		code = "ERR_UNSUPPORTED_HORIZON"
	case "configuration":
		code = "ERR_CONFIGURATION"
	default:
		h.logger.Error("forecast usecase error", xlogger.String("path", c.Path()), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.BadRequestResponse(c, []*xhttp.AppError{xhttp.BadRequestCodeError(code, "", err.Error())})
}
