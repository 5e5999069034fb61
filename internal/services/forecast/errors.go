package forecast

import (
	"errors"

	"StockCast/internal/services/features"
)

var (
	ErrHistoryTooShort    = errors.New("not enough historical data")
	ErrUnknownSymbol      = errors.New("unknown trading code")
	ErrUnsupportedHorizon = errors.New("unsupported prediction horizon")
	ErrConfiguration      = errors.New("forecast configuration")
	ErrPrediction         = errors.New("prediction failed")
)

// IsClientError reports whether err was caused by the request rather than the model.
func IsClientError(err error) bool {
	return ErrorKind(err) != "prediction"
}

// ErrorKind names the error kind for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrHistoryTooShort), errors.Is(err, features.ErrInsufficientData):
		return "history_too_short"
	case errors.Is(err, ErrUnknownSymbol), errors.Is(err, features.ErrUnknownEntity):
		return "unknown_symbol"
	case errors.Is(err, ErrUnsupportedHorizon):
		return "unsupported_horizon"
	case errors.Is(err, ErrConfiguration), errors.Is(err, features.ErrConfiguration):
		return "configuration"
	default:
		return "prediction"
	}
}
