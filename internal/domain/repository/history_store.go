package repository

import (
	"context"
	"errors"

	"StockCast/internal/domain/models"
)

// ErrNoHistory is returned when a store holds no rows for a symbol.
var ErrNoHistory = errors.New("no stored history")

// HistoryStore provides read-only access to stored daily history.
type HistoryStore interface {
	// GetLatestHistory returns up to n most recent records, ascending by date.
	GetLatestHistory(ctx context.Context, symbol string, n int) ([]models.HistoricalRecord, error)
	Health(ctx context.Context) error
}
