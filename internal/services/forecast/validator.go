package forecast

import (
	"fmt"
	"sort"

	"StockCast/internal/domain/models"
)

// MinHistory is the smallest history a request may carry.
const MinHistory = 60

// SymbolCatalog is the read-only view of known symbols used for validation.
type SymbolCatalog interface {
	Contains(symbol string) bool
	Sample(n int) []string
}

// Validate checks a request before any model work and returns the history
// sorted ascending by date. Ties keep their submitted order.
func Validate(history []models.HistoricalRecord, symbol string, nhead int, known SymbolCatalog) ([]models.HistoricalRecord, Horizon, error) {
	if len(history) < MinHistory {
		return nil, 0, fmt.Errorf("%w. Need at least %d days, got %d", ErrHistoryTooShort, MinHistory, len(history))
	}
	if known == nil {
		return nil, 0, fmt.Errorf("%w: symbol catalog is required", ErrConfiguration)
	}
	if !known.Contains(symbol) {
		return nil, 0, fmt.Errorf("%w: %s. Available codes: %v...", ErrUnknownSymbol, symbol, known.Sample(5))
	}
	h, err := ParseHorizon(nhead)
	if err != nil {
		return nil, 0, err
	}

	sorted := make([]models.HistoricalRecord, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return sorted, h, nil
}
