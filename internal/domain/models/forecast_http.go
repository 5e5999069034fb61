package models

import (
	"fmt"
	"strconv"
	"time"

	xutil "StockCast/pkg/util"
)

// DefaultNHead is used when a request does not name a horizon.
const DefaultNHead = 3

// Requests for forecast HTTP endpoints. Dates stay strings here; the handler
// parses them so both YYYY-MM-DD and RFC3339 are accepted.

type HistoryRecordRequest struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date" validate:"required"`
	TradingCode string  `json:"tradingCode"`
	Ltp         float64 `json:"ltp"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Openp       float64 `json:"openp"`
	Closep      float64 `json:"closep"`
	Ycp         float64 `json:"ycp"`
	Trade       int64   `json:"trade"`
	Value       float64 `json:"value"`
	Volume      int64   `json:"volume"`
}

type PredictRequest struct {
	TradingCode string                 `json:"tradingCode" validate:"required,max=50"`
	NHead       *int                   `json:"nhead"`
	History     []HistoryRecordRequest `json:"history" validate:"dive"`
}

// Horizon returns the requested days, DefaultNHead when omitted. An explicit
// zero is kept so it is rejected like any other unsupported value.
func (r *PredictRequest) Horizon() int {
	if r.NHead == nil {
		return DefaultNHead
	}
	return *r.NHead
}

type StoredPredictRequest struct {
	TradingCode string `param:"tradingCode" validate:"required,max=50"`
	NHead       string `query:"nhead"`
}

// Horizon parses the nhead query value. ok is false when it is not an integer.
func (r *StoredPredictRequest) Horizon() (n int, ok bool) {
	if r.NHead == "" {
		return DefaultNHead, true
	}
	n, err := strconv.Atoi(r.NHead)
	return n, err == nil
}

type SymbolsRequest struct {
	Limit int `query:"limit" default:"50" validate:"gte=1,lte=5000"`
}

// ToRecord converts a wire record once its date has been parsed.
func (r HistoryRecordRequest) ToRecord(date time.Time) HistoricalRecord {
	return HistoricalRecord{
		ID:          r.ID,
		Date:        date,
		TradingCode: r.TradingCode,
		Ltp:         r.Ltp,
		High:        r.High,
		Low:         r.Low,
		Openp:       r.Openp,
		Closep:      r.Closep,
		Ycp:         r.Ycp,
		Trade:       r.Trade,
		Value:       r.Value,
		Volume:      r.Volume,
	}
}

// DateError reports an unparseable history date.
type DateError struct {
	Index int
	Err   error
}

func (e *DateError) Field() string { return fmt.Sprintf("history[%d].date", e.Index) }

func (e *DateError) Error() string { return e.Field() + ": " + e.Err.Error() }

func (e *DateError) Unwrap() error { return e.Err }

// ParseHistory converts wire records. A bad date is returned as *DateError.
func ParseHistory(in []HistoryRecordRequest) ([]HistoricalRecord, error) {
	out := make([]HistoricalRecord, len(in))
	for i, r := range in {
		d, err := xutil.ParseDate(r.Date)
		if err != nil {
			return nil, &DateError{Index: i, Err: err}
		}
		out[i] = r.ToRecord(d)
	}
	return out, nil
}
