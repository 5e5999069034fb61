package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHistory(t *testing.T) {
	got, err := ParseHistory([]HistoryRecordRequest{
		{Date: "2024-01-10", TradingCode: "GP", Closep: 10, Volume: 5},
		{Date: "2024-01-11T00:00:00Z", Closep: 11},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, int64(5), got[0].Volume)
	assert.Equal(t, 11.0, got[1].Closep)

	_, err = ParseHistory([]HistoryRecordRequest{{Date: "2024-01-10"}, {Date: "bad"}})
	var de *DateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1, de.Index)
	assert.Equal(t, "history[1].date", de.Field())
}

func TestHorizonDefaults(t *testing.T) {
	r := PredictRequest{}
	assert.Equal(t, DefaultNHead, r.Horizon())
	zero := 0
	r.NHead = &zero
	assert.Equal(t, 0, r.Horizon())

	s := StoredPredictRequest{}
	n, ok := s.Horizon()
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	s.NHead = "seven"
	_, ok = s.Horizon()
	assert.False(t, ok)
}

func TestNewForecastEvents(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	f := &Forecast{
		Success:        true,
		TradingCode:    "GP",
		DataPointsUsed: 60,
		Predictions: map[string]HorizonResult{
			"3_day": {PredictedPrices: []float64{1, 2, 3}, Dates: []string{"a", "b", "c"}, FinalPrice: 3},
		},
	}
	evs := NewForecastEvents(f, now)
	require.Len(t, evs, 1)
	assert.NotEmpty(t, evs[0].ID)
	assert.Equal(t, "3_day", evs[0].Horizon)
	assert.Equal(t, 3.0, evs[0].FinalPrice)
	assert.Equal(t, now, evs[0].GeneratedAt)
}
