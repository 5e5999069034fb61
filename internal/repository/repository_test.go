package repository

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	pkgch "StockCast/pkg/clickhouse"
	pkgkafka "StockCast/pkg/kafka"
)

type recordingProducer struct {
	topic string
	msgs  []pkgkafka.Message
	err   error
}

func (r *recordingProducer) PublishBatch(_ context.Context, topic string, m []pkgkafka.Message) error {
	r.topic = topic
	r.msgs = append(r.msgs, m...)
	return r.err
}

func (r *recordingProducer) Close() error { return nil }

func TestKafkaPublisherKeysBySymbol(t *testing.T) {
	rp := &recordingProducer{}
	p := &KafkaForecastPublisher{producer: rp, topic: "stockcast.forecasts"}

	err := p.PublishForecast(context.Background(), []models.ForecastEvent{
		{ID: "e1", TradingCode: "GP", Horizon: "3_day"},
	})
	require.NoError(t, err)

	assert.Equal(t, "stockcast.forecasts", rp.topic)
	require.Len(t, rp.msgs, 1)
	assert.Equal(t, []byte("GP"), rp.msgs[0].Key)
	assert.Equal(t, "e1", rp.msgs[0].Headers["event-id"])
	assert.Equal(t, "3_day", rp.msgs[0].Headers["horizon"])
}

func TestKafkaPublisherWrapsError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaForecastPublisher{producer: &recordingProducer{err: boom}, topic: "t"}
	err := p.PublishForecast(context.Background(), []models.ForecastEvent{{TradingCode: "GP"}})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, p.PublishForecast(context.Background(), nil))
}

func TestHistorySchemaRejectsBadIdentifiers(t *testing.T) {
	stmts, err := HistorySchema("stockcast", "stock_history")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[1], "stockcast.stock_history")

	_, err = HistorySchema("stockcast", "history; DROP TABLE x")
	assert.Error(t, err)
	_, err = HistorySchema("", "t")
	assert.Error(t, err)
}

func TestReverse(t *testing.T) {
	rs := []models.HistoricalRecord{{ID: 1}, {ID: 2}, {ID: 3}}
	reverse(rs)
	assert.Equal(t, int64(3), rs[0].ID)
	assert.Equal(t, int64(1), rs[2].ID)
}

// Runs against a live server when CLICKHOUSE_HOST is set.
func TestCHHistoryStoreIntegration(t *testing.T) {
	host := os.Getenv("CLICKHOUSE_HOST")
	if host == "" {
		t.Skip("CLICKHOUSE_HOST not set")
	}
	ctx := context.Background()
	ch, err := pkgch.NewClient(ctx, pkgch.WithHost(host))
	require.NoError(t, err)
	defer ch.Close()

	table := "stock_history_test_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	stmts, err := HistorySchema("stockcast_test", table)
	require.NoError(t, err)
	require.NoError(t, ch.InitSchema(ctx, stmts))
	defer ch.DB().ExecContext(ctx, "DROP TABLE IF EXISTS stockcast_test."+table)

	store, err := NewCHHistoryStore(ch, "stockcast_test", table, nil)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var recs []models.HistoricalRecord
	for i := 0; i < 10; i++ {
		recs = append(recs, models.HistoricalRecord{ID: int64(i), Date: start.AddDate(0, 0, i), TradingCode: "GP", Closep: float64(i)})
	}
	require.NoError(t, store.InsertHistory(ctx, recs))

	got, err := store.GetLatestHistory(ctx, "GP", 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, 6.0, got[0].Closep)
	assert.Equal(t, 9.0, got[3].Closep)

	_, err = store.GetLatestHistory(ctx, "NONE", 4)
	assert.ErrorIs(t, err, domrepo.ErrNoHistory)
}
