package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	pkgch "StockCast/pkg/clickhouse"
	applogger "StockCast/pkg/logger"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const historyColumns = `id, date, trading_code, ltp, high, low, openp, closep, ycp, trade, value, volume`

// CHHistoryStore implements HistoryStore backed by ClickHouse.
type CHHistoryStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHHistoryStore reads from database.table. Both names must be plain identifiers.
func NewCHHistoryStore(ch *pkgch.Client, database, table string, l *applogger.Logger) (*CHHistoryStore, error) {
	qualified, err := qualifiedTable(database, table)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHHistoryStore{db: ch.DB(), table: qualified, l: l}, nil
}

// HistorySchema returns the DDL for the daily history table.
func HistorySchema(database, table string) ([]string, error) {
	qualified, err := qualifiedTable(database, table)
	if err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            id           Int64,
            date         Date,
            trading_code LowCardinality(String),
            ltp          Float64,
            high         Float64,
            low          Float64,
            openp        Float64,
            closep       Float64,
            ycp          Float64,
            trade        Int64,
            value        Float64,
            volume       Int64
        )
        ENGINE = ReplacingMergeTree
        ORDER BY (trading_code, date)
    `, qualified),
	}, nil
}

// GetLatestHistory returns up to n of the most recent rows for symbol, oldest first.
func (s *CHHistoryStore) GetLatestHistory(ctx context.Context, symbol string, n int) ([]models.HistoricalRecord, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s FINAL
        WHERE trading_code = ?
        ORDER BY date DESC
        LIMIT ?
    `, historyColumns, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.l.Error("clickhouse latest_history query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Int("limit", n),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get latest history: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoricalRecord, 0, n)
	for rows.Next() {
		var r models.HistoricalRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.TradingCode, &r.Ltp, &r.High, &r.Low,
			&r.Openp, &r.Closep, &r.Ycp, &r.Trade, &r.Value, &r.Volume); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for %s", domrepo.ErrNoHistory, symbol)
	}

	reverse(out)
	s.l.Debug("clickhouse latest_history ok",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// InsertHistory appends rows in one batch. Used by loaders and integration tests.
func (s *CHHistoryStore) InsertHistory(ctx context.Context, records []models.HistoricalRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s)`, s.table, historyColumns))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Date, r.TradingCode, r.Ltp, r.High, r.Low,
			r.Openp, r.Closep, r.Ycp, r.Trade, r.Value, r.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *CHHistoryStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func qualifiedTable(database, table string) (string, error) {
	if !identRe.MatchString(database) {
		return "", fmt.Errorf("invalid clickhouse database name %q", database)
	}
	if !identRe.MatchString(table) {
		return "", fmt.Errorf("invalid clickhouse table name %q", table)
	}
	return database + "." + table, nil
}

func reverse(rs []models.HistoricalRecord) {
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
}
