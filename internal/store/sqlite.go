package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "stocklens/internal/errors"
	"stocklens/internal/models"
)

// SQLiteStore implements SeriesStore using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLite-based candle cache.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open database")
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:  db,
		now: time.Now,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "failed to initialize schema")
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for daily OHLCV history
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		exchange TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, exchange, timestamp)
	);

	-- Fetch log tracking when each series was last pulled from the network
	-- and how far back that pull reached
	CREATE TABLE IF NOT EXISTS fetches (
		symbol TEXT NOT NULL,
		exchange TEXT NOT NULL,
		fetched_at DATETIME NOT NULL,
		range_from DATETIME NOT NULL,
		PRIMARY KEY (symbol, exchange)
	);

	CREATE INDEX IF NOT EXISTS idx_candles_lookup
		ON candles(symbol, exchange, timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCandles upserts a fetched series inside one transaction and records
// the fetch time together with the start of the fetched range.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol string, exchange models.Exchange, from time.Time, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, exchange, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, symbol, string(exchange), c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO fetches (symbol, exchange, fetched_at, range_from)
		VALUES (?, ?, ?, ?)
	`, symbol, string(exchange), s.now().UTC(), from.UTC())
	if err != nil {
		return fmt.Errorf("failed to record fetch time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCandles returns cached candles within [from, to] in chronological order.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, exchange models.Exchange, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND exchange = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, string(exchange), from, to)
	if err != nil {
		return nil, apperrors.NewDataError("sqlite", symbol, "failed to query candles", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, apperrors.NewDataError("sqlite", symbol, "failed to scan candle", err)
		}
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDataError("sqlite", symbol, "error iterating candles", err)
	}

	return candles, nil
}

// LastFetched returns when the series was last pulled from the network and
// the start of the range that pull covered.
func (s *SQLiteStore) LastFetched(ctx context.Context, symbol string, exchange models.Exchange) (time.Time, time.Time, error) {
	var fetchedAt, rangeFrom sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT fetched_at, range_from FROM fetches WHERE symbol = ? AND exchange = ?
	`, symbol, string(exchange)).Scan(&fetchedAt, &rangeFrom)
	if err == sql.ErrNoRows {
		return time.Time{}, time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to get fetch time: %w", err)
	}
	if !fetchedAt.Valid {
		return time.Time{}, time.Time{}, nil
	}
	return fetchedAt.Time, rangeFrom.Time, nil
}
