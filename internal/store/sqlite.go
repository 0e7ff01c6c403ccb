package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"chartcore/internal/market"
)

// SQLiteBarStore sqlite 落地的 K 线存储，表按 (symbol, interval, ts)
// 主键去重。
type SQLiteBarStore struct {
	db *sql.DB
}

const barsSchema = `
CREATE TABLE IF NOT EXISTS bars (
    symbol   TEXT NOT NULL,
    interval TEXT NOT NULL,
    ts       INTEGER NOT NULL,
    open     REAL NOT NULL,
    high     REAL NOT NULL,
    low      REAL NOT NULL,
    close    REAL NOT NULL,
    volume   REAL NOT NULL,
    PRIMARY KEY (symbol, interval, ts)
);`

func OpenSQLite(path string) (*SQLiteBarStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(barsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteBarStore{db: db}, nil
}

func (s *SQLiteBarStore) Close() error { return s.db.Close() }

// Put upserts the batch inside one transaction.
func (s *SQLiteBarStore) Put(ctx context.Context, symbol, interval string, bars []market.Bar) error {
	if symbol == "" || interval == "" {
		return errors.New("symbol/interval required")
	}
	if len(bars) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bars
        (symbol, interval, ts, open, high, low, close, volume)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(symbol, interval, ts) DO UPDATE SET
        open=excluded.open, high=excluded.high, low=excluded.low,
        close=excluded.close, volume=excluded.volume`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, interval, b.Time, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Get 按时间升序取全部。
func (s *SQLiteBarStore) Get(ctx context.Context, symbol, interval string) ([]market.Bar, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ts, open, high, low, close, volume
        FROM bars WHERE symbol = ? AND interval = ? ORDER BY ts ASC`, symbol, interval)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []market.Bar
	for rows.Next() {
		var b market.Bar
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
