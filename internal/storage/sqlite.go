package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finledger/internal/core"
	"finledger/internal/ports"

	_ "modernc.org/sqlite"
)

// Timestamps are stored in a fixed-width layout so that they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores ledger documents as JSON rows in a SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serialises writers; one connection keeps transactions from
	// failing with SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateMonth(ctx context.Context, user string, m core.MonthRecord) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode month: %w", err)
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM months WHERE user_key = ? AND (id = ? OR month_year = ?)`,
			user, m.ID, m.MonthYear).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check month: %w", err)
		}
		if exists > 0 {
			return ports.ErrMonthExists
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO months (user_key, id, month_year, version, document, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			user, m.ID, m.MonthYear, m.Version, string(doc), m.Timestamp.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("insert month: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) GetMonth(ctx context.Context, user, id string) (core.MonthRecord, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM months WHERE user_key = ? AND id = ?`, user, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return core.MonthRecord{}, fmt.Errorf("get month %s: %w", id, err)
	}
	return decodeMonth(doc)
}

func (r *SQLiteRepository) ListMonths(ctx context.Context, user string) ([]core.MonthRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT document FROM months WHERE user_key = ? ORDER BY id`, user)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	defer rows.Close()

	var out []core.MonthRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		m, err := decodeMonth(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ApplyUpdate(ctx context.Context, user string, m core.MonthRecord, expectedVersion int64, entry core.ArchiveEntry) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode month: %w", err)
	}
	entryDoc, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode archive entry: %w", err)
	}

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		var version int64
		err := tx.QueryRowContext(ctx,
			`SELECT version FROM months WHERE user_key = ? AND id = ?`, user, m.ID).Scan(&version)
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read month version: %w", err)
		}
		if version != expectedVersion {
			return ports.ErrVersionConflict
		}

		var taken int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM month_history WHERE user_key = ? AND month_id = ? AND archive_key = ?`,
			user, m.ID, entry.Key).Scan(&taken)
		if err != nil {
			return fmt.Errorf("check archive key: %w", err)
		}
		if taken > 0 {
			return ports.ErrArchiveKeyExists
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE months SET version = ?, document = ?, updated_at = ? WHERE user_key = ? AND id = ? AND version = ?`,
			m.Version, string(doc), m.Timestamp.UTC().Format(timeLayout), user, m.ID, expectedVersion)
		if err != nil {
			return fmt.Errorf("update month: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO month_history (user_key, month_id, archive_key, document, recorded_at) VALUES (?, ?, ?, ?, ?)`,
			user, m.ID, entry.Key, string(entryDoc), entry.RecordedAt.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("append archive entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "Month update stored in SQLite",
		"month_id", m.ID,
		"version", m.Version,
		"archive_key", entry.Key)
	return nil
}

func (r *SQLiteRepository) ListHistory(ctx context.Context, user, monthID string) ([]core.ArchiveEntry, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM months WHERE user_key = ? AND id = ?`, user, monthID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check month: %w", err)
	}
	if exists == 0 {
		return nil, ports.ErrNotFound
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT document FROM month_history WHERE user_key = ? AND month_id = ?
		 ORDER BY recorded_at DESC, rowid DESC`, user, monthID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]core.ArchiveEntry, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan archive entry: %w", err)
		}
		var e core.ArchiveEntry
		if err := json.Unmarshal([]byte(doc), &e); err != nil {
			return nil, fmt.Errorf("decode archive entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetHistory(ctx context.Context, user, monthID, key string) (core.ArchiveEntry, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM month_history WHERE user_key = ? AND month_id = ? AND archive_key = ?`,
		user, monthID, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ArchiveEntry{}, ports.ErrNotFound
	}
	if err != nil {
		return core.ArchiveEntry{}, fmt.Errorf("get archive entry: %w", err)
	}
	var e core.ArchiveEntry
	if err := json.Unmarshal([]byte(doc), &e); err != nil {
		return core.ArchiveEntry{}, fmt.Errorf("decode archive entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) SaveCard(ctx context.Context, user string, c core.Card) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode card: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO cards (user_key, id, bank_name, card_name, document, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_key, id) DO UPDATE SET
		   bank_name = excluded.bank_name,
		   card_name = excluded.card_name,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		user, c.ID, c.BankName, c.CardName, string(doc), c.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCard(ctx context.Context, user, id string) (core.Card, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM cards WHERE user_key = ? AND id = ?`, user, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Card{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Card{}, fmt.Errorf("get card %s: %w", id, err)
	}
	var c core.Card
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return core.Card{}, fmt.Errorf("decode card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context, user string) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT document FROM cards WHERE user_key = ? ORDER BY bank_name, card_name`, user)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	out := make([]core.Card, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		var c core.Card
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("decode card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListCardUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_key FROM cards ORDER BY user_key`)
	if err != nil {
		return nil, fmt.Errorf("list card users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan card user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveStatement(ctx context.Context, user string, s core.Statement) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode statement: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO card_statements (user_key, card_id, month, document, closed_at)
		 SELECT ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM cards WHERE user_key = ? AND id = ?)
		 ON CONFLICT (user_key, card_id, month) DO UPDATE SET
		   document = excluded.document,
		   closed_at = excluded.closed_at`,
		user, s.CardID, s.Month, string(doc), s.ClosedAt.UTC().Format(timeLayout), user, s.CardID)
	if err != nil {
		return fmt.Errorf("save statement: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListStatements(ctx context.Context, user, cardID string) ([]core.Statement, error) {
	if _, err := r.GetCard(ctx, user, cardID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT document FROM card_statements WHERE user_key = ? AND card_id = ?`, user, cardID)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	out := make([]core.Statement, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		var s core.Statement
		if err := json.Unmarshal([]byte(doc), &s); err != nil {
			return nil, fmt.Errorf("decode statement: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	core.SortStatements(out)
	return out, nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func decodeMonth(doc string) (core.MonthRecord, error) {
	var m core.MonthRecord
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return core.MonthRecord{}, fmt.Errorf("decode month: %w", err)
	}
	return m, nil
}

var _ ports.Store = (*SQLiteRepository)(nil)
