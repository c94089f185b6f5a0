package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/ports"
	_ "modernc.org/sqlite"
)

const (
	historyDirMode = 0o700
	timeLayout     = time.RFC3339Nano
)

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	id   INTEGER PRIMARY KEY,
	dt   TEXT NOT NULL,
	text TEXT NOT NULL
)`

type Repository struct {
	db *sql.DB
}

var _ ports.HistoryRepository = (*Repository)(nil)

// Open creates the database file and the messages table when missing.
func Open(ctx context.Context, path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), historyDirMode); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// A single connection serialises writers, which sqlite requires anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createMessagesTable); err != nil {
		return nil, errors.Join(fmt.Errorf("create messages table: %w", err), db.Close())
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Save(ctx context.Context, record domain.HistoryRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (dt, text) VALUES (?, ?)`,
		record.At.Format(timeLayout), record.Text,
	)
	if err != nil {
		return fmt.Errorf("save history record: %w", err)
	}

	return nil
}

func (r *Repository) List(ctx context.Context) ([]domain.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT dt, text FROM messages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list history records: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var dt, text string
		if err := rows.Scan(&dt, &text); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}

		at, err := time.Parse(timeLayout, dt)
		if err != nil {
			return nil, fmt.Errorf("parse history timestamp %q: %w", dt, err)
		}
		records = append(records, domain.HistoryRecord{At: at, Text: text})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history records: %w", err)
	}

	return records, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
