package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"langfile/internal/address"
	"langfile/internal/table"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the translation memory in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create memory directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open SQLite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure memory schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put upserts rows in one transaction.
func (s *SQLiteStore) Put(ctx context.Context, rows []table.Row) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, string(r.File), string(r.Field), r.Text); err != nil {
			return 0, fmt.Errorf("upsert memory row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return len(rows), nil
}

// All returns every stored row.
func (s *SQLiteStore) All(ctx context.Context) ([]table.Row, error) {
	rows, err := s.db.QueryContext(ctx, selectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("query memory rows: %w", err)
	}
	defer rows.Close()

	var out []table.Row
	for rows.Next() {
		var file, field, text string
		if err := rows.Scan(&file, &field, &text); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		out = append(out, table.Row{File: address.Address(file), Field: address.Address(field), Text: text})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory rows: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
