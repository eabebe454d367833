// Package memory persists translation rows so tables from different runs and
// translators can be pushed to and pulled from a shared translation memory.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"langfile/internal/table"
)

// ErrUnsupportedDSN is returned by Open for unknown data source names.
var ErrUnsupportedDSN = errors.New("unsupported memory DSN")

// Store is a translation memory keyed by file and field address.
type Store interface {
	// Put upserts rows in one transaction; later rows win.
	Put(ctx context.Context, rows []table.Row) (int, error)
	// All returns every stored row ordered by file, then field.
	All(ctx context.Context) ([]table.Row, error)
	Close() error
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS translation_memory (
	file_address  TEXT NOT NULL,
	field_address TEXT NOT NULL,
	text          TEXT NOT NULL,
	PRIMARY KEY (file_address, field_address)
)`

const upsertSQL = `INSERT INTO translation_memory (file_address, field_address, text)
VALUES ($1, $2, $3)
ON CONFLICT (file_address, field_address) DO UPDATE SET text = excluded.text`

const selectAllSQL = `SELECT file_address, field_address, text
FROM translation_memory
ORDER BY file_address, field_address`

// Open connects to the store named by dsn: postgres:// and postgresql://
// URLs use PostgreSQL, sqlite:// URLs and paths ending in .db use SQLite.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasSuffix(dsn, ".db"):
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("%q: %w", dsn, ErrUnsupportedDSN)
	}
}
