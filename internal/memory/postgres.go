package memory

import (
	"context"
	"fmt"

	"langfile/internal/address"
	"langfile/internal/table"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PostgresStore keeps the translation memory in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, pings and ensures the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure memory schema: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	return &PostgresStore{pool: pool}, nil
}

// Put upserts rows in one transaction.
func (s *PostgresStore) Put(ctx context.Context, rows []table.Row) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range rows {
		if _, err := tx.Exec(ctx, upsertSQL, string(r.File), string(r.Field), r.Text); err != nil {
			return 0, fmt.Errorf("upsert memory row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return len(rows), nil
}

// All returns every stored row.
func (s *PostgresStore) All(ctx context.Context) ([]table.Row, error) {
	rows, err := s.pool.Query(ctx, selectAllSQL)
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

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
