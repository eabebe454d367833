// Package table reads and writes the comma-separated translation tables
// exchanged between extraction, merging and application.
package table

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"langfile/internal/address"
	"langfile/internal/storage"
)

// ErrMalformedRow is returned for rows that are neither 2 nor 3 columns wide.
var ErrMalformedRow = errors.New("malformed table row")

// utf8BOM is skipped at the start of a table.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one translation entry. File is empty for legacy two-column rows,
// which carry only a field address and text.
type Row struct {
	File  address.Address
	Field address.Address
	Text  string
}

// Key returns the lookup key of the row: file and field joined by a space.
func (r Row) Key() string {
	return Key(r.File, r.Field)
}

// Legacy reports whether the row uses the two-column shape.
func (r Row) Legacy() bool {
	return r.File == ""
}

// Record returns the CSV columns of the row, keeping its shape.
func (r Row) Record() []string {
	if r.Legacy() {
		return []string{string(r.Field), r.Text}
	}
	return []string{string(r.File), string(r.Field), r.Text}
}

// Key builds a lookup key from a file and a field address.
func Key(file, field address.Address) string {
	return string(file) + " " + string(field)
}

// Parse decodes table rows from CSV data.
func Parse(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var rows []Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch len(rec) {
		case 3:
			rows = append(rows, Row{File: address.Address(rec[0]), Field: address.Address(rec[1]), Text: rec[2]})
		case 2:
			rows = append(rows, Row{Field: address.Address(rec[0]), Text: rec[1]})
		default:
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("line %d: %d columns: %w", line, len(rec), ErrMalformedRow)
		}
	}
	return rows, nil
}

// Read loads a table file.
func Read(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	rows, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse table %s: %w", path, err)
	}
	return rows, nil
}

// Format encodes rows as CSV.
func Format(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores rows at path in one step, creating parent directories.
func Write(ctx context.Context, path string, rows []Row) error {
	data, err := Format(rows)
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	if err := storage.WriteAtomic(ctx, path, data); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}
