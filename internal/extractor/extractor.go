// Package extractor turns the translatable fields of structured documents
// into translation table rows.
package extractor

import (
	"context"
	"fmt"

	"langfile/internal/address"
	"langfile/internal/document"
	"langfile/internal/filewalker"
	"langfile/internal/metrics"
	"langfile/internal/policy"
	"langfile/internal/storage"
	"langfile/internal/table"

	"github.com/rs/zerolog/log"
)

// Extractor walks documents and emits one row per translatable string field.
type Extractor struct {
	policy   *policy.Policy
	storage  *storage.Storage
	walker   *filewalker.Walker
	recorder *metrics.Recorder
}

// New creates an Extractor. A nil recorder gets a private one.
func New(p *policy.Policy, s *storage.Storage, r *metrics.Recorder) *Extractor {
	if r == nil {
		r = metrics.New()
	}
	return &Extractor{
		policy:   p,
		storage:  s,
		walker:   filewalker.NewWalker(p),
		recorder: r,
	}
}

// Extract returns the rows of a document or of every document below a
// directory, in walk order.
func (e *Extractor) Extract(ctx context.Context, input string) ([]table.Row, error) {
	var rows []table.Row

	err := e.walker.Walk(input, func(entry filewalker.Entry) error {
		if !entry.Document {
			return nil
		}

		data, err := e.storage.Read(ctx, entry.Path)
		if err != nil {
			return err
		}
		root, err := document.Parse(data)
		if err != nil {
			return fmt.Errorf("parse document %s: %w", entry.Path, err)
		}

		fileRows := e.ExtractDocument(root, address.File(entry.Rel))
		rows = append(rows, fileRows...)

		e.recorder.DocumentsTotal.WithLabelValues(metrics.OpExtract).Inc()
		log.Debug().Str("file", entry.Rel).Int("rows", len(fileRows)).Msg("Extracted document")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// ExtractDocument returns the rows of one parsed document addressed as file.
// Translatable keys holding numbers, booleans or null are skipped so that a
// later apply cannot change their type.
func (e *Extractor) ExtractDocument(root *document.Node, file address.Address) []table.Row {
	var rows []table.Row
	document.Walk(root, "", e.policy, func(f document.Field) {
		e.recorder.FieldsTotal.WithLabelValues(metrics.OpExtract).Inc()
		if !f.Value.IsString() {
			log.Debug().Str("file", string(file)).Str("path", f.Path).Msg("Skipping non-string translatable field")
			return
		}
		rows = append(rows, table.Row{
			File:  file,
			Field: address.Of(f.Path),
			Text:  table.Escape(f.Value.Text),
		})
	})
	return rows
}

// ExtractFile extracts input and writes the table to output once every
// document has been walked.
func (e *Extractor) ExtractFile(ctx context.Context, input, output string) error {
	rows, err := e.Extract(ctx, input)
	if err != nil {
		return err
	}

	if err := table.Write(ctx, output, rows); err != nil {
		return err
	}
	e.recorder.RowsTotal.WithLabelValues(metrics.OpExtract).Add(float64(len(rows)))

	log.Info().Str("path", output).Int("rows", len(rows)).Msg("CSV file written")
	return nil
}
