// Package merger combines several translation tables into one, resolving
// field addresses against reference documents to pick join separators.
package merger

import (
	"context"
	"fmt"
	"strings"

	"langfile/internal/address"
	"langfile/internal/document"
	"langfile/internal/filewalker"
	"langfile/internal/metrics"
	"langfile/internal/policy"
	"langfile/internal/storage"
	"langfile/internal/table"

	"github.com/rs/zerolog/log"
)

// Merger joins the values of additional tables into a primary table.
type Merger struct {
	policy   *policy.Policy
	storage  *storage.Storage
	walker   *filewalker.Walker
	recorder *metrics.Recorder
}

// New creates a Merger. A nil recorder gets a private one.
func New(p *policy.Policy, s *storage.Storage, r *metrics.Recorder) *Merger {
	if r == nil {
		r = metrics.New()
	}
	return &Merger{
		policy:   p,
		storage:  s,
		walker:   filewalker.NewWalker(p),
		recorder: r,
	}
}

// KeyMap maps field addresses back to the dotted paths they were hashed from.
type KeyMap map[address.Address]string

// Resolve returns the path of field, or the address itself when unknown.
func (km KeyMap) Resolve(field address.Address) string {
	if path, ok := km[field]; ok {
		return path
	}
	return string(field)
}

// BuildKeyMap walks every translatable field of the reference document or
// directory and records the address of its path.
func (m *Merger) BuildKeyMap(ctx context.Context, reference string) (KeyMap, error) {
	km := make(KeyMap)
	err := m.walker.Walk(reference, func(entry filewalker.Entry) error {
		if !entry.Document {
			return nil
		}
		data, err := m.storage.Read(ctx, entry.Path)
		if err != nil {
			return err
		}
		root, err := document.Parse(data)
		if err != nil {
			return fmt.Errorf("parse document %s: %w", entry.Path, err)
		}
		document.Walk(root, "", m.policy, func(f document.Field) {
			km[address.Of(f.Path)] = f.Path
		})
		m.recorder.DocumentsTotal.WithLabelValues(metrics.OpMerge).Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Int("paths", len(km)).Str("reference", reference).Msg("Built key map")
	return km, nil
}

// Combine merges additional tables into primary and returns the combined
// rows. Every primary row keeps its position and shape; its text becomes the
// primary text followed by each matching additional text, in table order,
// joined by the separator of the resolved path. Additional rows without a
// primary row are dropped.
func (m *Merger) Combine(km KeyMap, primary []table.Row, additional ...[]table.Row) []table.Row {
	indexes := make([]table.Index, len(additional))
	for i, rows := range additional {
		indexes[i] = table.NewIndex(rows)
	}

	combined := make([]table.Row, len(primary))
	for i, row := range primary {
		join := m.policy.JoinFor(km.Resolve(row.Field))

		values := []string{row.Text}
		for _, idx := range indexes {
			values = append(values, idx.Texts(row)...)
		}

		row.Text = strings.Join(values, join)
		combined[i] = row
		m.recorder.FieldsTotal.WithLabelValues(metrics.OpMerge).Inc()
	}
	return combined
}

// Merge reads the reference documents and the tables and returns the
// combined rows.
func (m *Merger) Merge(ctx context.Context, reference, primaryPath string, additionalPaths ...string) ([]table.Row, error) {
	km, err := m.BuildKeyMap(ctx, reference)
	if err != nil {
		return nil, err
	}

	primary, err := table.Read(primaryPath)
	if err != nil {
		return nil, err
	}

	additional := make([][]table.Row, 0, len(additionalPaths))
	for _, p := range additionalPaths {
		rows, err := table.Read(p)
		if err != nil {
			return nil, err
		}
		additional = append(additional, rows)
	}

	return m.Combine(km, primary, additional...), nil
}

// MergeFile merges the tables and writes the combined table to output.
func (m *Merger) MergeFile(ctx context.Context, output, reference, primaryPath string, additionalPaths ...string) error {
	rows, err := m.Merge(ctx, reference, primaryPath, additionalPaths...)
	if err != nil {
		return err
	}

	if err := table.Write(ctx, output, rows); err != nil {
		return err
	}
	m.recorder.RowsTotal.WithLabelValues(metrics.OpMerge).Add(float64(len(rows)))

	log.Info().
		Str("path", output).
		Int("rows", len(rows)).
		Int("tables", len(additionalPaths)+1).
		Msg("CSV file written")
	return nil
}
