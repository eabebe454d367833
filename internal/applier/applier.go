// Package applier writes translated table text back into structured
// documents and mirrors every other file to the output.
package applier

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"langfile/internal/address"
	"langfile/internal/document"
	"langfile/internal/filewalker"
	"langfile/internal/metrics"
	"langfile/internal/policy"
	"langfile/internal/storage"
	"langfile/internal/table"

	"github.com/rs/zerolog/log"
)

// Applier injects translations into documents.
type Applier struct {
	policy   *policy.Policy
	storage  *storage.Storage
	walker   *filewalker.Walker
	recorder *metrics.Recorder
}

// New creates an Applier. A nil recorder gets a private one.
func New(p *policy.Policy, s *storage.Storage, r *metrics.Recorder) *Applier {
	if r == nil {
		r = metrics.New()
	}
	return &Applier{
		policy:   p,
		storage:  s,
		walker:   filewalker.NewWalker(p),
		recorder: r,
	}
}

// Apply reads the table at tablePath and writes the translated copy of input
// to output. For a directory input, output becomes a full mirror: documents
// are translated, every other file is copied unchanged. For a document input,
// output is the target file, or the directory to place it in when it already
// exists as one.
func (a *Applier) Apply(ctx context.Context, input, tablePath, output string) error {
	rows, err := table.Read(tablePath)
	if err != nil {
		return err
	}
	lookup := table.NewLookup(rows)
	log.Info().Str("path", tablePath).Int("rows", len(rows)).Int("keys", lookup.Len()).Msg("Loaded translation table")

	dirInput := filewalker.IsDir(input)
	var outInfo os.FileInfo
	if dirInput {
		if err := storage.MkdirAll(output); err != nil {
			return err
		}
		if outInfo, err = os.Stat(output); err != nil {
			return fmt.Errorf("stat output %s: %w", output, err)
		}
	}

	return a.walker.Walk(input, func(entry filewalker.Entry) error {
		target := output
		if dirInput {
			target = filepath.Join(output, filepath.FromSlash(entry.Rel))
		} else if filewalker.IsDir(output) {
			target = filepath.Join(output, entry.Rel)
		}

		switch {
		case entry.Dir:
			if info, err := os.Stat(entry.Path); err == nil && os.SameFile(info, outInfo) {
				log.Debug().Str("path", entry.Path).Msg("Skipping output directory")
				return filepath.SkipDir
			}
			return storage.MkdirAll(target)
		case entry.Document:
			return a.applyFile(ctx, entry, lookup, target)
		default:
			if err := a.storage.Copy(ctx, entry.Path, target); err != nil {
				return err
			}
			a.recorder.FilesCopiedTotal.Inc()
			log.Debug().Str("input", entry.Path).Str("output", target).Msg("File copied")
			return nil
		}
	})
}

func (a *Applier) applyFile(ctx context.Context, entry filewalker.Entry, lookup *table.Lookup, target string) error {
	data, err := a.storage.Read(ctx, entry.Path)
	if err != nil {
		return err
	}
	root, err := document.Parse(data)
	if err != nil {
		return fmt.Errorf("parse document %s: %w", entry.Path, err)
	}

	applied := a.ApplyDocument(root, address.File(entry.Rel), lookup)

	out, err := document.Encode(root)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", entry.Path, err)
	}
	if err := storage.WriteAtomic(ctx, target, out); err != nil {
		return err
	}

	a.recorder.DocumentsTotal.WithLabelValues(metrics.OpApply).Inc()
	log.Info().
		Str("input", entry.Path).
		Str("output", target).
		Int("translations", applied).
		Msg("Translated JSON file written")
	return nil
}

// ApplyDocument replaces every translatable string field of root that has a
// row in lookup and returns the number of replaced fields. Fields without a
// row keep their value and are reported.
func (a *Applier) ApplyDocument(root *document.Node, file address.Address, lookup *table.Lookup) int {
	applied := 0
	document.Walk(root, "", a.policy, func(f document.Field) {
		if !f.Value.IsString() {
			return
		}
		a.recorder.FieldsTotal.WithLabelValues(metrics.OpApply).Inc()

		field := address.Of(f.Path)
		text, ok := lookup.Get(file, field)
		if !ok {
			a.recorder.MissingTranslationsTotal.Inc()
			log.Warn().Str("key", table.Key(file, field)).Str("path", f.Path).Msg("No translation found")
			return
		}
		f.Container.Set(f.Key, document.NewString(table.Unescape(text)))
		applied++
	})
	return applied
}
