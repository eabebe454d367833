package filewalker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ErrInvalidInput is returned when an input path is neither a directory nor a
// recognised document.
var ErrInvalidInput = errors.New("input must be a directory or a document")

// Recognizer decides which files are structured documents.
type Recognizer interface {
	IsDocument(name string) bool
}

// Walker traverses an input path and reports every entry to a callback.
type Walker struct {
	recognizer Recognizer
}

// NewWalker creates a Walker that classifies files with r.
func NewWalker(r Recognizer) *Walker {
	return &Walker{recognizer: r}
}

// Entry is a discovered file or directory.
type Entry struct {
	// Path is the location on disk.
	Path string
	// Rel is Path relative to the processing root with / separators. For a
	// single-document input it is the base name.
	Rel string
	// Dir marks directories below the root.
	Dir bool
	// Document marks files recognised as structured documents.
	Document bool
}

// Walk reports the entries of input to fn. A directory input yields every
// directory and file below it in lexical order; a document input yields the
// document alone. Any other input fails with ErrInvalidInput.
//
// Symbolic links are followed. A link that leads back to one of its own
// ancestor directories is reported but not descended into. Returning
// filepath.SkipDir from fn for a directory entry skips its contents.
func (w *Walker) Walk(input string, fn func(Entry) error) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("stat input %s: %w", input, err)
	}

	if !info.IsDir() {
		if !info.Mode().IsRegular() || !w.recognizer.IsDocument(input) {
			return fmt.Errorf("%s: %w", input, ErrInvalidInput)
		}
		return fn(Entry{Path: input, Rel: filepath.Base(input), Document: true})
	}

	resolved, err := filepath.EvalSymlinks(input)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", input, err)
	}

	count := 0
	ancestors := map[string]bool{resolved: true}
	if err := w.walkDir(input, "", ancestors, &count, fn); err != nil {
		return err
	}

	log.Debug().Int("count", count).Str("root", input).Msg("Discovered files")
	return nil
}

func (w *Walker) walkDir(dir, rel string, ancestors map[string]bool, count *int, fn func(Entry) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}

	for _, de := range entries {
		path := filepath.Join(dir, de.Name())
		entry := Entry{Path: path, Rel: de.Name()}
		if rel != "" {
			entry.Rel = rel + "/" + de.Name()
		}

		info, err := os.Stat(path)
		if err != nil {
			if de.Type()&os.ModeSymlink != 0 {
				log.Warn().Str("path", path).Err(err).Msg("Skipping broken link")
				continue
			}
			return fmt.Errorf("walk %s: %w", path, err)
		}

		switch {
		case info.IsDir():
			entry.Dir = true
			if err := fn(entry); err != nil {
				if errors.Is(err, filepath.SkipDir) {
					continue
				}
				return err
			}

			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", path, err)
			}
			if ancestors[resolved] {
				log.Warn().Str("path", path).Str("target", resolved).Msg("Skipping directory link cycle")
				continue
			}

			ancestors[resolved] = true
			err = w.walkDir(path, entry.Rel, ancestors, count, fn)
			delete(ancestors, resolved)
			if err != nil {
				return err
			}
		case info.Mode().IsRegular():
			entry.Document = w.recognizer.IsDocument(path)
			*count++
			if err := fn(entry); err != nil {
				return err
			}
		default:
			log.Debug().Str("path", path).Msg("Skipping non-regular file")
		}
	}
	return nil
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
