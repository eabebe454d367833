// Package storage reads, copies and atomically writes the files handled by a
// run.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/viant/afs"
)

const (
	// PermFile is the mode of written documents and tables.
	PermFile os.FileMode = 0o644
	// PermDir is the mode of created directories.
	PermDir os.FileMode = 0o755
)

// Storage is the file service used by the extractor, applier and merger.
type Storage struct {
	fs afs.Service
}

// New creates a Storage backed by the local file system.
func New() *Storage {
	return &Storage{fs: afs.New()}
}

// Read returns the content of a file.
func (s *Storage) Read(ctx context.Context, path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	data, err := s.fs.DownloadWithURL(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Copy duplicates src at dst byte for byte, keeping the permission bits of
// src. Parent directories of dst are created.
func (s *Storage) Copy(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	data, err := s.Read(ctx, src)
	if err != nil {
		return err
	}
	if err := MkdirAll(filepath.Dir(dst)); err != nil {
		return err
	}
	abs, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := s.fs.Upload(ctx, abs, info.Mode().Perm(), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// MkdirAll creates dir and any missing parents.
func MkdirAll(dir string) error {
	if err := os.MkdirAll(dir, PermDir); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// WriteAtomic writes data to a temporary file in the directory of path and
// renames it over path, so readers never observe a partial file.
func WriteAtomic(ctx context.Context, path string, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	dir := filepath.Dir(path)
	if err := MkdirAll(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, PermFile)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
