// Package jsonstore keeps one entity collection per pretty-printed JSON file.
// It is the storage used when MySQL is not selected.
package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"clubsite-be/internal/logger"

	"go.uber.org/zap"
)

const fileMode = 0o644

// Collection is a JSON array file of T. All mutations go through Update,
// which holds the collection lock for the whole read-modify-write.
type Collection[T any] struct {
	path string
	mu   sync.Mutex
}

func NewCollection[T any](dir, file string) *Collection[T] {
	return &Collection[T]{path: filepath.Join(dir, file)}
}

func (c *Collection[T]) Path() string { return c.path }

// Ensure creates the data directory and an empty array file when missing.
func (c *Collection[T]) Ensure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ensureFile(c.path, []byte("[]"))
}

// All returns every stored item in file order.
func (c *Collection[T]) All() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Update loads the collection, applies fn and writes the result back.
// Nothing is written when fn returns an error.
func (c *Collection[T]) Update(fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return err
	}

	items, err = fn(items)
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}

	return writeJSON(c.path, items)
}

// Load is All with read failures logged.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	items, err := c.All()
	if err != nil {
		logger.FromCtx(ctx).Error("reading JSON store failed",
			zap.String("path", c.path),
			zap.Error(err),
		)
	}
	return items, err
}

// Modify is Update with storage failures logged. Errors returned by fn are
// passed through without logging.
func (c *Collection[T]) Modify(ctx context.Context, fn func(items []T) ([]T, error)) error {
	var fnErr error
	err := c.Update(func(items []T) ([]T, error) {
		out, err := fn(items)
		fnErr = err
		return out, err
	})
	if err != nil && fnErr == nil {
		logger.FromCtx(ctx).Error("writing JSON store failed",
			zap.String("path", c.path),
			zap.Error(err),
		)
	}
	return err
}

func (c *Collection[T]) load() ([]T, error) {
	if err := ensureFile(c.path, []byte("[]")); err != nil {
		return nil, err
	}
	items, err := ReadFile[T](c.path)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// ReadFile decodes a JSON array file.
func ReadFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []T
	if len(bytes.TrimSpace(data)) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// ReadObject decodes a JSON object file into v. A missing file leaves v untouched
// and reports ok=false.
func ReadObject(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// WriteObject stores v as a pretty-printed JSON file.
func WriteObject(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeJSON(path, v)
}

func ensureFile(path string, empty []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, empty, fileMode)
}

// writeJSON replaces path atomically via a temp file in the same directory.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	// CreateTemp uses 0600
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
