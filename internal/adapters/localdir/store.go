// Package localdir stores blobs as files under a root directory. It backs
// single-node deployments where result evidence lives on an attached volume.
package localdir

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/filestore"
)

type Store struct {
	root string
}

var _ filestore.Store = (*Store)(nil)

func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localdir: root directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("localdir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("localdir: %w", err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	_ = contentType
	_ = size
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("localdir: %w", err)
	}

	// Write to a temp file first so a failed upload never leaves a truncated
	// blob at the final key.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("localdir: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("localdir: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("localdir: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("localdir: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return filestore.ErrNotFound
		}
		return fmt.Errorf("localdir: %w", err)
	}
	return nil
}

// resolve maps a key to an on-disk path and rejects keys that would escape
// the root.
func (s *Store) resolve(key string) (string, error) {
	if key == "" {
		return "", errors.New("localdir: empty key")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("localdir: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
