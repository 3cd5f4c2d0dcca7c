package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("storage: file not found")

// FileStore reads the bytes behind a stored locator.
type FileStore interface {
	Read(ctx context.Context, locator string) ([]byte, error)
}

// LocalFileStore serves files from a directory on local disk, usually the
// uploads directory written by the ingestion side.
type LocalFileStore struct {
	root string
}

func NewLocalFileStore(root string) *LocalFileStore {
	if root == "" {
		root = "./uploads"
	}
	return &LocalFileStore{root: root}
}

func (s *LocalFileStore) Root() string {
	return s.root
}

func (s *LocalFileStore) Read(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
		}
		return nil, fmt.Errorf("read %s: %w", locator, err)
	}
	return data, nil
}

// resolve maps a locator to a path under root. Locators cannot climb out of
// root.
func (s *LocalFileStore) resolve(locator string) (string, error) {
	if strings.TrimSpace(locator) == "" {
		return "", fmt.Errorf("%w: empty locator", ErrNotFound)
	}
	clean := filepath.Clean(string(filepath.Separator) + filepath.FromSlash(locator))
	return filepath.Join(s.root, clean), nil
}
