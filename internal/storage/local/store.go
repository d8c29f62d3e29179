package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"claimrisk/internal/domain"
	"claimrisk/internal/storage"
)

// Store stages documents as files in a temp directory. It implements port.DocumentStore.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, or at os.TempDir() when dir is empty.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory documents are staged in.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Put(_ context.Context, doc domain.ClaimDocument) (*domain.StoredDocument, error) {
	key := storage.NewKey(doc.Filename, time.Now())
	path := filepath.Join(s.dir, key)

	// O_EXCL: a key collision must fail rather than clobber another request's file.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.Write(doc.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("closing temp file: %w", err)
	}

	return &domain.StoredDocument{
		Key:      key,
		Filename: storage.SanitizeFilename(doc.Filename),
		Size:     int64(len(doc.Data)),
	}, nil
}

func (s *Store) Read(_ context.Context, stored *domain.StoredDocument) ([]byte, error) {
	data, err := os.ReadFile(s.path(stored))
	if err != nil {
		return nil, fmt.Errorf("reading temp file: %w", err)
	}
	return data, nil
}

// Delete removes the staged file. A file that is already gone is not an error.
func (s *Store) Delete(_ context.Context, stored *domain.StoredDocument) error {
	if err := os.Remove(s.path(stored)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing temp file: %w", err)
	}
	return nil
}

func (s *Store) path(stored *domain.StoredDocument) string {
	return filepath.Join(s.dir, filepath.Base(stored.Key))
}
