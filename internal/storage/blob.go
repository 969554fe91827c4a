package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// BlobStore holds binary files (recipe photos, profile images) addressed by
// key. Records reference at most one blob each; the services follow a
// write-new-then-release-old protocol so a failed write never dangles.
type BlobStore interface {
	// Put stores the content under a fresh key inside prefix (e.g. "recipes")
	// and returns the key.
	Put(ctx context.Context, prefix, filename string, r io.Reader) (string, error)
	// Delete removes the blob for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL for key.
	URL(key string) string
}

// NewKey builds a collision-free blob key, keeping the original extension so
// served files get a sensible content type.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)
}

// LocalBlobStore keeps blobs on the local filesystem under a base directory,
// served by the HTTP layer under baseURL.
type LocalBlobStore struct {
	basePath string
	baseURL  string
	logger   *slog.Logger
}

func NewLocalBlobStore(basePath, baseURL string, logger *slog.Logger) (*LocalBlobStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalBlobStore{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}, nil
}

func (s *LocalBlobStore) Put(ctx context.Context, prefix, filename string, r io.Reader) (string, error) {
	key := NewKey(prefix, filename)
	path := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close blob file: %w", err)
	}

	s.logger.Debug("blob stored", "key", key)
	return key, nil
}

func (s *LocalBlobStore) Delete(ctx context.Context, key string) error {
	path := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	s.logger.Debug("blob deleted", "key", key)
	return nil
}

func (s *LocalBlobStore) URL(key string) string {
	return s.baseURL + "/" + key
}

// BasePath returns the directory blobs are stored under, for static serving.
func (s *LocalBlobStore) BasePath() string {
	return s.basePath
}

// MemoryBlobStore is an in-memory BlobStore for tests.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Put(ctx context.Context, prefix, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := NewKey(prefix, filename)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return key, nil
}

func (s *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *MemoryBlobStore) URL(key string) string {
	return "/media/" + key
}

// Has reports whether a blob exists for key.
func (s *MemoryBlobStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok
}

// Len returns the number of stored blobs.
func (s *MemoryBlobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
