package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrBlobNotFound is returned when the addressed blob does not exist
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore stores uploaded document bytes outside the database. Records only
// carry the (container, name) address.
type BlobStore interface {
	Put(ctx context.Context, container, name string, r io.Reader) error
	Get(ctx context.Context, container, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, container, name string) error
}

// LocalBlobStore keeps blobs on the local filesystem under a root directory,
// one subdirectory per container.
type LocalBlobStore struct {
	root string
}

// NewLocalBlobStore creates a LocalBlobStore rooted at dir
func NewLocalBlobStore(dir string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &LocalBlobStore{root: dir}, nil
}

func (s *LocalBlobStore) path(container, name string) (string, error) {
	// Reject path traversal in client-supplied names.
	if strings.Contains(container, "..") || strings.Contains(name, "..") ||
		strings.ContainsAny(container, `/\`) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid blob address %q/%q", container, name)
	}
	return filepath.Join(s.root, container, name), nil
}

// Put writes the blob, replacing any existing one at the same address
func (s *LocalBlobStore) Put(ctx context.Context, container, name string, r io.Reader) error {
	p, err := s.path(container, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return err
	}
	return f.Close()
}

// Get opens the blob for reading
func (s *LocalBlobStore) Get(ctx context.Context, container, name string) (io.ReadCloser, error) {
	p, err := s.path(container, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the blob; deleting a missing blob is not an error
func (s *LocalBlobStore) Delete(ctx context.Context, container, name string) error {
	p, err := s.path(container, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemoryBlobStore is an in-memory BlobStore for tests
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore creates a new in-memory blob store
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func blobKey(container, name string) string {
	return container + "/" + name
}

// Put stores the blob bytes
func (s *MemoryBlobStore) Put(ctx context.Context, container, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[blobKey(container, name)] = data
	return nil
}

// Get returns a reader over the stored bytes
func (s *MemoryBlobStore) Get(ctx context.Context, container, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[blobKey(container, name)]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the blob
func (s *MemoryBlobStore) Delete(ctx context.Context, container, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, blobKey(container, name))
	return nil
}
