package store

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/hack-pad/hackpadfs"
)

// FSStore keeps one file per snapshot key under Dir of a hackpadfs FS.
// In the browser the FS is IndexedDB-backed; tests use the mem FS.
type FSStore struct {
	mu  sync.RWMutex
	FS  hackpadfs.FS
	Dir string
}

// NewFSStore creates dir if needed and returns a store rooted there.
// Paths follow io/fs rules: slash separated, no leading slash.
func NewFSStore(fsys hackpadfs.FS, dir string) (*FSStore, error) {
	if dir == "" {
		dir = "."
	}
	if dir != "." {
		if err := hackpadfs.MkdirAll(fsys, dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
		}
	}
	return &FSStore{FS: fsys, Dir: dir}, nil
}

func (s *FSStore) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid snapshot key %q", key)
	}
	return path.Join(s.Dir, key+".json"), nil
}

// Close is a no-op; the FS outlives the store.
func (s *FSStore) Close() error {
	return nil
}

func (s *FSStore) PutSnapshot(key string, data []byte) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := hackpadfs.WriteFullFile(s.FS, p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

func (s *FSStore) GetSnapshot(key string) ([]byte, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := hackpadfs.ReadFile(s.FS, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

func (s *FSStore) DeleteSnapshot(key string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := hackpadfs.Remove(s.FS, p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}
	return nil
}
