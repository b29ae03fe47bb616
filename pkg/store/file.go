package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dverbeek/patchwork/pkg/snapshot"
)

// FileStore keeps each snapshot as one JSON file in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store in the given directory, creating it if
// it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the snapshot to <dir>/<name>.json.
func (s *FileStore) Save(ctx context.Context, name string, snap snapshot.Snapshot) error {
	if err := checkName(name); err != nil {
		return err
	}
	return snapshot.WriteFile(snap, s.path(name))
}

// Load reads <dir>/<name>.json.
func (s *FileStore) Load(ctx context.Context, name string) (snapshot.Snapshot, error) {
	if err := checkName(name); err != nil {
		return snapshot.Snapshot{}, err
	}
	snap, err := snapshot.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snapshot.Snapshot{}, ErrNotFound
		}
		return snapshot.Snapshot{}, err
	}
	return snap, nil
}

// Delete removes the snapshot file.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// List returns the names of every stored snapshot, sorted.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	slices.Sort(names)
	return names, nil
}

// Close does nothing for a file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
