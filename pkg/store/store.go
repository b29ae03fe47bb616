// Package store persists named graph snapshots. Backends share one
// interface so hosts can swap a local file directory for Redis or MongoDB
// without touching editor code.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/dverbeek/patchwork/pkg/snapshot"
)

var (
	// ErrNotFound is returned when a named snapshot does not exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrBadName is returned for empty names or names that could escape the
	// backend's keyspace.
	ErrBadName = errors.New("invalid snapshot name")
)

// Store saves and loads named snapshots.
type Store interface {
	// Save writes a snapshot under a name, overwriting any previous one.
	Save(ctx context.Context, name string, snap snapshot.Snapshot) error

	// Load retrieves a snapshot by name. Missing names return ErrNotFound.
	Load(ctx context.Context, name string) (snapshot.Snapshot, error)

	// Delete removes a named snapshot. Missing names return ErrNotFound.
	Delete(ctx context.Context, name string) error

	// List returns all stored names in sorted order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// checkName rejects names that are empty or contain separators with meaning
// to any backend (file paths, Redis key patterns).
func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\*?[]") || name == "." || name == ".." {
		return ErrBadName
	}
	return nil
}
