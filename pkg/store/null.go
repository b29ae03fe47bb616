package store

import (
	"context"

	"github.com/dverbeek/patchwork/pkg/snapshot"
)

// NullStore discards every save. Useful when persistence is disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore {
	return &NullStore{}
}

// Save does nothing.
func (s *NullStore) Save(ctx context.Context, name string, snap snapshot.Snapshot) error {
	return checkName(name)
}

// Load always reports the snapshot missing.
func (s *NullStore) Load(ctx context.Context, name string) (snapshot.Snapshot, error) {
	if err := checkName(name); err != nil {
		return snapshot.Snapshot{}, err
	}
	return snapshot.Snapshot{}, ErrNotFound
}

// Delete always reports the snapshot missing.
func (s *NullStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	return ErrNotFound
}

// List returns no names.
func (s *NullStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

// Close does nothing.
func (s *NullStore) Close() error { return nil }

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
