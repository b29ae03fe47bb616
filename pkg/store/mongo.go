package store

import (
	"context"
	"errors"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dverbeek/patchwork/pkg/snapshot"
)

// MongoStore keeps each snapshot as one document keyed by name. The
// snapshot types carry bson tags, so documents hold the same shape as the
// JSON files of a FileStore.
type MongoStore struct {
	coll *mongo.Collection

	// client is set only when the store owns the connection (see
	// NewMongoStoreOwned); Close disconnects it.
	client *mongo.Client
}

// snapshotDoc is the stored document form.
type snapshotDoc struct {
	Name     string            `bson:"_id"`
	Snapshot snapshot.Snapshot `bson:"snapshot"`
}

// NewMongoStore wraps an existing collection. The client behind it stays
// owned by the caller; Close is a no-op.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// NewMongoStoreOwned takes ownership of the client and stores snapshots in
// the patchwork.snapshots collection. Close disconnects the client.
func NewMongoStoreOwned(client *mongo.Client) *MongoStore {
	return &MongoStore{
		coll:   client.Database("patchwork").Collection("snapshots"),
		client: client,
	}
}

// Save upserts the snapshot document.
func (s *MongoStore) Save(ctx context.Context, name string, snap snapshot.Snapshot) error {
	if err := checkName(name); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: name}},
		snapshotDoc{Name: name, Snapshot: snap},
		options.Replace().SetUpsert(true),
	)
	return err
}

// Load retrieves a snapshot document.
func (s *MongoStore) Load(ctx context.Context, name string) (snapshot.Snapshot, error) {
	if err := checkName(name); err != nil {
		return snapshot.Snapshot{}, err
	}
	var doc snapshotDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return snapshot.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return doc.Snapshot, nil
}

// Delete removes a snapshot document.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: name}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every stored name, sorted.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "_id", bson.D{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Close disconnects the client when the store owns it and does nothing
// otherwise.
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
