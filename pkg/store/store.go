// Package store persists layout snapshots in MongoDB.
//
// A snapshot records the computed layout for one (dataset hash, options)
// pair together with the stats of the dataset it was computed from. The
// build command stores one per dataset export, skipping the write when the
// same hash is already stored; the stats command reports the most recent
// snapshot. Absence of a snapshot is never an error.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/layout"
)

const (
	databaseName   = "lobstergraph"
	collectionName = "layouts"
)

// ErrNotFound is returned when no snapshot exists for a dataset hash.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one persisted layout with its provenance.
type Snapshot struct {
	DatasetHash string          `bson:"dataset_hash" json:"dataset_hash"`
	Options     layout.Options  `bson:"options" json:"options"`
	Layout      *layout.Result  `bson:"layout" json:"layout"`
	Stats       graphdata.Stats `bson:"stats" json:"stats"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
}

// LayoutStore reads and writes layout snapshots.
type LayoutStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*LayoutStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &LayoutStore{
		client: client,
		coll:   client.Database(databaseName).Collection(collectionName),
	}, nil
}

// Save upserts a snapshot keyed by dataset hash. The previous snapshot for
// the same hash is replaced.
func (s *LayoutStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"dataset_hash": snap.DatasetHash},
		snap,
		options.Replace().SetUpsert(true))
	return err
}

// Load retrieves the snapshot for a dataset hash.
// Returns ErrNotFound when no snapshot exists.
func (s *LayoutStore) Load(ctx context.Context, datasetHash string) (*Snapshot, error) {
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.M{"dataset_hash": datasetHash}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Latest retrieves the most recently saved snapshot regardless of hash.
// Returns ErrNotFound when the collection is empty.
func (s *LayoutStore) Latest(ctx context.Context) (*Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.M{}, opts).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Close disconnects from MongoDB.
func (s *LayoutStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
