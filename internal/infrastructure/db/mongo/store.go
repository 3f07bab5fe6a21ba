// Package mongo persists client storage keys in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vehicle-parking/vpa-client/internal/core/ports"
)

const (
	storageCollection = "client_storage"
	appName           = "vpa-client"
	connectTimeout    = 10 * time.Second
)

// Options selects the deployment and database holding the client's keys.
type Options struct {
	URI      string
	Database string
}

// Store implements ports.Storage with one document per key.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ ports.Storage = (*Store)(nil)

type entry struct {
	Key       string `bson:"_id"`
	Value     string `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

// Open connects to MongoDB, pings the primary and returns a Store on
// opts.Database.
func Open(ctx context.Context, opts Options) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetAppName(appName).
		SetConnectTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo storage connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo storage ping: %w", err)
	}

	return NewStore(client.Database(opts.Database)), nil
}

func NewStore(db *mongo.Database) *Store {
	return &Store{client: db.Client(), coll: db.Collection(storageCollection)}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var e entry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find storage key %s: %w", key, err)
	}
	return e.Value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC().Unix()}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert storage key %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete storage key %s: %w", key, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
