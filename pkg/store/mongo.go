package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig locates the collection records are written to.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps records in a MongoDB collection, one document per record
// with the record ID as _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Put inserts rec. Record IDs are random, so duplicates are an error.
func (s *MongoStore) Put(ctx context.Context, rec Record) error {
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("mongo insert %s: %w", rec.ID, err)
	}
	return nil
}

// Get loads the record with the given ID or returns ErrNotFound.
func (s *MongoStore) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("mongo find %s: %w", id, err)
	}
	return rec, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
